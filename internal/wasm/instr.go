package wasm

// Instruction is a single decoded WebAssembly instruction: an opcode plus
// whichever Args variant its ArgsShape selects. Args is nil for
// ShapeNone opcodes.
type Instruction struct {
	Opcode Opcode
	Args   interface{}
}

// NumericArgs carries the immediate of a const instruction. Exactly one
// field is meaningful, selected by the owning Instruction's Opcode.
type NumericArgs struct {
	I32 int32
	I64 int64
	F32 float32
	F64 float64
}

// IndexArgs carries a single index immediate: local, global, function,
// type, label, table, memory, data, or element index, depending on the
// owning opcode.
type IndexArgs struct {
	Index Index
}

// MemArg is the (align, offset) pair carried by every load/store
// instruction.
type MemArg struct {
	Align  uint32
	Offset uint32
}

// MemLaneArg extends MemArg with the lane index carried by the SIMD
// load_lane/store_lane instruction family.
type MemLaneArg struct {
	Mem  MemArg
	Lane byte
}

// TableArg carries the (x, y) index pair used by call_indirect
// (type index, table index), memory.init/table.init (segment index, table
// or memory index) and memory.copy/table.copy (destination, source).
type TableArg struct {
	X Index
	Y Index
}

// LaneArgs carries a single lane-index byte, used by the SIMD
// extract_lane/replace_lane instruction family.
type LaneArgs struct {
	Lane byte
}

// V128ConstArgs carries the 16-byte immediate of v128.const.
type V128ConstArgs struct {
	Value [16]byte
}

// ShuffleArgs carries the 16 lane-selector bytes of i8x16.shuffle.
type ShuffleArgs struct {
	Lanes [16]byte
}

// RefNullArgs carries the reference type of ref.null.
type RefNullArgs struct {
	Type RefType
}

// BlockArgs is the body of a block or loop instruction.
type BlockArgs struct {
	BlockType int32
	Body      []Instruction
}

// IfArgs is the body of an if instruction, split at the (optional) else.
type IfArgs struct {
	BlockType int32
	Then      []Instruction
	Else      []Instruction // nil if there was no else clause
}

// BrTableArgs is the jump table of a br_table instruction.
type BrTableArgs struct {
	Labels  []Index
	Default Index
}

// ConstantExpression is an initializer expression: a single instruction
// (i32.const, i64.const, f32.const, f64.const, global.get, ref.null, or
// ref.func) followed by End. Opcode identifies which; Data holds the raw
// encoded immediate bytes (before the terminating End), captured by the
// decoder and re-emitted verbatim by the encoder; the index fixer does not
// rewrite them.
type ConstantExpression struct {
	Opcode Opcode
	Data   []byte
}

package wasm

// Opcode is the normalized representation of a WebAssembly instruction
// opcode. Single-byte opcodes occupy the low byte; the 0xFC (misc/bulk
// memory/reference types) prefix family is normalized to 0xFC00|n; the
// 0xFD (vector/SIMD) prefix family is normalized to 0xFD0000|n. Normalizing
// multi-byte opcodes into one integer lets every table in this package and
// in internal/wasm/binary key off a single type.
type Opcode = uint32

// Control instructions.
const (
	OpcodeUnreachable Opcode = 0x00
	OpcodeNop         Opcode = 0x01
	OpcodeBlock       Opcode = 0x02
	OpcodeLoop        Opcode = 0x03
	OpcodeIf          Opcode = 0x04
	OpcodeElse        Opcode = 0x05
	OpcodeEnd         Opcode = 0x0b
	OpcodeBr          Opcode = 0x0c
	OpcodeBrIf        Opcode = 0x0d
	OpcodeBrTable     Opcode = 0x0e
	OpcodeReturn      Opcode = 0x0f
	OpcodeCall        Opcode = 0x10
	OpcodeCallIndirect Opcode = 0x11
)

// Parametric, variable, and table instructions.
const (
	OpcodeDrop       Opcode = 0x1a
	OpcodeSelect     Opcode = 0x1b
	OpcodeSelectT    Opcode = 0x1c // typed select, reference-types
	OpcodeLocalGet   Opcode = 0x20
	OpcodeLocalSet   Opcode = 0x21
	OpcodeLocalTee   Opcode = 0x22
	OpcodeGlobalGet  Opcode = 0x23
	OpcodeGlobalSet  Opcode = 0x24
	OpcodeTableGet   Opcode = 0x25 // reference-types
	OpcodeTableSet   Opcode = 0x26 // reference-types
)

// Memory instructions.
const (
	OpcodeI32Load    Opcode = 0x28
	OpcodeI64Load    Opcode = 0x29
	OpcodeF32Load    Opcode = 0x2a
	OpcodeF64Load    Opcode = 0x2b
	OpcodeI32Load8s  Opcode = 0x2c
	OpcodeI32Load8u  Opcode = 0x2d
	OpcodeI32Load16s Opcode = 0x2e
	OpcodeI32Load16u Opcode = 0x2f
	OpcodeI64Load8s  Opcode = 0x30
	OpcodeI64Load8u  Opcode = 0x31
	OpcodeI64Load16s Opcode = 0x32
	OpcodeI64Load16u Opcode = 0x33
	OpcodeI64Load32s Opcode = 0x34
	OpcodeI64Load32u Opcode = 0x35
	OpcodeI32Store   Opcode = 0x36
	OpcodeI64Store   Opcode = 0x37
	OpcodeF32Store   Opcode = 0x38
	OpcodeF64Store   Opcode = 0x39
	OpcodeI32Store8  Opcode = 0x3a
	OpcodeI32Store16 Opcode = 0x3b
	OpcodeI64Store8  Opcode = 0x3c
	OpcodeI64Store16 Opcode = 0x3d
	OpcodeI64Store32 Opcode = 0x3e
	OpcodeMemorySize Opcode = 0x3f
	OpcodeMemoryGrow Opcode = 0x40
)

// Numeric constants and operators (operators below i32/i64/f32/f64 have no
// immediate; only the four Const opcodes and the comparison/arithmetic
// opcodes without immediates are listed representatively — the catalog
// below is the source of truth for every numeric opcode in 0x41..0xc4).
const (
	OpcodeI32Const Opcode = 0x41
	OpcodeI64Const Opcode = 0x42
	OpcodeF32Const Opcode = 0x43
	OpcodeF64Const Opcode = 0x44

	OpcodeI32Add Opcode = 0x6a
	OpcodeI32Sub Opcode = 0x6b
	OpcodeI32Mul Opcode = 0x6c
)

// Sign-extension operators (CoreFeatureSignExtensionOps).
const (
	OpcodeI32Extend8S  Opcode = 0xc0
	OpcodeI32Extend16S Opcode = 0xc1
	OpcodeI64Extend8S  Opcode = 0xc2
	OpcodeI64Extend16S Opcode = 0xc3
	OpcodeI64Extend32S Opcode = 0xc4
)

// Reference-type instructions.
const (
	OpcodeRefNull   Opcode = 0xd0
	OpcodeRefIsNull Opcode = 0xd1
	OpcodeRefFunc   Opcode = 0xd2
)

// OpcodeMiscPrefix (0xFC) introduces the saturating truncation and
// bulk-memory/reference-types instruction family; OpcodeVecPrefix (0xFD)
// introduces the SIMD family. Both are followed by a LEB128-u32 sub-opcode
// which this module folds into the high bits of the normalized Opcode.
const (
	OpcodeMiscPrefix Opcode = 0xfc
	OpcodeVecPrefix  Opcode = 0xfd

	miscShift = 8
	miscBase  = OpcodeMiscPrefix << miscShift

	vecShift = 16
	vecBase  = OpcodeVecPrefix << vecShift
)

// MiscOpcode folds an 0xFC sub-opcode n into the normalized Opcode space.
func MiscOpcode(n uint32) Opcode { return miscBase | n }

// VecOpcode folds an 0xFD sub-opcode n into the normalized Opcode space.
func VecOpcode(n uint32) Opcode { return vecBase | n }

// IsMisc reports whether op was read under the 0xFC prefix.
func IsMisc(op Opcode) bool { return op >= miscBase && op < vecBase && op != OpcodeMiscPrefix }

// IsVec reports whether op was read under the 0xFD prefix.
func IsVec(op Opcode) bool { return op >= vecBase }

// 0xFC sub-opcodes (saturating truncation + bulk memory + table).
const (
	OpcodeMiscI32TruncSatF32S Opcode = miscBase | 0
	OpcodeMiscI32TruncSatF32U Opcode = miscBase | 1
	OpcodeMiscI32TruncSatF64S Opcode = miscBase | 2
	OpcodeMiscI32TruncSatF64U Opcode = miscBase | 3
	OpcodeMiscI64TruncSatF32S Opcode = miscBase | 4
	OpcodeMiscI64TruncSatF32U Opcode = miscBase | 5
	OpcodeMiscI64TruncSatF64S Opcode = miscBase | 6
	OpcodeMiscI64TruncSatF64U Opcode = miscBase | 7

	OpcodeMiscMemoryInit Opcode = miscBase | 8
	OpcodeMiscDataDrop   Opcode = miscBase | 9
	OpcodeMiscMemoryCopy Opcode = miscBase | 10
	OpcodeMiscMemoryFill Opcode = miscBase | 11
	OpcodeMiscTableInit  Opcode = miscBase | 12
	OpcodeMiscElemDrop   Opcode = miscBase | 13
	OpcodeMiscTableCopy  Opcode = miscBase | 14
	OpcodeMiscTableGrow  Opcode = miscBase | 15
	OpcodeMiscTableSize  Opcode = miscBase | 16
	OpcodeMiscTableFill  Opcode = miscBase | 17
)

// OpcodeVecV128Const and a handful of other 0xFD sub-opcodes that need a
// shape different from "no immediate". The rest of the ~230 defined SIMD
// opcodes carry no immediate of their own (they operate purely on stack
// values) and are accepted generically by the decoder; see shapeOfVec.
const (
	OpcodeVecV128Load    Opcode = vecBase | 0
	OpcodeVecV128Store   Opcode = vecBase | 11
	OpcodeVecV128Const   Opcode = vecBase | 12
	OpcodeVecI8x16Shuffle Opcode = vecBase | 13

	// Load-lane / store-lane family: MemLaneArg.
	opcodeVecLoadLaneLo  = vecBase | 84
	opcodeVecLoadLaneHi  = vecBase | 93
	opcodeVecStoreLaneLo = vecBase | 94
	opcodeVecStoreLaneHi = vecBase | 97

	// Extract/replace-lane family: a bare lane-byte immediate.
	opcodeVecExtractReplaceLaneLo = vecBase | 21
	opcodeVecExtractReplaceLaneHi = vecBase | 34
)

// ArgsShape names the tagged-union variant an opcode's immediate takes, per
// spec.md section 3.
type ArgsShape int

const (
	ShapeNone ArgsShape = iota
	ShapeNumeric
	ShapeIndex
	ShapeMemArg
	ShapeMemLaneArg
	ShapeTableArg
	ShapeBlockArgs
	ShapeIfArgs
	ShapeBrTableArgs
	ShapeLane
	ShapeV128Const
	ShapeShuffle
	ShapeRefNull
	ShapeVecMiscIndex // 0xFC instructions carrying one or two Index immediates
)

// ShapeOf returns the immediate shape for op, the normalized form described
// above. An opcode that is not defined by this catalog returns
// (ShapeNone, false).
func ShapeOf(op Opcode) (ArgsShape, bool) {
	switch {
	case IsVec(op):
		return shapeOfVec(op), true
	case IsMisc(op):
		return shapeOfMisc(op)
	}
	return shapeOfPlain(op)
}

func shapeOfPlain(op Opcode) (ArgsShape, bool) {
	switch op {
	case OpcodeBlock, OpcodeLoop:
		return ShapeBlockArgs, true
	case OpcodeIf:
		return ShapeIfArgs, true
	case OpcodeBrTable:
		return ShapeBrTableArgs, true
	case OpcodeBr, OpcodeBrIf,
		OpcodeCall,
		OpcodeLocalGet, OpcodeLocalSet, OpcodeLocalTee,
		OpcodeGlobalGet, OpcodeGlobalSet,
		OpcodeTableGet, OpcodeTableSet,
		OpcodeRefFunc:
		return ShapeIndex, true
	case OpcodeCallIndirect:
		return ShapeTableArg, true
	case OpcodeSelectT:
		return ShapeIndex, true // vector of value types, reuses Index-shaped count+list decode
	case OpcodeRefNull:
		return ShapeRefNull, true
	case OpcodeI32Const, OpcodeI64Const, OpcodeF32Const, OpcodeF64Const:
		return ShapeNumeric, true
	case OpcodeI32Load, OpcodeI64Load, OpcodeF32Load, OpcodeF64Load,
		OpcodeI32Load8s, OpcodeI32Load8u, OpcodeI32Load16s, OpcodeI32Load16u,
		OpcodeI64Load8s, OpcodeI64Load8u, OpcodeI64Load16s, OpcodeI64Load16u,
		OpcodeI64Load32s, OpcodeI64Load32u,
		OpcodeI32Store, OpcodeI64Store, OpcodeF32Store, OpcodeF64Store,
		OpcodeI32Store8, OpcodeI32Store16, OpcodeI64Store8, OpcodeI64Store16, OpcodeI64Store32:
		return ShapeMemArg, true
	case OpcodeMemorySize, OpcodeMemoryGrow:
		return ShapeIndex, true // memory index (always 0 in MVP, but recorded)
	case OpcodeUnreachable, OpcodeNop, OpcodeElse, OpcodeEnd, OpcodeReturn,
		OpcodeDrop, OpcodeSelect,
		OpcodeI32Extend8S, OpcodeI32Extend16S,
		OpcodeI64Extend8S, OpcodeI64Extend16S, OpcodeI64Extend32S,
		OpcodeRefIsNull:
		return ShapeNone, true
	}
	if isPlainNumericOperator(op) {
		return ShapeNone, true
	}
	return ShapeNone, false
}

func shapeOfMisc(op Opcode) (ArgsShape, bool) {
	switch op {
	case OpcodeMiscI32TruncSatF32S, OpcodeMiscI32TruncSatF32U, OpcodeMiscI32TruncSatF64S, OpcodeMiscI32TruncSatF64U,
		OpcodeMiscI64TruncSatF32S, OpcodeMiscI64TruncSatF32U, OpcodeMiscI64TruncSatF64S, OpcodeMiscI64TruncSatF64U:
		return ShapeNone, true
	case OpcodeMiscDataDrop, OpcodeMiscElemDrop:
		return ShapeIndex, true
	case OpcodeMiscMemoryInit, OpcodeMiscTableInit, OpcodeMiscTableCopy:
		return ShapeTableArg, true
	case OpcodeMiscMemoryCopy:
		return ShapeTableArg, true // two memory indices, both zero in MVP
	case OpcodeMiscMemoryFill, OpcodeMiscTableGrow, OpcodeMiscTableSize, OpcodeMiscTableFill:
		return ShapeIndex, true
	}
	return ShapeNone, false
}

func shapeOfVec(op Opcode) ArgsShape {
	switch {
	case op == OpcodeVecV128Const:
		return ShapeV128Const
	case op == OpcodeVecI8x16Shuffle:
		return ShapeShuffle
	case op == OpcodeVecV128Load || (op >= vecBase+1 && op <= vecBase+10) || op == OpcodeVecV128Store:
		return ShapeMemArg
	case op >= opcodeVecLoadLaneLo && op <= opcodeVecLoadLaneHi:
		return ShapeMemLaneArg
	case op >= opcodeVecStoreLaneLo && op <= opcodeVecStoreLaneHi:
		return ShapeMemLaneArg
	case op >= opcodeVecExtractReplaceLaneLo && op <= opcodeVecExtractReplaceLaneHi:
		return ShapeLane
	}
	return ShapeNone
}

// isPlainNumericOperator reports whether op is one of the zero-immediate
// numeric comparison/arithmetic/conversion opcodes in the range
// 0x45..0xc4 minus the sign-extension opcodes already listed above. The
// Wasm spec defines these contiguously, so a range check is both accurate
// and far shorter than listing all ~190 mnemonics.
func isPlainNumericOperator(op Opcode) bool {
	if op < 0x45 || op > 0xbf {
		return false
	}
	switch op {
	case OpcodeI32Const, OpcodeI64Const, OpcodeF32Const, OpcodeF64Const:
		return false
	}
	return true
}

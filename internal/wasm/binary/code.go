package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeCodeSection(r *bytes.Reader, features api.CoreFeatures) ([]*wasm.Code, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of code section: %w", err)
	}
	ret := make([]*wasm.Code, count)
	for i := range ret {
		c, err := decodeCode(r, features)
		if err != nil {
			return nil, fmt.Errorf("code[%d]: %w", i, err)
		}
		ret[i] = c
	}
	return ret, nil
}

// decodeCode decodes one code_sec entry: a byte-size prefix, then the
// locals vector and the instruction tree, strictly consuming exactly size
// bytes per spec.md section 4.3's "inconsistent function code" check.
func decodeCode(r *bytes.Reader, features api.CoreFeatures) (*wasm.Code, error) {
	size, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of function: %w", err)
	}
	remainingBefore := r.Len()
	if uint64(remainingBefore) < uint64(size) {
		return nil, wasm.ErrUnexpectedEnd
	}
	body := make([]byte, size)
	if _, err := r.Read(body); err != nil {
		return nil, fmt.Errorf("read code body: %w", err)
	}
	sub := bytes.NewReader(body)

	locals, err := decodeLocals(sub)
	if err != nil {
		return nil, fmt.Errorf("read locals: %w", err)
	}

	instrs, err := decodeExpr(sub, features)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if sub.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after function", wasm.ErrFunctionBodySizeMismatch, sub.Len())
	}

	return &wasm.Code{LocalTypes: locals, Body: instrs}, nil
}

const maxLocals = 1 << 18

// decodeLocals reads the run-length-encoded locals vector and expands it
// to one ValueType per local, per spec.md section 3's "too many locals"
// edge case.
func decodeLocals(r *bytes.Reader) ([]wasm.ValueType, error) {
	groupCount, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get the size of locals: %w", err)
	}
	var total uint64
	var ret []wasm.ValueType
	for i := uint32(0); i < groupCount; i++ {
		n, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read n of local group[%d]: %w", i, err)
		}
		vt, err := decodeValueType(r)
		if err != nil {
			return nil, fmt.Errorf("read type of local group[%d]: %w", i, err)
		}
		total += uint64(n)
		if total > maxLocals {
			return nil, fmt.Errorf("%w: %d", wasm.ErrTooManyLocals, total)
		}
		for j := uint32(0); j < n; j++ {
			ret = append(ret, vt)
		}
	}
	return ret, nil
}

func encodeLocals(locals []wasm.ValueType) []byte {
	type run struct {
		vt    wasm.ValueType
		count uint32
	}
	var runs []run
	for _, vt := range locals {
		if len(runs) > 0 && runs[len(runs)-1].vt == vt {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, run{vt: vt, count: 1})
	}
	out := leb128.EncodeUint32(uint32(len(runs)))
	for _, rn := range runs {
		out = append(out, leb128.EncodeUint32(rn.count)...)
		out = append(out, rn.vt)
	}
	return out
}

func encodeCode(c *wasm.Code) []byte {
	body := encodeLocals(c.LocalTypes)
	body = append(body, encodeExpr(c.Body)...)
	out := leb128.EncodeUint32(uint32(len(body)))
	return append(out, body...)
}

func encodeCodeSection(cs []*wasm.Code) []byte {
	out := leb128.EncodeUint32(uint32(len(cs)))
	for _, c := range cs {
		out = append(out, encodeCode(c)...)
	}
	return out
}

// decodeExpr decodes a sequence of instructions up to and including a
// terminating End, returning the instructions before it. Used for
// function bodies and for Block/Loop bodies.
func decodeExpr(r *bytes.Reader, features api.CoreFeatures) ([]wasm.Instruction, error) {
	instrs, term, err := decodeInstrSeq(r, features)
	if err != nil {
		return nil, err
	}
	if term != wasm.OpcodeEnd {
		return nil, fmt.Errorf("%w: expected end", wasm.ErrInvalidExprEnd)
	}
	return instrs, nil
}

// decodeInstrSeq decodes instructions until it reads an End or Else byte,
// returning that terminator opcode uninterpreted so If can tell them
// apart.
func decodeInstrSeq(r *bytes.Reader, features api.CoreFeatures) ([]wasm.Instruction, wasm.Opcode, error) {
	var out []wasm.Instruction
	for {
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, 0, fmt.Errorf("read opcode: %w", err)
		}
		if opByte == byte(wasm.OpcodeEnd) || opByte == byte(wasm.OpcodeElse) {
			return out, wasm.Opcode(opByte), nil
		}

		op, err := normalizeOpcode(r, opByte)
		if err != nil {
			return nil, 0, err
		}

		instr, err := decodeInstruction(r, op, features)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", instructionName(op), err)
		}
		out = append(out, instr)
	}
}

// normalizeOpcode reads the LEB128-u32 sub-opcode following an 0xFC or
// 0xFD prefix byte and folds it into the single-integer Opcode space, or
// returns opByte unchanged for a plain single-byte opcode.
func normalizeOpcode(r *bytes.Reader, opByte byte) (wasm.Opcode, error) {
	switch wasm.Opcode(opByte) {
	case wasm.OpcodeMiscPrefix:
		n, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return 0, fmt.Errorf("read misc sub-opcode: %w", err)
		}
		return wasm.MiscOpcode(n), nil
	case wasm.OpcodeVecPrefix:
		n, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return 0, fmt.Errorf("read vector sub-opcode: %w", err)
		}
		return wasm.VecOpcode(n), nil
	}
	return wasm.Opcode(opByte), nil
}

func instructionName(op wasm.Opcode) string {
	return fmt.Sprintf("opcode 0x%x", op)
}

// decodeInstruction decodes one instruction's immediate, given its already
// read (and normalized) opcode, dispatching on wasm.ShapeOf.
func decodeInstruction(r *bytes.Reader, op wasm.Opcode, features api.CoreFeatures) (wasm.Instruction, error) {
	shape, ok := wasm.ShapeOf(op)
	if !ok {
		return wasm.Instruction{}, fmt.Errorf("%w: 0x%x", wasm.ErrUndefinedOpcode, op)
	}

	switch shape {
	case wasm.ShapeNone:
		return wasm.Instruction{Opcode: op}, nil
	case wasm.ShapeNumeric:
		args, err := decodeNumericArgs(r, op)
		return wasm.Instruction{Opcode: op, Args: args}, err
	case wasm.ShapeIndex:
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read index: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.IndexArgs{Index: idx}}, nil
	case wasm.ShapeMemArg:
		ma, err := decodeMemArg(r)
		return wasm.Instruction{Opcode: op, Args: ma}, err
	case wasm.ShapeMemLaneArg:
		ma, err := decodeMemArg(r)
		if err != nil {
			return wasm.Instruction{}, err
		}
		lane, err := r.ReadByte()
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read lane: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.MemLaneArg{Mem: ma, Lane: lane}}, nil
	case wasm.ShapeTableArg:
		x, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read x: %w", err)
		}
		y, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read y: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.TableArg{X: x, Y: y}}, nil
	case wasm.ShapeBlockArgs:
		return decodeBlockArgs(r, op, features)
	case wasm.ShapeIfArgs:
		return decodeIfArgs(r, features)
	case wasm.ShapeBrTableArgs:
		return decodeBrTableArgs(r, op)
	case wasm.ShapeLane:
		lane, err := r.ReadByte()
		return wasm.Instruction{Opcode: op, Args: wasm.LaneArgs{Lane: lane}}, err
	case wasm.ShapeV128Const:
		var v [16]byte
		if _, err := r.Read(v[:]); err != nil {
			return wasm.Instruction{}, fmt.Errorf("read v128.const value: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.V128ConstArgs{Value: v}}, nil
	case wasm.ShapeShuffle:
		var lanes [16]byte
		if _, err := r.Read(lanes[:]); err != nil {
			return wasm.Instruction{}, fmt.Errorf("read shuffle lanes: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.ShuffleArgs{Lanes: lanes}}, nil
	case wasm.ShapeRefNull:
		rt, err := r.ReadByte()
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read ref.null type: %w", err)
		}
		return wasm.Instruction{Opcode: op, Args: wasm.RefNullArgs{Type: rt}}, nil
	}
	return wasm.Instruction{}, fmt.Errorf("%w: unhandled shape for 0x%x", wasm.ErrUndefinedOpcode, op)
}

func decodeNumericArgs(r *bytes.Reader, op wasm.Opcode) (wasm.NumericArgs, error) {
	switch op {
	case wasm.OpcodeI32Const:
		v, _, err := leb128.DecodeInt32(r)
		return wasm.NumericArgs{I32: v}, err
	case wasm.OpcodeI64Const:
		v, _, err := leb128.DecodeInt64(r)
		return wasm.NumericArgs{I64: v}, err
	case wasm.OpcodeF32Const:
		var buf [4]byte
		if _, err := r.Read(buf[:]); err != nil {
			return wasm.NumericArgs{}, err
		}
		return wasm.NumericArgs{F32: decodeFloat32(buf)}, nil
	case wasm.OpcodeF64Const:
		var buf [8]byte
		if _, err := r.Read(buf[:]); err != nil {
			return wasm.NumericArgs{}, err
		}
		return wasm.NumericArgs{F64: decodeFloat64(buf)}, nil
	}
	return wasm.NumericArgs{}, fmt.Errorf("not a constant opcode: 0x%x", op)
}

func decodeMemArg(r *bytes.Reader) (wasm.MemArg, error) {
	align, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.MemArg{}, fmt.Errorf("read align: %w", err)
	}
	offset, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.MemArg{}, fmt.Errorf("read offset: %w", err)
	}
	return wasm.MemArg{Align: align, Offset: offset}, nil
}

func decodeBlockArgs(r *bytes.Reader, op wasm.Opcode, features api.CoreFeatures) (wasm.Instruction, error) {
	bt, err := decodeBlockType(r)
	if err != nil {
		return wasm.Instruction{}, err
	}
	body, err := decodeExpr(r, features)
	if err != nil {
		return wasm.Instruction{}, err
	}
	return wasm.Instruction{Opcode: op, Args: wasm.BlockArgs{BlockType: bt, Body: body}}, nil
}

func decodeIfArgs(r *bytes.Reader, features api.CoreFeatures) (wasm.Instruction, error) {
	bt, err := decodeBlockType(r)
	if err != nil {
		return wasm.Instruction{}, err
	}
	then, term, err := decodeInstrSeq(r, features)
	if err != nil {
		return wasm.Instruction{}, err
	}
	var elseBody []wasm.Instruction
	if term == wasm.OpcodeElse {
		elseBody, term, err = decodeInstrSeq(r, features)
		if err != nil {
			return wasm.Instruction{}, err
		}
	}
	if term != wasm.OpcodeEnd {
		return wasm.Instruction{}, fmt.Errorf("%w: if missing end", wasm.ErrInvalidExprEnd)
	}
	return wasm.Instruction{Opcode: wasm.OpcodeIf, Args: wasm.IfArgs{BlockType: bt, Then: then, Else: elseBody}}, nil
}

func decodeBrTableArgs(r *bytes.Reader, op wasm.Opcode) (wasm.Instruction, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.Instruction{}, fmt.Errorf("read count: %w", err)
	}
	labels := make([]wasm.Index, count)
	for i := range labels {
		labels[i], _, err = leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Instruction{}, fmt.Errorf("read label[%d]: %w", i, err)
		}
	}
	def, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.Instruction{}, fmt.Errorf("read default label: %w", err)
	}
	return wasm.Instruction{Opcode: op, Args: wasm.BrTableArgs{Labels: labels, Default: def}}, nil
}

// encodeExpr encodes a sequence of instructions followed by an End
// opcode.
func encodeExpr(instrs []wasm.Instruction) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, encodeInstruction(in)...)
	}
	return append(out, byte(wasm.OpcodeEnd))
}

func encodeInstruction(in wasm.Instruction) []byte {
	out := encodeOpcode(in.Opcode)
	switch args := in.Args.(type) {
	case nil:
	case wasm.NumericArgs:
		out = append(out, encodeNumericArgs(in.Opcode, args)...)
	case wasm.IndexArgs:
		out = append(out, leb128.EncodeUint32(args.Index)...)
	case wasm.MemArg:
		out = append(out, leb128.EncodeUint32(args.Align)...)
		out = append(out, leb128.EncodeUint32(args.Offset)...)
	case wasm.MemLaneArg:
		out = append(out, leb128.EncodeUint32(args.Mem.Align)...)
		out = append(out, leb128.EncodeUint32(args.Mem.Offset)...)
		out = append(out, args.Lane)
	case wasm.TableArg:
		out = append(out, leb128.EncodeUint32(args.X)...)
		out = append(out, leb128.EncodeUint32(args.Y)...)
	case wasm.BlockArgs:
		out = append(out, encodeBlockType(args.BlockType)...)
		out = append(out, encodeExpr(args.Body)...)
	case wasm.IfArgs:
		out = append(out, encodeBlockType(args.BlockType)...)
		for _, i := range args.Then {
			out = append(out, encodeInstruction(i)...)
		}
		if args.Else != nil {
			out = append(out, byte(wasm.OpcodeElse))
			for _, i := range args.Else {
				out = append(out, encodeInstruction(i)...)
			}
		}
		out = append(out, byte(wasm.OpcodeEnd))
	case wasm.BrTableArgs:
		out = append(out, leb128.EncodeUint32(uint32(len(args.Labels)))...)
		for _, l := range args.Labels {
			out = append(out, leb128.EncodeUint32(l)...)
		}
		out = append(out, leb128.EncodeUint32(args.Default)...)
	case wasm.LaneArgs:
		out = append(out, args.Lane)
	case wasm.V128ConstArgs:
		out = append(out, args.Value[:]...)
	case wasm.ShuffleArgs:
		out = append(out, args.Lanes[:]...)
	case wasm.RefNullArgs:
		out = append(out, args.Type)
	}
	return out
}

// encodeOpcode emits op's wire bytes: the prefix byte plus a LEB128-u32
// sub-opcode for the misc/vector families, or the single byte otherwise.
func encodeOpcode(op wasm.Opcode) []byte {
	switch {
	case wasm.IsVec(op):
		out := []byte{byte(wasm.OpcodeVecPrefix)}
		return append(out, leb128.EncodeUint32(op&0xffff)...)
	case wasm.IsMisc(op):
		out := []byte{byte(wasm.OpcodeMiscPrefix)}
		return append(out, leb128.EncodeUint32(op&0xff)...)
	}
	return []byte{byte(op)}
}

func encodeNumericArgs(op wasm.Opcode, args wasm.NumericArgs) []byte {
	switch op {
	case wasm.OpcodeI32Const:
		return leb128.EncodeInt32(args.I32)
	case wasm.OpcodeI64Const:
		return leb128.EncodeInt64(args.I64)
	case wasm.OpcodeF32Const:
		b := encodeFloat32(args.F32)
		return b[:]
	case wasm.OpcodeF64Const:
		b := encodeFloat64(args.F64)
		return b[:]
	}
	return nil
}

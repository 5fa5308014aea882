package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// decodeConstantExpression decodes an init_expr: one constant instruction
// followed by End. The immediate bytes are captured verbatim into
// ConstantExpression.Data rather than parsed into a typed Instruction,
// and the encoder re-emits them unchanged. The index fixer does not read
// them, so a global.get or ref.func index inside an initializer is not
// shifted when globals or functions are inserted or deleted.
func decodeConstantExpression(r *bytes.Reader, features api.CoreFeatures) (wasm.ConstantExpression, error) {
	opByte, err := r.ReadByte()
	if err != nil {
		return wasm.ConstantExpression{}, fmt.Errorf("read opcode: %w", err)
	}

	start := r.Len()
	switch wasm.Opcode(opByte) {
	case wasm.OpcodeI32Const:
		if _, _, err := leb128.DecodeInt32(r); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read i32.const value: %w", err)
		}
	case wasm.OpcodeI64Const:
		if _, _, err := leb128.DecodeInt64(r); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read i64.const value: %w", err)
		}
	case wasm.OpcodeF32Const:
		if _, err := readN(r, 4); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read f32.const value: %w", err)
		}
	case wasm.OpcodeF64Const:
		if _, err := readN(r, 8); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read f64.const value: %w", err)
		}
	case wasm.OpcodeGlobalGet:
		if _, _, err := leb128.DecodeUint32(r); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read global.get index: %w", err)
		}
	case wasm.OpcodeRefNull:
		if !features.IsEnabled(api.CoreFeatureReferenceTypes) {
			return wasm.ConstantExpression{}, fmt.Errorf("ref.null is invalid as feature %q is disabled", "reference-types")
		}
		if _, err := r.ReadByte(); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read ref.null type: %w", err)
		}
	case wasm.OpcodeRefFunc:
		if !features.IsEnabled(api.CoreFeatureReferenceTypes) {
			return wasm.ConstantExpression{}, fmt.Errorf("ref.func is invalid as feature %q is disabled", "reference-types")
		}
		if _, _, err := leb128.DecodeUint32(r); err != nil {
			return wasm.ConstantExpression{}, fmt.Errorf("read ref.func index: %w", err)
		}
	default:
		return wasm.ConstantExpression{}, fmt.Errorf("%w: invalid opcode for const expression: 0x%x", wasm.ErrInvalidExprEnd, opByte)
	}

	consumed := start - r.Len()
	// Rewind to capture the raw immediate bytes into Data.
	if _, err := r.Seek(int64(-consumed), 1); err != nil {
		return wasm.ConstantExpression{}, err
	}
	data, err := readN(r, consumed)
	if err != nil {
		return wasm.ConstantExpression{}, err
	}

	end, err := r.ReadByte()
	if err != nil {
		return wasm.ConstantExpression{}, fmt.Errorf("read end: %w", err)
	}
	if end != byte(wasm.OpcodeEnd) {
		return wasm.ConstantExpression{}, fmt.Errorf("%w: missing end", wasm.ErrInvalidExprEnd)
	}

	return wasm.ConstantExpression{Opcode: wasm.Opcode(opByte), Data: data}, nil
}

func encodeConstantExpression(ce wasm.ConstantExpression) []byte {
	out := []byte{byte(ce.Opcode)}
	out = append(out, ce.Data...)
	return append(out, byte(wasm.OpcodeEnd))
}

func readN(r *bytes.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

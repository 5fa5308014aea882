package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeGlobalSection(r *bytes.Reader, features api.CoreFeatures) ([]*wasm.Global, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of global section: %w", err)
	}
	ret := make([]*wasm.Global, count)
	for i := range ret {
		g, err := decodeGlobal(r, features)
		if err != nil {
			return nil, fmt.Errorf("global[%d]: %w", i, err)
		}
		ret[i] = g
	}
	return ret, nil
}

func decodeGlobal(r *bytes.Reader, features api.CoreFeatures) (*wasm.Global, error) {
	gt, err := decodeGlobalType(r)
	if err != nil {
		return nil, fmt.Errorf("read type: %w", err)
	}
	init, err := decodeConstantExpression(r, features)
	if err != nil {
		return nil, fmt.Errorf("read init_expr: %w", err)
	}
	return &wasm.Global{Type: gt, Init: init}, nil
}

func decodeGlobalType(r *bytes.Reader) (wasm.GlobalType, error) {
	vt, err := decodeValueType(r)
	if err != nil {
		return wasm.GlobalType{}, fmt.Errorf("read value type: %w", err)
	}
	b, err := r.ReadByte()
	if err != nil {
		return wasm.GlobalType{}, fmt.Errorf("read mutability: %w", err)
	}
	if b != 0 && b != 1 {
		return wasm.GlobalType{}, fmt.Errorf("%w: invalid mutability: 0x%x", wasm.ErrMalformedMutability, b)
	}
	return wasm.GlobalType{ValType: vt, Mutable: b == 1}, nil
}

func encodeGlobalSection(gs []*wasm.Global) []byte {
	out := leb128.EncodeUint32(uint32(len(gs)))
	for _, g := range gs {
		out = append(out, encodeGlobal(g)...)
	}
	return out
}

func encodeGlobal(g *wasm.Global) []byte {
	out := encodeGlobalType(g.Type)
	return append(out, encodeConstantExpression(g.Init)...)
}

func encodeGlobalType(gt wasm.GlobalType) []byte {
	mut := byte(0)
	if gt.Mutable {
		mut = 1
	}
	return []byte{gt.ValType, mut}
}

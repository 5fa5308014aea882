package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

const functionTypeTag = 0x60

func decodeTypeSection(r *bytes.Reader) ([]*wasm.FunctionType, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of type section: %w", err)
	}
	ret := make([]*wasm.FunctionType, count)
	for i := range ret {
		ft, err := decodeFunctionType(r)
		if err != nil {
			return nil, fmt.Errorf("type[%d]: %w", i, err)
		}
		ret[i] = ft
	}
	return ret, nil
}

func decodeFunctionType(r *bytes.Reader) (*wasm.FunctionType, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read leading byte: %w", err)
	}
	if tag != functionTypeTag {
		return nil, fmt.Errorf("%w: 0x%x", wasm.ErrBadFuncTypeTag, tag)
	}
	params, err := decodeValueTypes(r)
	if err != nil {
		return nil, fmt.Errorf("read parameter types: %w", err)
	}
	results, err := decodeValueTypes(r)
	if err != nil {
		return nil, fmt.Errorf("read result types: %w", err)
	}
	return &wasm.FunctionType{Params: params, Results: results}, nil
}

func encodeTypeSection(ts []*wasm.FunctionType) []byte {
	out := leb128.EncodeUint32(uint32(len(ts)))
	for _, t := range ts {
		out = append(out, encodeFunctionType(t)...)
	}
	return out
}

func encodeFunctionType(t *wasm.FunctionType) []byte {
	out := []byte{functionTypeTag}
	out = append(out, encodeValueTypes(t.Params)...)
	return append(out, encodeValueTypes(t.Results)...)
}

func decodeFunctionSection(r *bytes.Reader) ([]wasm.Index, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of function section: %w", err)
	}
	ret := make([]wasm.Index, count)
	for i := range ret {
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("function[%d]: read type index: %w", i, err)
		}
		ret[i] = idx
	}
	return ret, nil
}

func encodeFunctionSection(fs []wasm.Index) []byte {
	out := leb128.EncodeUint32(uint32(len(fs)))
	for _, idx := range fs {
		out = append(out, leb128.EncodeUint32(idx)...)
	}
	return out
}

func decodeStartSection(r *bytes.Reader) (*wasm.Index, error) {
	idx, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read start function index: %w", err)
	}
	return &idx, nil
}

func encodeStartSection(idx wasm.Index) []byte {
	return leb128.EncodeUint32(idx)
}

func decodeDataCountSection(r *bytes.Reader) (*uint32, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read data count: %w", err)
	}
	return &n, nil
}

func encodeDataCountSection(n uint32) []byte {
	return leb128.EncodeUint32(n)
}

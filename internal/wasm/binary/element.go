package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// decodeElementSection decodes elem_sec. Per spec.md section 3 this subset
// only models active element segments (table index, offset expr, vector
// of function indices) and does not carry the modern passive/declarative
// element kinds or externref-typed inits.
func decodeElementSection(r *bytes.Reader, features api.CoreFeatures) ([]*wasm.ElementSegment, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of element section: %w", err)
	}
	ret := make([]*wasm.ElementSegment, count)
	for i := range ret {
		e, err := decodeElementSegment(r, features)
		if err != nil {
			return nil, fmt.Errorf("element[%d]: %w", i, err)
		}
		ret[i] = e
	}
	return ret, nil
}

func decodeElementSegment(r *bytes.Reader, features api.CoreFeatures) (*wasm.ElementSegment, error) {
	tableIdx, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read table index: %w", err)
	}
	offset, err := decodeConstantExpression(r, features)
	if err != nil {
		return nil, fmt.Errorf("read offset expression: %w", err)
	}
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of init vector: %w", err)
	}
	init := make([]wasm.Index, count)
	for i := range init {
		init[i], _, err = leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read init[%d]: %w", i, err)
		}
	}
	return &wasm.ElementSegment{TableIndex: tableIdx, OffsetExpression: offset, Init: init}, nil
}

func encodeElementSection(es []*wasm.ElementSegment) []byte {
	out := leb128.EncodeUint32(uint32(len(es)))
	for _, e := range es {
		out = append(out, encodeElementSegment(e)...)
	}
	return out
}

func encodeElementSegment(e *wasm.ElementSegment) []byte {
	out := leb128.EncodeUint32(e.TableIndex)
	out = append(out, encodeConstantExpression(e.OffsetExpression)...)
	out = append(out, leb128.EncodeUint32(uint32(len(e.Init)))...)
	for _, idx := range e.Init {
		out = append(out, leb128.EncodeUint32(idx)...)
	}
	return out
}

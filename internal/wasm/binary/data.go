package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeDataSection(r *bytes.Reader, features api.CoreFeatures) ([]*wasm.DataSegment, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of data section: %w", err)
	}
	ret := make([]*wasm.DataSegment, count)
	for i := range ret {
		d, err := decodeDataSegment(r, features)
		if err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		ret[i] = d
	}
	return ret, nil
}

// decodeDataSegment decodes one of the three data segment kinds added by
// the bulk-memory proposal: 0 (active, implicit memory 0), 1 (passive),
// 2 (active, explicit memory index).
func decodeDataSegment(r *bytes.Reader, features api.CoreFeatures) (*wasm.DataSegment, error) {
	prefix, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read data segment prefix: %w", err)
	}

	seg := &wasm.DataSegment{}
	switch prefix {
	case 0:
		seg.Mode = wasm.DataSegmentModeActive
		seg.OffsetExpression, err = decodeConstantExpression(r, features)
		if err != nil {
			return nil, fmt.Errorf("read offset expression: %w", err)
		}
	case 1:
		if !features.IsEnabled(api.CoreFeatureBulkMemoryOperations) {
			return nil, fmt.Errorf("non-zero prefix for data segment is invalid as feature %q is disabled", "bulk-memory-operations")
		}
		seg.Mode = wasm.DataSegmentModePassive
	case 2:
		if !features.IsEnabled(api.CoreFeatureBulkMemoryOperations) {
			return nil, fmt.Errorf("non-zero prefix for data segment is invalid as feature %q is disabled", "bulk-memory-operations")
		}
		seg.Mode = wasm.DataSegmentModeActiveWithMemory
		memIdx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read memory index: %w", err)
		}
		if memIdx != 0 {
			return nil, fmt.Errorf("memory index must be zero but was %d", memIdx)
		}
		seg.MemoryIndex = memIdx
		seg.OffsetExpression, err = decodeConstantExpression(r, features)
		if err != nil {
			return nil, fmt.Errorf("read offset expression: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid data segment prefix: 0x%x", prefix)
	}

	size, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of init: %w", err)
	}
	buf := make([]byte, size)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read init: %w", err)
	}
	seg.Init = buf
	return seg, nil
}

func encodeDataSection(ds []*wasm.DataSegment) []byte {
	out := leb128.EncodeUint32(uint32(len(ds)))
	for _, d := range ds {
		out = append(out, encodeDataSegment(d)...)
	}
	return out
}

func encodeDataSegment(d *wasm.DataSegment) []byte {
	var out []byte
	switch d.Mode {
	case wasm.DataSegmentModeActive:
		out = leb128.EncodeUint32(0)
		out = append(out, encodeConstantExpression(d.OffsetExpression)...)
	case wasm.DataSegmentModePassive:
		out = leb128.EncodeUint32(1)
	case wasm.DataSegmentModeActiveWithMemory:
		out = leb128.EncodeUint32(2)
		out = append(out, leb128.EncodeUint32(d.MemoryIndex)...)
		out = append(out, encodeConstantExpression(d.OffsetExpression)...)
	}
	out = append(out, leb128.EncodeUint32(uint32(len(d.Init)))...)
	return append(out, d.Init...)
}

package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// decodeMemorySection decodes memory_sec. Per spec.md section 3 this
// subset allows at most one memory.
func decodeMemorySection(r *bytes.Reader) ([]*wasm.MemoryType, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of memory section: %w", err)
	}
	if count > 1 {
		return nil, fmt.Errorf("at most one memory allowed in module, but read %d", count)
	}
	ret := make([]*wasm.MemoryType, count)
	for i := range ret {
		mt, err := decodeMemoryType(r)
		if err != nil {
			return nil, fmt.Errorf("read memory[%d]: %w", i, err)
		}
		ret[i] = mt
	}
	return ret, nil
}

func decodeMemoryType(r *bytes.Reader) (*wasm.MemoryType, error) {
	lim, err := decodeLimits(r)
	if err != nil {
		return nil, fmt.Errorf("read limits: %w", err)
	}
	if lim.Min > wasm.MemoryMaxPages {
		return nil, fmt.Errorf("memory min %d pages (%s) over limit of %d pages (%s)",
			lim.Min, wasm.PagesToUnitOfBytes(lim.Min), wasm.MemoryMaxPages, wasm.PagesToUnitOfBytes(wasm.MemoryMaxPages))
	}
	if lim.Max != nil {
		if *lim.Max < lim.Min {
			return nil, fmt.Errorf("memory size minimum must not be greater than maximum")
		}
		if *lim.Max > wasm.MemoryMaxPages {
			return nil, fmt.Errorf("memory max %d pages (%s) over limit of %d pages (%s)",
				*lim.Max, wasm.PagesToUnitOfBytes(*lim.Max), wasm.MemoryMaxPages, wasm.PagesToUnitOfBytes(wasm.MemoryMaxPages))
		}
	}
	return &wasm.MemoryType{Limits: lim}, nil
}

func encodeMemorySection(ms []*wasm.MemoryType) []byte {
	out := leb128.EncodeUint32(uint32(len(ms)))
	for _, m := range ms {
		out = append(out, encodeLimits(m.Limits)...)
	}
	return out
}

package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// decodeTableSection decodes table_sec. Per spec.md section 3 this subset
// allows at most one table, matching the MVP restriction wazero also
// enforces in its own decodeTableSection.
func decodeTableSection(r *bytes.Reader) ([]*wasm.TableType, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of table section: %w", err)
	}
	if count > 1 {
		return nil, fmt.Errorf("at most one table allowed in module, but read %d", count)
	}
	ret := make([]*wasm.TableType, count)
	for i := range ret {
		tt, err := decodeTableType(r)
		if err != nil {
			return nil, fmt.Errorf("read table[%d]: %w", i, err)
		}
		ret[i] = tt
	}
	return ret, nil
}

func decodeTableType(r *bytes.Reader) (*wasm.TableType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read leading byte: %w", err)
	}
	if b != wasm.ElemTypeFuncref {
		return nil, fmt.Errorf("%w: invalid element type: 0x%x", wasm.ErrBadElemType, b)
	}
	lim, err := decodeLimits(r)
	if err != nil {
		return nil, fmt.Errorf("read limits: %w", err)
	}
	return &wasm.TableType{ElemType: b, Limits: lim}, nil
}

func encodeTableSection(ts []*wasm.TableType) []byte {
	out := leb128.EncodeUint32(uint32(len(ts)))
	for _, t := range ts {
		out = append(out, encodeTableType(t)...)
	}
	return out
}

func encodeTableType(t *wasm.TableType) []byte {
	out := []byte{t.ElemType}
	return append(out, encodeLimits(t.Limits)...)
}

package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeExportSection(r *bytes.Reader) ([]*wasm.Export, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of export section: %w", err)
	}
	ret := make([]*wasm.Export, count)
	seen := make(map[string]struct{}, count)
	for i := range ret {
		e, err := decodeExport(r)
		if err != nil {
			return nil, fmt.Errorf("export[%d]: %w", i, err)
		}
		if _, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("export[%d] duplicates name %q", i, e.Name)
		}
		seen[e.Name] = struct{}{}
		ret[i] = e
	}
	return ret, nil
}

func decodeExport(r *bytes.Reader) (*wasm.Export, error) {
	name, _, err := decodeUTF8(r, "export name")
	if err != nil {
		return nil, err
	}
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read export kind: %w", err)
	}
	switch wasm.ExportKind(kindByte) {
	case wasm.ExportKindFunc, wasm.ExportKindTable, wasm.ExportKindMemory, wasm.ExportKindGlobal:
	default:
		return nil, fmt.Errorf("invalid export kind: 0x%x", kindByte)
	}
	idx, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read export index: %w", err)
	}
	return &wasm.Export{Name: name, Kind: wasm.ExportKind(kindByte), Index: idx}, nil
}

func encodeExportSection(es []*wasm.Export) []byte {
	out := leb128.EncodeUint32(uint32(len(es)))
	for _, e := range es {
		out = append(out, encodeExport(e)...)
	}
	return out
}

func encodeExport(e *wasm.Export) []byte {
	out := encodeName(e.Name)
	out = append(out, byte(e.Kind))
	return append(out, leb128.EncodeUint32(e.Index)...)
}

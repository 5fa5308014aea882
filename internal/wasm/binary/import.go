package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeImportSection(r *bytes.Reader) ([]*wasm.Import, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("get size of import section: %w", err)
	}
	ret := make([]*wasm.Import, count)
	for i := range ret {
		imp, err := decodeImport(r)
		if err != nil {
			return nil, fmt.Errorf("import[%d]: %w", i, err)
		}
		ret[i] = imp
	}
	return ret, nil
}

func decodeImport(r *bytes.Reader) (*wasm.Import, error) {
	module, _, err := decodeUTF8(r, "import module")
	if err != nil {
		return nil, err
	}
	name, _, err := decodeUTF8(r, "import name")
	if err != nil {
		return nil, err
	}
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read import kind: %w", err)
	}
	imp := &wasm.Import{Module: module, Name: name, Kind: wasm.ImportKind(kindByte)}
	switch imp.Kind {
	case wasm.ImportKindFunc:
		imp.DescFunc, _, err = leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read function type index: %w", err)
		}
	case wasm.ImportKindTable:
		imp.DescTable, err = decodeTableType(r)
		if err != nil {
			return nil, fmt.Errorf("read table type: %w", err)
		}
	case wasm.ImportKindMemory:
		imp.DescMemory, err = decodeMemoryType(r)
		if err != nil {
			return nil, fmt.Errorf("read memory type: %w", err)
		}
	case wasm.ImportKindGlobal:
		gt, err := decodeGlobalType(r)
		if err != nil {
			return nil, fmt.Errorf("read global type: %w", err)
		}
		imp.DescGlobal = &gt
	default:
		return nil, fmt.Errorf("invalid import kind: 0x%x", kindByte)
	}
	return imp, nil
}

func encodeImportSection(is []*wasm.Import) []byte {
	out := leb128.EncodeUint32(uint32(len(is)))
	for _, imp := range is {
		out = append(out, encodeImport(imp)...)
	}
	return out
}

func encodeImport(imp *wasm.Import) []byte {
	out := encodeName(imp.Module)
	out = append(out, encodeName(imp.Name)...)
	out = append(out, byte(imp.Kind))
	switch imp.Kind {
	case wasm.ImportKindFunc:
		out = append(out, leb128.EncodeUint32(imp.DescFunc)...)
	case wasm.ImportKindTable:
		out = append(out, encodeTableType(imp.DescTable)...)
	case wasm.ImportKindMemory:
		out = append(out, encodeLimits(imp.DescMemory.Limits)...)
	case wasm.ImportKindGlobal:
		out = append(out, encodeGlobalType(*imp.DescGlobal)...)
	}
	return out
}

func encodeName(s string) []byte {
	out := leb128.EncodeUint32(uint32(len(s)))
	return append(out, s...)
}

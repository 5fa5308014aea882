package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// DecodeModule decodes a complete Wasm binary into a wasm.Module. features
// gates which post-MVP instructions and section shapes are accepted; an
// encountered construct whose gating feature is disabled fails with a
// "disabled" error rather than being silently skipped.
func DecodeModule(bin []byte, features api.CoreFeatures) (*wasm.Module, error) {
	if len(bin) < 8 {
		return nil, wasm.ErrUnexpectedEnd
	}
	if !bytes.Equal(bin[0:4], Magic) {
		return nil, wasm.ErrBadMagic
	}
	if !bytes.Equal(bin[4:8], version) {
		return nil, wasm.ErrBadVersion
	}

	r := bytes.NewReader(bin[8:])
	mod := &wasm.Module{SectionRanges: map[wasm.SectionID]wasm.Range{}}

	lastOrder := 0
	sawCode, sawFunction := false, false
	offset := uint64(8)

	for r.Len() > 0 {
		idByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wasm.ErrMalformedSectionID, err)
		}
		id := wasm.SectionID(idByte)
		offset++

		size, n, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("get size of section %d: %w", id, err)
		}
		offset += uint64(n)

		if uint64(r.Len()) < uint64(size) {
			return nil, wasm.ErrUnexpectedEnd
		}
		body := make([]byte, size)
		if _, err := r.Read(body); err != nil {
			return nil, fmt.Errorf("read section %d body: %w", id, err)
		}
		start := offset
		offset += uint64(size)

		if id != wasm.SectionIDCustom {
			order := sectionOrder(id)
			if order == 0 {
				if lastOrder == len(encodeOrder) {
					return nil, fmt.Errorf("%w: section id %d", wasm.ErrJunkAfterLastSection, id)
				}
				return nil, fmt.Errorf("invalid section id: %d", id)
			}
			// datacount (order 10) is allowed to sit before code (order 11),
			// which is otherwise out of the strictly-ascending rule.
			if order <= lastOrder {
				return nil, fmt.Errorf("%w: section %d", wasm.ErrSectionOutOfOrder, id)
			}
			lastOrder = order
		}

		sr := bytes.NewReader(body)
		switch id {
		case wasm.SectionIDCustom:
			name, _, err := decodeUTF8(sr, "custom section name")
			if err != nil {
				return nil, err
			}
			rest := make([]byte, sr.Len())
			if _, err := sr.Read(rest); err != nil {
				return nil, err
			}
			if name == nameSectionName {
				ns, err := decodeNameSection(rest)
				if err != nil {
					return nil, fmt.Errorf("decode name section: %w", err)
				}
				mod.NameSection = ns
			} else {
				mod.CustomSections = append(mod.CustomSections, wasm.CustomSection{Name: name, Data: rest})
			}
		case wasm.SectionIDType:
			mod.TypeSection, err = decodeTypeSection(sr)
		case wasm.SectionIDImport:
			mod.ImportSection, err = decodeImportSection(sr)
		case wasm.SectionIDFunction:
			mod.FunctionSection, err = decodeFunctionSection(sr)
			sawFunction = true
		case wasm.SectionIDTable:
			mod.TableSection, err = decodeTableSection(sr)
		case wasm.SectionIDMemory:
			mod.MemorySection, err = decodeMemorySection(sr)
		case wasm.SectionIDGlobal:
			mod.GlobalSection, err = decodeGlobalSection(sr, features)
		case wasm.SectionIDExport:
			mod.ExportSection, err = decodeExportSection(sr)
		case wasm.SectionIDStart:
			mod.StartSection, err = decodeStartSection(sr)
		case wasm.SectionIDElement:
			mod.ElementSection, err = decodeElementSection(sr, features)
		case wasm.SectionIDCode:
			mod.CodeSection, err = decodeCodeSection(sr, features)
			sawCode = true
		case wasm.SectionIDData:
			mod.DataSection, err = decodeDataSection(sr, features)
		case wasm.SectionIDDataCount:
			mod.DataCountSection, err = decodeDataCountSection(sr)
		default:
			return nil, fmt.Errorf("invalid section id: %d", id)
		}
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		if sr.Len() != 0 {
			return nil, fmt.Errorf("%w: section %d", wasm.ErrSectionSizeMismatch, id)
		}

		mod.SectionRanges[id] = wasm.Range{Start: start, End: start + uint64(size)}
	}

	if sawFunction && sawCode && len(mod.FunctionSection) != len(mod.CodeSection) {
		return nil, fmt.Errorf("%w: function section has %d entries, code section has %d",
			wasm.ErrInconsistentFuncCode, len(mod.FunctionSection), len(mod.CodeSection))
	}
	if !sawFunction && sawCode && len(mod.CodeSection) != 0 {
		return nil, fmt.Errorf("%w: code section has %d entries, function section is absent",
			wasm.ErrInconsistentFuncCode, len(mod.CodeSection))
	}

	if mod.DataCountSection != nil && uint32(len(mod.DataSection)) != *mod.DataCountSection {
		return nil, fmt.Errorf("data count section (%d) does not match data section length (%d)",
			*mod.DataCountSection, len(mod.DataSection))
	}

	return mod, nil
}

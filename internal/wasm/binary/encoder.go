package binary

import (
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// EncodeModule serializes m back to a Wasm binary. Per spec.md section 9,
// this is always a whole-file rewrite: every standard section is
// recomputed from m's fields, never copied from the original bytes, and
// m.SectionRanges on the input is never consulted.
func EncodeModule(m *wasm.Module) []byte {
	out := append([]byte{}, Magic...)
	out = append(out, version...)

	for _, id := range encodeOrder {
		body := encodeSection(m, id)
		if body == nil {
			continue
		}
		out = append(out, id)
		out = append(out, leb128.EncodeUint32(uint32(len(body)))...)
		out = append(out, body...)
	}

	if m.NameSection != nil {
		payload := encodeNameSection(m.NameSection)
		if len(payload) > 0 {
			out = append(out, encodeCustomSection(nameSectionName, payload)...)
		}
	}
	for _, cs := range m.CustomSections {
		out = append(out, encodeCustomSection(cs.Name, cs.Data)...)
	}

	return out
}

// encodeSection returns the body of section id, or nil when the section
// is omitted entirely: a vector section with no entries is omitted just
// like an absent one, and the start and data-count sections are omitted
// when their pointer is nil.
func encodeSection(m *wasm.Module, id wasm.SectionID) []byte {
	switch id {
	case wasm.SectionIDType:
		if len(m.TypeSection) == 0 {
			return nil
		}
		return encodeTypeSection(m.TypeSection)
	case wasm.SectionIDImport:
		if len(m.ImportSection) == 0 {
			return nil
		}
		return encodeImportSection(m.ImportSection)
	case wasm.SectionIDFunction:
		if len(m.FunctionSection) == 0 {
			return nil
		}
		return encodeFunctionSection(m.FunctionSection)
	case wasm.SectionIDTable:
		if len(m.TableSection) == 0 {
			return nil
		}
		return encodeTableSection(m.TableSection)
	case wasm.SectionIDMemory:
		if len(m.MemorySection) == 0 {
			return nil
		}
		return encodeMemorySection(m.MemorySection)
	case wasm.SectionIDGlobal:
		if len(m.GlobalSection) == 0 {
			return nil
		}
		return encodeGlobalSection(m.GlobalSection)
	case wasm.SectionIDExport:
		if len(m.ExportSection) == 0 {
			return nil
		}
		return encodeExportSection(m.ExportSection)
	case wasm.SectionIDStart:
		if m.StartSection == nil {
			return nil
		}
		return encodeStartSection(*m.StartSection)
	case wasm.SectionIDElement:
		if len(m.ElementSection) == 0 {
			return nil
		}
		return encodeElementSection(m.ElementSection)
	case wasm.SectionIDDataCount:
		if m.DataCountSection == nil {
			return nil
		}
		return encodeDataCountSection(*m.DataCountSection)
	case wasm.SectionIDCode:
		if len(m.CodeSection) == 0 {
			return nil
		}
		return encodeCodeSection(m.CodeSection)
	case wasm.SectionIDData:
		if len(m.DataSection) == 0 {
			return nil
		}
		return encodeDataSection(m.DataSection)
	}
	return nil
}

func encodeCustomSection(name string, payload []byte) []byte {
	body := encodeName(name)
	body = append(body, payload...)
	out := []byte{wasm.SectionIDCustom}
	out = append(out, leb128.EncodeUint32(uint32(len(body)))...)
	return append(out, body...)
}

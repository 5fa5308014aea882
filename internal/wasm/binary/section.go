// Package binary implements the WebAssembly binary format: decoding a byte
// stream into a wasm.Module (C4) and encoding a wasm.Module back to bytes
// (C5).
package binary

import "github.com/wasmrw/wasmrw/internal/wasm"

// Magic and version are the fixed 8-byte module header.
var Magic = []byte{0x00, 0x61, 0x73, 0x6d}

var version = []byte{0x01, 0x00, 0x00, 0x00}

const nameSectionName = "name"

// sectionOrder returns the canonical ordering position of a standard
// section id, which is NOT the same as the id: datacount (id 12) sorts
// before code (id 10) per spec.md section 3 ("section order on the wire is
// strictly ascending by section id, except that ... the data-count section
// precedes the code section").
func sectionOrder(id wasm.SectionID) int {
	switch id {
	case wasm.SectionIDType:
		return 1
	case wasm.SectionIDImport:
		return 2
	case wasm.SectionIDFunction:
		return 3
	case wasm.SectionIDTable:
		return 4
	case wasm.SectionIDMemory:
		return 5
	case wasm.SectionIDGlobal:
		return 6
	case wasm.SectionIDExport:
		return 7
	case wasm.SectionIDStart:
		return 8
	case wasm.SectionIDElement:
		return 9
	case wasm.SectionIDDataCount:
		return 10
	case wasm.SectionIDCode:
		return 11
	case wasm.SectionIDData:
		return 12
	default:
		return 0
	}
}

// encodeOrder lists every standard section id in the order the encoder
// emits them, which is the same canonical order sectionOrder enforces on
// decode.
var encodeOrder = []wasm.SectionID{
	wasm.SectionIDType,
	wasm.SectionIDImport,
	wasm.SectionIDFunction,
	wasm.SectionIDTable,
	wasm.SectionIDMemory,
	wasm.SectionIDGlobal,
	wasm.SectionIDExport,
	wasm.SectionIDStart,
	wasm.SectionIDElement,
	wasm.SectionIDDataCount,
	wasm.SectionIDCode,
	wasm.SectionIDData,
}

package rewrite

import (
	"github.com/wasmrw/wasmrw/internal/indexfix"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

const (
	indexfixInsert = indexfix.Insert
	indexfixDelete = indexfix.Delete
)

// combinedFuncIndexAtImportPos returns the combined (imports-first)
// function index that an import inserted/deleted at ImportSection
// position pos would occupy, counting only the function-kind imports
// that precede it.
func combinedFuncIndexAtImportPos(m *wasm.Module, pos int) wasm.Index {
	var n wasm.Index
	for _, imp := range m.ImportSection[:pos] {
		if imp.Kind == wasm.ImportKindFunc {
			n++
		}
	}
	return n
}

// combinedGlobalIndexAtImportPos is the global-kind analog of
// combinedFuncIndexAtImportPos.
func combinedGlobalIndexAtImportPos(m *wasm.Module, pos int) wasm.Index {
	var n wasm.Index
	for _, imp := range m.ImportSection[:pos] {
		if imp.Kind == wasm.ImportKindGlobal {
			n++
		}
	}
	return n
}

// fixAfterImportInsert drives the index fixer for an import of the given
// kind being inserted or deleted at ImportSection position pos. Table and
// memory imports do not participate in a combined index space shared with
// internal entries, so they need no cascade.
func fixAfterImportInsert(m *wasm.Module, kind wasm.ImportKind, pos int, dir indexfix.Direction) error {
	switch kind {
	case wasm.ImportKindFunc:
		return indexfix.FixFunctionIndex(m, combinedFuncIndexAtImportPos(m, pos), dir)
	case wasm.ImportKindGlobal:
		return indexfix.FixGlobalIndex(m, combinedGlobalIndexAtImportPos(m, pos), dir)
	default:
		return nil
	}
}

// globalSectionOffsetToCombined converts an internal global_sec offset to
// the external imports-first combined global index.
func globalSectionOffsetToCombined(m *wasm.Module, offset int) wasm.Index {
	return m.ImportedGlobalCount() + wasm.Index(offset)
}

// funcSectionOffsetToCombined converts an internal func_sec/code_sec
// offset to the external imports-first combined function index.
func funcSectionOffsetToCombined(m *wasm.Module, offset int) wasm.Index {
	return m.ImportedFunctionCount() + wasm.Index(offset)
}

package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/wasm"
)

// ImportDescriptor is a partial match record for ImportRewriter.Select; a
// nil field means "match any".
type ImportDescriptor struct {
	Module *string
	Name   *string
	Kind   *wasm.ImportKind
}

func (d ImportDescriptor) isZero() bool {
	return d.Module == nil && d.Name == nil && d.Kind == nil
}

func importMatches(desc ImportDescriptor, row *wasm.Import) bool {
	if desc.Module != nil && *desc.Module != row.Module {
		return false
	}
	if desc.Name != nil && *desc.Name != row.Name {
		return false
	}
	if desc.Kind != nil && *desc.Kind != row.Kind {
		return false
	}
	return true
}

// ImportRewriter is the Section Rewriter for the import section. Because
// function imports occupy the front of the combined function index space,
// Insert/Delete of a function-kind import also drives FixFunctionIndex
// (and FixGlobalIndex for a global-kind import) over the whole Module.
type ImportRewriter struct {
	m *wasm.Module
}

func NewImportRewriter(m *wasm.Module) *ImportRewriter { return &ImportRewriter{m: m} }

func (w *ImportRewriter) Select(desc ImportDescriptor) []*wasm.Import {
	idx := selectIndices(w.m.ImportSection, desc, importMatches)
	out := make([]*wasm.Import, len(idx))
	for i, j := range idx {
		out[i] = w.m.ImportSection[j]
	}
	return out
}

// Insert places item at the position selected by desc (appended at the
// tail if desc is the zero value), shifting every downstream cross-section
// reference to account for the new entry.
func (w *ImportRewriter) Insert(desc ImportDescriptor, item *wasm.Import) error {
	pos, err := insertAt(w.m.ImportSection, desc, ImportDescriptor.isZero, importMatches)
	if err != nil {
		return fmt.Errorf("import insert: %w", err)
	}
	w.m.ImportSection = append(w.m.ImportSection, nil)
	copy(w.m.ImportSection[pos+1:], w.m.ImportSection[pos:])
	w.m.ImportSection[pos] = item

	return fixAfterImportInsert(w.m, item.Kind, pos, indexfixInsert)
}

// Delete removes the single import matched by desc.
func (w *ImportRewriter) Delete(desc ImportDescriptor) error {
	pos, err := selectOne(w.m.ImportSection, desc, importMatches)
	if err != nil {
		return fmt.Errorf("import delete: %w", err)
	}
	kind := w.m.ImportSection[pos].Kind

	if err := fixAfterImportInsert(w.m, kind, pos, indexfixDelete); err != nil {
		return fmt.Errorf("import delete: %w", err)
	}
	w.m.ImportSection = append(w.m.ImportSection[:pos], w.m.ImportSection[pos+1:]...)
	return nil
}

// Update overwrites only the non-nil fields of item on every import
// matched by desc.
func (w *ImportRewriter) Update(desc ImportDescriptor, item ImportPatch) error {
	idx := selectIndices(w.m.ImportSection, desc, importMatches)
	if len(idx) == 0 {
		return fmt.Errorf("import update: %w", wasm.ErrNoMatch)
	}
	for _, i := range idx {
		row := w.m.ImportSection[i]
		if item.Module != nil {
			row.Module = *item.Module
		}
		if item.Name != nil {
			row.Name = *item.Name
		}
	}
	return nil
}

// ImportPatch carries the fields Update may overwrite; nil means "leave
// unchanged". Kind is immutable by design: changing an import's kind
// would invalidate every downstream index-space assumption.
type ImportPatch struct {
	Module *string
	Name   *string
}

package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/wasm"
)

// ExportDescriptor is a partial match record for ExportRewriter.
type ExportDescriptor struct {
	Name  *string
	Kind  *wasm.ExportKind
	Index *wasm.Index
}

func (d ExportDescriptor) isZero() bool {
	return d.Name == nil && d.Kind == nil && d.Index == nil
}

func exportMatches(desc ExportDescriptor, row *wasm.Export) bool {
	if desc.Name != nil && *desc.Name != row.Name {
		return false
	}
	if desc.Kind != nil && *desc.Kind != row.Kind {
		return false
	}
	if desc.Index != nil && *desc.Index != row.Index {
		return false
	}
	return true
}

// ExportRewriter is the Section Rewriter for the export section. Exports
// carry no cross-references of their own (other entries reference them by
// name, not by export-section position), so mutation never drives the
// index fixer directly -- callers changing the entity an export points at
// do that through the owning section's rewriter.
type ExportRewriter struct {
	m *wasm.Module
}

func NewExportRewriter(m *wasm.Module) *ExportRewriter { return &ExportRewriter{m: m} }

func (w *ExportRewriter) Select(desc ExportDescriptor) []*wasm.Export {
	idx := selectIndices(w.m.ExportSection, desc, exportMatches)
	out := make([]*wasm.Export, len(idx))
	for i, j := range idx {
		out[i] = w.m.ExportSection[j]
	}
	return out
}

func (w *ExportRewriter) Insert(desc ExportDescriptor, item *wasm.Export) error {
	pos, err := insertAt(w.m.ExportSection, desc, ExportDescriptor.isZero, exportMatches)
	if err != nil {
		return fmt.Errorf("export insert: %w", err)
	}
	w.m.ExportSection = append(w.m.ExportSection, nil)
	copy(w.m.ExportSection[pos+1:], w.m.ExportSection[pos:])
	w.m.ExportSection[pos] = item
	return nil
}

func (w *ExportRewriter) Delete(desc ExportDescriptor) error {
	pos, err := selectOne(w.m.ExportSection, desc, exportMatches)
	if err != nil {
		return fmt.Errorf("export delete: %w", err)
	}
	w.m.ExportSection = append(w.m.ExportSection[:pos], w.m.ExportSection[pos+1:]...)
	return nil
}

// ExportPatch carries the fields Update may overwrite; nil means "leave
// unchanged".
type ExportPatch struct {
	Name  *string
	Index *wasm.Index
}

func (w *ExportRewriter) Update(desc ExportDescriptor, item ExportPatch) error {
	idx := selectIndices(w.m.ExportSection, desc, exportMatches)
	if len(idx) == 0 {
		return fmt.Errorf("export update: %w", wasm.ErrNoMatch)
	}
	for _, i := range idx {
		row := w.m.ExportSection[i]
		if item.Name != nil {
			row.Name = *item.Name
		}
		if item.Index != nil {
			row.Index = *item.Index
		}
	}
	return nil
}

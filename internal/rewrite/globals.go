package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/indexfix"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// GlobalDescriptor is a partial match record for GlobalRewriter, addressed
// by imports-first combined global index (nil matches any).
type GlobalDescriptor struct {
	Index   *wasm.Index
	ValType *wasm.ValueType
	Mutable *bool
}

func (d GlobalDescriptor) isZero() bool {
	return d.Index == nil && d.ValType == nil && d.Mutable == nil
}

// GlobalRewriter is the Section Rewriter for the internal global section.
// Insert/Delete drive FixGlobalIndex over the whole Module so every
// GlobalGet/GlobalSet immediate and global-tagged export stays correct.
type GlobalRewriter struct {
	m *wasm.Module
}

func NewGlobalRewriter(m *wasm.Module) *GlobalRewriter { return &GlobalRewriter{m: m} }

func (w *GlobalRewriter) globalMatches(desc GlobalDescriptor, offset int, row *wasm.Global) bool {
	if desc.Index != nil && *desc.Index != globalSectionOffsetToCombined(w.m, offset) {
		return false
	}
	if desc.ValType != nil && *desc.ValType != row.Type.ValType {
		return false
	}
	if desc.Mutable != nil && *desc.Mutable != row.Type.Mutable {
		return false
	}
	return true
}

func (w *GlobalRewriter) selectIndices(desc GlobalDescriptor) []int {
	var out []int
	for i, row := range w.m.GlobalSection {
		if w.globalMatches(desc, i, row) {
			out = append(out, i)
		}
	}
	return out
}

func (w *GlobalRewriter) Select(desc GlobalDescriptor) []*wasm.Global {
	idx := w.selectIndices(desc)
	out := make([]*wasm.Global, len(idx))
	for i, j := range idx {
		out[i] = w.m.GlobalSection[j]
	}
	return out
}

func (w *GlobalRewriter) selectOne(desc GlobalDescriptor) (int, error) {
	idx := w.selectIndices(desc)
	switch len(idx) {
	case 0:
		return 0, wasm.ErrNoMatch
	case 1:
		return idx[0], nil
	default:
		return 0, wasm.ErrAmbiguousSelector
	}
}

// Insert places item at the section offset selected by desc (appended at
// the tail if desc is the zero value).
func (w *GlobalRewriter) Insert(desc GlobalDescriptor, item *wasm.Global) error {
	var pos int
	if desc.isZero() {
		pos = len(w.m.GlobalSection)
	} else {
		p, err := w.selectOne(desc)
		if err != nil {
			return fmt.Errorf("global insert: %w", err)
		}
		pos = p
	}

	combined := globalSectionOffsetToCombined(w.m, pos)
	w.m.GlobalSection = append(w.m.GlobalSection, nil)
	copy(w.m.GlobalSection[pos+1:], w.m.GlobalSection[pos:])
	w.m.GlobalSection[pos] = item

	return indexfix.FixGlobalIndex(w.m, combined, indexfixInsert)
}

// Delete removes the single global matched by desc.
func (w *GlobalRewriter) Delete(desc GlobalDescriptor) error {
	pos, err := w.selectOne(desc)
	if err != nil {
		return fmt.Errorf("global delete: %w", err)
	}
	combined := globalSectionOffsetToCombined(w.m, pos)

	if err := indexfix.FixGlobalIndex(w.m, combined, indexfixDelete); err != nil {
		return fmt.Errorf("global delete: %w", err)
	}
	w.m.GlobalSection = append(w.m.GlobalSection[:pos], w.m.GlobalSection[pos+1:]...)
	return nil
}

// GlobalPatch carries the fields Update may overwrite; nil means "leave
// unchanged". ValType and Mutable are immutable by design: changing a
// global's type after code has been compiled against it would invalidate
// every GlobalGet/GlobalSet in the module.
type GlobalPatch struct {
	Init *wasm.ConstantExpression
}

func (w *GlobalRewriter) Update(desc GlobalDescriptor, item GlobalPatch) error {
	idx := w.selectIndices(desc)
	if len(idx) == 0 {
		return fmt.Errorf("global update: %w", wasm.ErrNoMatch)
	}
	for _, i := range idx {
		if item.Init != nil {
			w.m.GlobalSection[i].Init = *item.Init
		}
	}
	return nil
}

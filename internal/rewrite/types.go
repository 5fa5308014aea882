package rewrite

import (
	"fmt"
	"reflect"

	"github.com/wasmrw/wasmrw/internal/indexfix"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// TypeDescriptor is a partial match record for TypeRewriter, addressed by
// type_sec index (nil matches any).
type TypeDescriptor struct {
	Index   *wasm.Index
	Params  []wasm.ValueType
	Results []wasm.ValueType
}

func (d TypeDescriptor) isZero() bool {
	return d.Index == nil && d.Params == nil && d.Results == nil
}

// TypeRewriter is the Section Rewriter for the type section. Insert/Delete
// drive FixTypeIndex over the whole Module. Update is intentionally not
// offered: a function type's signature is load-bearing for every Call
// site that assumes it, so changing Params/Results in place has no safe
// meaning -- replace the type (insert a new one, repoint callers, delete
// the old) instead.
type TypeRewriter struct {
	m *wasm.Module
}

func NewTypeRewriter(m *wasm.Module) *TypeRewriter { return &TypeRewriter{m: m} }

func (w *TypeRewriter) typeMatches(desc TypeDescriptor, offset int, row *wasm.FunctionType) bool {
	if desc.Index != nil && *desc.Index != wasm.Index(offset) {
		return false
	}
	if desc.Params != nil && !reflect.DeepEqual(desc.Params, row.Params) {
		return false
	}
	if desc.Results != nil && !reflect.DeepEqual(desc.Results, row.Results) {
		return false
	}
	return true
}

func (w *TypeRewriter) selectIndices(desc TypeDescriptor) []int {
	var out []int
	for i, row := range w.m.TypeSection {
		if w.typeMatches(desc, i, row) {
			out = append(out, i)
		}
	}
	return out
}

func (w *TypeRewriter) Select(desc TypeDescriptor) []*wasm.FunctionType {
	idx := w.selectIndices(desc)
	out := make([]*wasm.FunctionType, len(idx))
	for i, j := range idx {
		out[i] = w.m.TypeSection[j]
	}
	return out
}

func (w *TypeRewriter) selectOne(desc TypeDescriptor) (int, error) {
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

// Insert places item at the type_sec index selected by desc (appended at
// the tail if desc is the zero value).
func (w *TypeRewriter) Insert(desc TypeDescriptor, item *wasm.FunctionType) error {
	var pos int
	if desc.isZero() {
		pos = len(w.m.TypeSection)
	} else {
		p, err := w.selectOne(desc)
		if err != nil {
			return fmt.Errorf("type insert: %w", err)
		}
		pos = p
	}

	w.m.TypeSection = append(w.m.TypeSection, nil)
	copy(w.m.TypeSection[pos+1:], w.m.TypeSection[pos:])
	w.m.TypeSection[pos] = item

	return indexfix.FixTypeIndex(w.m, wasm.Index(pos), indexfixInsert)
}

// Delete removes the single type matched by desc.
func (w *TypeRewriter) Delete(desc TypeDescriptor) error {
	pos, err := w.selectOne(desc)
	if err != nil {
		return fmt.Errorf("type delete: %w", err)
	}

	if err := indexfix.FixTypeIndex(w.m, wasm.Index(pos), indexfixDelete); err != nil {
		return fmt.Errorf("type delete: %w", err)
	}
	w.m.TypeSection = append(w.m.TypeSection[:pos], w.m.TypeSection[pos+1:]...)
	return nil
}

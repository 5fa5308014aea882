package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/wasm"
)

// TableEntryDescriptor selects a slot in an element segment's init vector
// (the indirect-call table's backing store) by segment and slot position.
type TableEntryDescriptor struct {
	Segment *int
	Slot    *int
}

func (d TableEntryDescriptor) isZero() bool { return d.Segment == nil && d.Slot == nil }

// TableEntryRewriter is the Section Rewriter for indirect-table entries,
// which live in element_sec init vectors rather than a section of their
// own. It does not widen table limits on insert; that policy belongs to
// the semantics façade's AppendIndirectTableEntry, which calls
// indexfix.WidenTableMax itself before delegating here.
type TableEntryRewriter struct {
	m *wasm.Module
}

func NewTableEntryRewriter(m *wasm.Module) *TableEntryRewriter { return &TableEntryRewriter{m: m} }

func (w *TableEntryRewriter) resolve(desc TableEntryDescriptor) (seg, slot int, err error) {
	if desc.Segment == nil || desc.Slot == nil {
		return 0, 0, wasm.ErrAmbiguousSelector
	}
	seg, slot = *desc.Segment, *desc.Slot
	if seg < 0 || seg >= len(w.m.ElementSection) {
		return 0, 0, wasm.ErrNoMatch
	}
	if slot < 0 || slot > len(w.m.ElementSection[seg].Init) {
		return 0, 0, wasm.ErrNoMatch
	}
	return seg, slot, nil
}

// Select returns the function index stored at the slot identified by desc.
func (w *TableEntryRewriter) Select(desc TableEntryDescriptor) (wasm.Index, error) {
	seg, slot, err := w.resolve(desc)
	if err != nil {
		return 0, fmt.Errorf("table entry select: %w", err)
	}
	if slot == len(w.m.ElementSection[seg].Init) {
		return 0, fmt.Errorf("table entry select: %w", wasm.ErrNoMatch)
	}
	return w.m.ElementSection[seg].Init[slot], nil
}

// Insert places funcIdx at the slot identified by desc, shifting later
// slots in the same segment back by one.
func (w *TableEntryRewriter) Insert(desc TableEntryDescriptor, funcIdx wasm.Index) error {
	seg, slot, err := w.resolve(desc)
	if err != nil {
		return fmt.Errorf("table entry insert: %w", err)
	}
	init := w.m.ElementSection[seg].Init
	init = append(init, 0)
	copy(init[slot+1:], init[slot:])
	init[slot] = funcIdx
	w.m.ElementSection[seg].Init = init
	return nil
}

// Append places funcIdx at the tail of the identified segment's init
// vector and returns the slot it was assigned.
func (w *TableEntryRewriter) Append(segment int, funcIdx wasm.Index) (int, error) {
	if segment < 0 || segment >= len(w.m.ElementSection) {
		return 0, fmt.Errorf("table entry append: %w", wasm.ErrNoMatch)
	}
	slot := len(w.m.ElementSection[segment].Init)
	w.m.ElementSection[segment].Init = append(w.m.ElementSection[segment].Init, funcIdx)
	return slot, nil
}

// Delete removes the slot identified by desc.
func (w *TableEntryRewriter) Delete(desc TableEntryDescriptor) error {
	seg, slot, err := w.resolve(desc)
	if err != nil {
		return fmt.Errorf("table entry delete: %w", err)
	}
	init := w.m.ElementSection[seg].Init
	if slot == len(init) {
		return fmt.Errorf("table entry delete: %w", wasm.ErrNoMatch)
	}
	w.m.ElementSection[seg].Init = append(init[:slot], init[slot+1:]...)
	return nil
}

// Update overwrites the function index stored at the slot identified by
// desc.
func (w *TableEntryRewriter) Update(desc TableEntryDescriptor, funcIdx wasm.Index) error {
	seg, slot, err := w.resolve(desc)
	if err != nil {
		return fmt.Errorf("table entry update: %w", err)
	}
	if slot == len(w.m.ElementSection[seg].Init) {
		return fmt.Errorf("table entry update: %w", wasm.ErrNoMatch)
	}
	w.m.ElementSection[seg].Init[slot] = funcIdx
	return nil
}

package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/indexfix"
	"github.com/wasmrw/wasmrw/internal/wasm"
	"github.com/wasmrw/wasmrw/internal/wasmdebug"
)

// FunctionDescriptor selects an internal function by its imports-first
// combined index (nil matches any). A combined index that falls in the
// imported range selects nothing on Select and is rejected with
// ErrImportNotEditable by Insert/Delete/Update: mutating an import is the
// ImportRewriter's job.
type FunctionDescriptor struct {
	Index *wasm.Index
}

func (d FunctionDescriptor) isZero() bool { return d.Index == nil }

// NewFunction is the body of an internal function to insert: its
// type_sec index, declared local types, and instruction tree.
type NewFunction struct {
	TypeIndex  wasm.Index
	LocalTypes []wasm.ValueType
	Body       []wasm.Instruction
}

// FunctionRewriter is the Section Rewriter spanning func_sec and code_sec
// together, since every internal function owns exactly one entry in each.
// Insert/Delete drive FixFunctionIndex over the whole Module.
type FunctionRewriter struct {
	m *wasm.Module
}

func NewFunctionRewriter(m *wasm.Module) *FunctionRewriter { return &FunctionRewriter{m: m} }

// describeImportedFunc formats the combined-index'th function-kind import
// as "module.name(params) results" for an ImportNotEditable error, falling
// back to a bare index if the import or its type can't be resolved.
func describeImportedFunc(m *wasm.Module, idx wasm.Index) string {
	var n wasm.Index
	for _, imp := range m.ImportSection {
		if imp.Kind != wasm.ImportKindFunc {
			continue
		}
		if n == idx {
			name := wasmdebug.FuncName(imp.Module, imp.Name, idx)
			if int(imp.DescFunc) < len(m.TypeSection) {
				ft := m.TypeSection[imp.DescFunc]
				return wasmdebug.Signature(name, ft.Params, ft.Results)
			}
			return name
		}
		n++
	}
	return wasmdebug.FuncName("", "", idx)
}

func (w *FunctionRewriter) selectOffsets(desc FunctionDescriptor) []int {
	imported := w.m.ImportedFunctionCount()
	if desc.Index == nil {
		out := make([]int, len(w.m.CodeSection))
		for i := range out {
			out[i] = i
		}
		return out
	}
	if *desc.Index < imported {
		return nil
	}
	offset := int(*desc.Index - imported)
	if offset >= len(w.m.CodeSection) {
		return nil
	}
	return []int{offset}
}

// Select returns the (type index, code) pair for every internal function
// matched by desc.
func (w *FunctionRewriter) Select(desc FunctionDescriptor) []struct {
	TypeIndex wasm.Index
	Code      *wasm.Code
} {
	offs := w.selectOffsets(desc)
	out := make([]struct {
		TypeIndex wasm.Index
		Code      *wasm.Code
	}, len(offs))
	for i, off := range offs {
		out[i].TypeIndex = w.m.FunctionSection[off]
		out[i].Code = w.m.CodeSection[off]
	}
	return out
}

// Insert appends a new internal function at the combined index selected
// by desc (appended at the tail if desc is the zero value) and returns the
// combined index it was assigned.
func (w *FunctionRewriter) Insert(desc FunctionDescriptor, fn NewFunction) (wasm.Index, error) {
	imported := w.m.ImportedFunctionCount()
	var offset int
	if desc.isZero() {
		offset = len(w.m.CodeSection)
	} else {
		if *desc.Index < imported {
			return 0, fmt.Errorf("function insert: %s is not editable: %w", describeImportedFunc(w.m, *desc.Index), wasm.ErrImportNotEditable)
		}
		offset = int(*desc.Index - imported)
		if offset > len(w.m.CodeSection) {
			return 0, fmt.Errorf("function insert: %w", wasm.ErrNoMatch)
		}
	}
	combined := imported + wasm.Index(offset)

	w.m.FunctionSection = append(w.m.FunctionSection, 0)
	copy(w.m.FunctionSection[offset+1:], w.m.FunctionSection[offset:])
	w.m.FunctionSection[offset] = fn.TypeIndex

	w.m.CodeSection = append(w.m.CodeSection, nil)
	copy(w.m.CodeSection[offset+1:], w.m.CodeSection[offset:])
	w.m.CodeSection[offset] = &wasm.Code{LocalTypes: fn.LocalTypes, Body: fn.Body}

	if err := indexfix.FixFunctionIndex(w.m, combined, indexfixInsert); err != nil {
		return 0, fmt.Errorf("function insert: %w", err)
	}
	return combined, nil
}

// Delete removes the single internal function matched by desc.
func (w *FunctionRewriter) Delete(desc FunctionDescriptor) error {
	if desc.Index == nil {
		return fmt.Errorf("function delete: %w", wasm.ErrAmbiguousSelector)
	}
	imported := w.m.ImportedFunctionCount()
	if *desc.Index < imported {
		return fmt.Errorf("function delete: %s is not editable: %w", describeImportedFunc(w.m, *desc.Index), wasm.ErrImportNotEditable)
	}
	offset := int(*desc.Index - imported)
	if offset < 0 || offset >= len(w.m.CodeSection) {
		return fmt.Errorf("function delete: %w", wasm.ErrNoMatch)
	}

	if err := indexfix.FixFunctionIndex(w.m, *desc.Index, indexfixDelete); err != nil {
		return fmt.Errorf("function delete: %w", err)
	}
	w.m.FunctionSection = append(w.m.FunctionSection[:offset], w.m.FunctionSection[offset+1:]...)
	w.m.CodeSection = append(w.m.CodeSection[:offset], w.m.CodeSection[offset+1:]...)
	return nil
}

// Update replaces the body (not the type) of the single internal function
// matched by desc.
func (w *FunctionRewriter) Update(desc FunctionDescriptor, body []wasm.Instruction, localTypes []wasm.ValueType) error {
	if desc.Index == nil {
		return fmt.Errorf("function update: %w", wasm.ErrAmbiguousSelector)
	}
	imported := w.m.ImportedFunctionCount()
	if *desc.Index < imported {
		return fmt.Errorf("function update: %s is not editable: %w", describeImportedFunc(w.m, *desc.Index), wasm.ErrImportNotEditable)
	}
	offset := int(*desc.Index - imported)
	if offset < 0 || offset >= len(w.m.CodeSection) {
		return fmt.Errorf("function update: %w", wasm.ErrNoMatch)
	}
	w.m.CodeSection[offset].Body = body
	w.m.CodeSection[offset].LocalTypes = localTypes
	return nil
}

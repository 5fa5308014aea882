package rewrite

import (
	"fmt"

	"github.com/wasmrw/wasmrw/internal/wasm"
)

// DataDescriptor is a partial match record for DataRewriter (nil matches
// any).
type DataDescriptor struct {
	Index *int
	Mode  *wasm.DataSegmentMode
}

func (d DataDescriptor) isZero() bool { return d.Index == nil && d.Mode == nil }

func dataMatches(desc DataDescriptor, offset int, row *wasm.DataSegment) bool {
	if desc.Index != nil && *desc.Index != offset {
		return false
	}
	if desc.Mode != nil && *desc.Mode != row.Mode {
		return false
	}
	return true
}

// DataRewriter is the Section Rewriter for the data section. Data
// segments carry no cross-section references (datacount_sec is a plain
// count, not an index space), so mutation never drives the index fixer.
type DataRewriter struct {
	m *wasm.Module
}

func NewDataRewriter(m *wasm.Module) *DataRewriter { return &DataRewriter{m: m} }

func (w *DataRewriter) selectIndices(desc DataDescriptor) []int {
	var out []int
	for i, row := range w.m.DataSection {
		if dataMatches(desc, i, row) {
			out = append(out, i)
		}
	}
	return out
}

func (w *DataRewriter) Select(desc DataDescriptor) []*wasm.DataSegment {
	idx := w.selectIndices(desc)
	out := make([]*wasm.DataSegment, len(idx))
	for i, j := range idx {
		out[i] = w.m.DataSection[j]
	}
	return out
}

func (w *DataRewriter) selectOne(desc DataDescriptor) (int, error) {
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

func (w *DataRewriter) Insert(desc DataDescriptor, item *wasm.DataSegment) error {
	var pos int
	if desc.isZero() {
		pos = len(w.m.DataSection)
	} else {
		p, err := w.selectOne(desc)
		if err != nil {
			return fmt.Errorf("data insert: %w", err)
		}
		pos = p
	}
	w.m.DataSection = append(w.m.DataSection, nil)
	copy(w.m.DataSection[pos+1:], w.m.DataSection[pos:])
	w.m.DataSection[pos] = item
	w.syncDataCount()
	return nil
}

func (w *DataRewriter) Delete(desc DataDescriptor) error {
	pos, err := w.selectOne(desc)
	if err != nil {
		return fmt.Errorf("data delete: %w", err)
	}
	w.m.DataSection = append(w.m.DataSection[:pos], w.m.DataSection[pos+1:]...)
	w.syncDataCount()
	return nil
}

// DataPatch carries the fields Update may overwrite; nil means "leave
// unchanged".
type DataPatch struct {
	Init *[]byte
}

func (w *DataRewriter) Update(desc DataDescriptor, item DataPatch) error {
	idx := w.selectIndices(desc)
	if len(idx) == 0 {
		return fmt.Errorf("data update: %w", wasm.ErrNoMatch)
	}
	for _, i := range idx {
		if item.Init != nil {
			w.m.DataSection[i].Init = *item.Init
		}
	}
	return nil
}

// syncDataCount keeps DataCountSection consistent after an insert/delete,
// since its presence signals the module was compiled with bulk-memory
// instructions (memory.init/data.drop) that need the count up front.
func (w *DataRewriter) syncDataCount() {
	if w.m.DataCountSection == nil {
		return
	}
	n := uint32(len(w.m.DataSection))
	w.m.DataCountSection = &n
}

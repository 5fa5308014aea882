package indexfix

import "github.com/wasmrw/wasmrw/internal/wasm"

// FixFunctionIndex shifts every reference to a function index at or past k
// by dir, for an insertion or deletion at combined function index k
// (imports enumerated first, then code_sec). On Delete, it first rejects
// the operation with wasm.ErrIndexInUse if any Call or CallIndirect-free
// reference still targets k exactly -- callers must remove those
// references (or the function itself, if k is being removed because it is
// unused) before retrying.
func FixFunctionIndex(m *wasm.Module, k wasm.Index, dir Direction) error {
	if dir == Delete {
		var inUse bool
		walkAllCode(m, func(in *wasm.Instruction) {
			if in.Opcode == wasm.OpcodeCall {
				if idx, ok := in.Args.(wasm.IndexArgs); ok && references(idx.Index, k) {
					inUse = true
				}
			}
		})
		for _, e := range m.ElementSection {
			for _, idx := range e.Init {
				if references(idx, k) {
					inUse = true
				}
			}
		}
		if m.StartSection != nil && references(*m.StartSection, k) {
			inUse = true
		}
		for _, e := range m.ExportSection {
			if e.Kind == wasm.ExportKindFunc && references(e.Index, k) {
				inUse = true
			}
		}
		if inUse {
			return wasm.ErrIndexInUse
		}
	}

	walkAllCode(m, func(in *wasm.Instruction) {
		if in.Opcode == wasm.OpcodeCall {
			if idx, ok := in.Args.(wasm.IndexArgs); ok {
				in.Args = wasm.IndexArgs{Index: shiftIndex(idx.Index, k, dir)}
			}
		}
	})
	for _, e := range m.ElementSection {
		for i, idx := range e.Init {
			e.Init[i] = shiftIndex(idx, k, dir)
		}
	}
	for _, e := range m.ExportSection {
		if e.Kind == wasm.ExportKindFunc {
			e.Index = shiftIndex(e.Index, k, dir)
		}
	}
	if m.StartSection != nil {
		shifted := shiftIndex(*m.StartSection, k, dir)
		m.StartSection = &shifted
	}
	return nil
}

// FixTypeIndex shifts every reference to a type_sec index at or past k by
// dir, for an insertion or deletion of a function type at index k.
func FixTypeIndex(m *wasm.Module, k wasm.Index, dir Direction) error {
	if dir == Delete {
		var inUse bool
		for _, fn := range m.FunctionSection {
			if references(fn, k) {
				inUse = true
			}
		}
		for _, imp := range m.ImportSection {
			if imp.Kind == wasm.ImportKindFunc && references(imp.DescFunc, k) {
				inUse = true
			}
		}
		walkAllCode(m, func(in *wasm.Instruction) {
			if in.Opcode == wasm.OpcodeCallIndirect {
				if ta, ok := in.Args.(wasm.TableArg); ok && references(ta.X, k) {
					inUse = true
				}
			}
		})
		if inUse {
			return wasm.ErrIndexInUse
		}
	}

	for i, fn := range m.FunctionSection {
		m.FunctionSection[i] = shiftIndex(fn, k, dir)
	}
	for _, imp := range m.ImportSection {
		if imp.Kind == wasm.ImportKindFunc {
			imp.DescFunc = shiftIndex(imp.DescFunc, k, dir)
		}
	}
	walkAllCode(m, func(in *wasm.Instruction) {
		if in.Opcode == wasm.OpcodeCallIndirect {
			if ta, ok := in.Args.(wasm.TableArg); ok {
				in.Args = wasm.TableArg{X: shiftIndex(ta.X, k, dir), Y: ta.Y}
			}
		}
	})
	return nil
}

// FixGlobalIndex shifts every reference to a global index at or past k by
// dir, for an insertion or deletion of a global at combined index k
// (imports enumerated first, then global_sec). Unlike an earlier revision
// of this logic this decrements (never increments) on Delete.
func FixGlobalIndex(m *wasm.Module, k wasm.Index, dir Direction) error {
	if dir == Delete {
		var inUse bool
		walkAllCode(m, func(in *wasm.Instruction) {
			if in.Opcode == wasm.OpcodeGlobalGet || in.Opcode == wasm.OpcodeGlobalSet {
				if idx, ok := in.Args.(wasm.IndexArgs); ok && references(idx.Index, k) {
					inUse = true
				}
			}
		})
		for _, e := range m.ExportSection {
			if e.Kind == wasm.ExportKindGlobal && references(e.Index, k) {
				inUse = true
			}
		}
		if inUse {
			return wasm.ErrIndexInUse
		}
	}

	walkAllCode(m, func(in *wasm.Instruction) {
		if in.Opcode == wasm.OpcodeGlobalGet || in.Opcode == wasm.OpcodeGlobalSet {
			if idx, ok := in.Args.(wasm.IndexArgs); ok {
				in.Args = wasm.IndexArgs{Index: shiftIndex(idx.Index, k, dir)}
			}
		}
	})
	for _, e := range m.ExportSection {
		if e.Kind == wasm.ExportKindGlobal {
			e.Index = shiftIndex(e.Index, k, dir)
		}
	}
	return nil
}

// WidenTableMax ensures the sole table in m (creating one if absent) has
// room for at least n elements, widening its declared maximum (and
// minimum, if narrower) to n. Per spec.md section 4.5, adding an indirect
// function past the current max widens rather than failing.
func WidenTableMax(m *wasm.Module, n uint32) {
	if len(m.TableSection) == 0 {
		m.TableSection = append(m.TableSection, &wasm.TableType{
			ElemType: wasm.ElemTypeFuncref,
			Limits:   wasm.Limits{Min: n, Max: &n},
		})
		return
	}
	t := m.TableSection[0]
	if t.Limits.Min < n {
		t.Limits.Min = n
	}
	if t.Limits.Max == nil || *t.Limits.Max < n {
		max := n
		t.Limits.Max = &max
	}
}

// WidenMemoryMax ensures the sole memory in m has room for byte offset
// endOffset, growing its declared maximum by whole pages as needed. Per
// spec.md section 4.5: "when written data at offset+len exceeds
// max_pages*65536, grow max by ceil(overflow/65536)".
func WidenMemoryMax(m *wasm.Module, endOffset uint64) {
	if len(m.MemorySection) == 0 {
		return
	}
	mt := m.MemorySection[0]
	if mt.Limits.Max == nil {
		return
	}
	capacity := uint64(*mt.Limits.Max) * uint64(wasm.MemoryPageSize)
	if endOffset <= capacity {
		return
	}
	overflow := endOffset - capacity
	extraPages := uint32((overflow + uint64(wasm.MemoryPageSize) - 1) / uint64(wasm.MemoryPageSize))
	newMax := *mt.Limits.Max + extraPages
	mt.Limits.Max = &newMax
	if mt.Limits.Min > newMax {
		mt.Limits.Min = newMax
	}
}

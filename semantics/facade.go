// Package semantics exposes named, one-to-one operations over a Module
// that map onto internal/rewrite calls, the way a binary-patching tool's
// callers think about a module rather than in terms of raw section CRUD.
package semantics

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/indexfix"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/rewrite"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// Facade is the entry point for named module-editing operations. It holds
// a pointer to the Module it edits and no other state, so it is safe to
// discard and recreate around any Module.
type Facade struct {
	m *wasm.Module
}

func New(m *wasm.Module) *Facade { return &Facade{m: m} }

// Module returns the Module this Facade edits, for callers that need to
// encode it or inspect sections no named operation exposes.
func (f *Facade) Module() *wasm.Module { return f.m }

// InsertFunctionImport adds a function import and returns its combined
// function-ordinal index -- the number callers must use in a Call
// instruction to reach it. This is deliberately not the raw import_sec
// position: a module whose imports interleave function, table, memory,
// and global kinds has an import_sec index that disagrees with the
// function index space.
func (f *Facade) InsertFunctionImport(module, name string, typeIndex wasm.Index) (wasm.Index, error) {
	imp := &wasm.Import{Module: module, Name: name, Kind: wasm.ImportKindFunc, DescFunc: typeIndex}
	if err := rewrite.NewImportRewriter(f.m).Insert(rewrite.ImportDescriptor{}, imp); err != nil {
		return 0, fmt.Errorf("insert function import: %w", err)
	}
	return f.m.ImportedFunctionCount() - 1, nil
}

// InsertGlobalImport adds a global import and returns its combined global
// index.
func (f *Facade) InsertGlobalImport(module, name string, valType wasm.ValueType, mutable bool) (wasm.Index, error) {
	imp := &wasm.Import{
		Module: module, Name: name, Kind: wasm.ImportKindGlobal,
		DescGlobal: &wasm.GlobalType{ValType: valType, Mutable: mutable},
	}
	if err := rewrite.NewImportRewriter(f.m).Insert(rewrite.ImportDescriptor{}, imp); err != nil {
		return 0, fmt.Errorf("insert global import: %w", err)
	}
	return f.m.ImportedGlobalCount() - 1, nil
}

// InsertExport appends a new export.
func (f *Facade) InsertExport(name string, kind wasm.ExportKind, index wasm.Index) error {
	err := rewrite.NewExportRewriter(f.m).Insert(rewrite.ExportDescriptor{}, &wasm.Export{Name: name, Kind: kind, Index: index})
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

// InsertGlobal appends a new internal global and returns its combined
// global index.
func (f *Facade) InsertGlobal(valType wasm.ValueType, mutable bool, init wasm.ConstantExpression) (wasm.Index, error) {
	g := &wasm.Global{Type: wasm.GlobalType{ValType: valType, Mutable: mutable}, Init: init}
	if err := rewrite.NewGlobalRewriter(f.m).Insert(rewrite.GlobalDescriptor{}, g); err != nil {
		return 0, fmt.Errorf("insert global: %w", err)
	}
	return f.m.GlobalCount() - 1, nil
}

// InsertFunction appends a new internal function and returns its combined
// function index.
func (f *Facade) InsertFunction(typeIndex wasm.Index, localTypes []wasm.ValueType, body []wasm.Instruction) (wasm.Index, error) {
	combined, err := rewrite.NewFunctionRewriter(f.m).Insert(rewrite.FunctionDescriptor{}, rewrite.NewFunction{
		TypeIndex:  typeIndex,
		LocalTypes: localTypes,
		Body:       body,
	})
	if err != nil {
		return 0, fmt.Errorf("insert function: %w", err)
	}
	return combined, nil
}

// AppendIndirectTableEntry appends funcIdx to the indirect-call table
// (element segment 0's init vector), widening the table's declared
// maximum first if the new slot would exceed it.
func (f *Facade) AppendIndirectTableEntry(funcIdx wasm.Index) (slot int, err error) {
	if len(f.m.ElementSection) == 0 {
		return 0, fmt.Errorf("append indirect table entry: %w", wasm.ErrNoMatch)
	}
	seg := f.m.ElementSection[0]
	base, _ := constI32Offset(seg.OffsetExpression)
	needed := base + uint32(len(seg.Init)) + 1
	indexfix.WidenTableMax(f.m, needed)
	return rewrite.NewTableEntryRewriter(f.m).Append(0, funcIdx)
}

// InstallHook rewrites every Call target (in every function body except
// hook's own) to call hook instead, leaving target's own code in place.
// target is typically an existing imported or internal function; hook is
// a function already present in the module (commonly one just added via
// InsertFunction) whose body wraps the original behavior, so its own
// calls to target are kept.
func (f *Facade) InstallHook(target, hook wasm.Index) {
	imported := f.m.ImportedFunctionCount()
	for i, c := range f.m.CodeSection {
		if hook >= imported && wasm.Index(i) == hook-imported {
			continue
		}
		indexfix.WalkInstructions(c.Body, func(in *wasm.Instruction) {
			if in.Opcode != wasm.OpcodeCall {
				return
			}
			if idx, ok := in.Args.(wasm.IndexArgs); ok && idx.Index == target {
				in.Args = wasm.IndexArgs{Index: hook}
			}
		})
	}
}

// ReplaceCall is InstallHook under the name BREWasm's higher-level
// wrapper uses: every Call from outside to's own body becomes Call to.
func (f *Facade) ReplaceCall(from, to wasm.Index) {
	f.InstallHook(from, to)
}

// PatchLinearMemory writes data at the given byte offset of memory 0,
// merging into an existing active data segment that overlaps the patch
// range, or appending a new segment when none does. Overlap is an
// explicit disjointness test -- not the `offset+len < data.offset` check
// that incorrectly reports "no overlap" for a patch landing entirely
// inside an existing segment.
func (f *Facade) PatchLinearMemory(offset uint64, data []byte) error {
	patchStart := offset
	patchEnd := offset + uint64(len(data))

	for _, seg := range f.m.DataSection {
		if seg.Mode == wasm.DataSegmentModePassive {
			continue
		}
		segStart, ok := constI32Offset(seg.OffsetExpression)
		if !ok {
			continue
		}
		segStart64 := uint64(segStart)
		segEnd64 := segStart64 + uint64(len(seg.Init))

		disjoint := patchEnd <= segStart64 || segEnd64 <= patchStart
		if disjoint {
			continue
		}

		newStart := min64(segStart64, patchStart)
		newEnd := max64(segEnd64, patchEnd)
		merged := make([]byte, newEnd-newStart)
		copy(merged[segStart64-newStart:], seg.Init)
		copy(merged[patchStart-newStart:], data)

		seg.Init = merged
		seg.OffsetExpression = encodeI32ConstExpr(int32(newStart))
		indexfix.WidenMemoryMax(f.m, newEnd)
		return nil
	}

	f.m.DataSection = append(f.m.DataSection, &wasm.DataSegment{
		Mode:             wasm.DataSegmentModeActive,
		OffsetExpression: encodeI32ConstExpr(int32(offset)),
		Init:             append([]byte(nil), data...),
	})
	if f.m.DataCountSection != nil {
		n := uint32(len(f.m.DataSection))
		f.m.DataCountSection = &n
	}
	indexfix.WidenMemoryMax(f.m, patchEnd)
	return nil
}

// UpsertCustomSection inserts a new custom section, or overwrites the
// payload of an existing one with a matching name.
func (f *Facade) UpsertCustomSection(name string, data []byte) {
	for i, cs := range f.m.CustomSections {
		if cs.Name == name {
			f.m.CustomSections[i].Data = data
			return
		}
	}
	f.m.CustomSections = append(f.m.CustomSections, wasm.CustomSection{Name: name, Data: data})
}

// constI32Offset extracts the constant value of an i32.const offset
// expression, the only form the toolchains producing module-editing
// targets are expected to emit for table/data segment offsets.
func constI32Offset(ce wasm.ConstantExpression) (uint32, bool) {
	if ce.Opcode != wasm.OpcodeI32Const {
		return 0, false
	}
	v, _, err := leb128.DecodeInt32(bytes.NewReader(ce.Data))
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func encodeI32ConstExpr(v int32) wasm.ConstantExpression {
	return wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: leb128.EncodeInt32(v)}
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

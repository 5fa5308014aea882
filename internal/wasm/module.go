package wasm

// SectionID identifies a top-level module section on the wire.
type SectionID = byte

const (
	SectionIDCustom    SectionID = 0
	SectionIDType      SectionID = 1
	SectionIDImport    SectionID = 2
	SectionIDFunction  SectionID = 3
	SectionIDTable     SectionID = 4
	SectionIDMemory    SectionID = 5
	SectionIDGlobal    SectionID = 6
	SectionIDExport    SectionID = 7
	SectionIDStart     SectionID = 8
	SectionIDElement   SectionID = 9
	SectionIDCode      SectionID = 10
	SectionIDData      SectionID = 11
	SectionIDDataCount SectionID = 12
)

// FunctionType is a (params, results) pair, the element type of
// TypeSection.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Limits is the (min, max) pair shared by table and memory types. Max is
// nil when the entity has no declared maximum.
type Limits struct {
	Min uint32
	Max *uint32
}

// TableType describes a table: its element type (always funcref in this
// subset) and its size limits.
type TableType struct {
	ElemType byte
	Limits   Limits
}

// MemoryType describes a linear memory's size limits, in 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType describes a global's value type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Global is one entry of GlobalSection: a type plus its initializer
// expression.
type Global struct {
	Type GlobalType
	Init ConstantExpression
}

// Import is one entry of ImportSection. Exactly one of DescFunc (by value,
// zero is valid), DescTable, DescMemory, DescGlobal is meaningful,
// selected by Kind.
type Import struct {
	Module, Name string
	Kind         ImportKind
	DescFunc     Index
	DescTable    *TableType
	DescMemory   *MemoryType
	DescGlobal   *GlobalType
}

// Export is one entry of ExportSection.
type Export struct {
	Name  string
	Kind  ExportKind
	Index Index
}

// ElementSegment is one entry of ElementSection: an active segment (per
// spec.md section 3, this subset does not carry passive/declarative
// element segments) that initializes TableIndex at OffsetExpression with
// the function indices in Init.
type ElementSegment struct {
	TableIndex       Index
	OffsetExpression ConstantExpression
	Init             []Index
}

// Code is one entry of CodeSection: a function body, expanded-form locals
// (one ValueType per local; the encoder groups consecutive equal types
// into the wire format's run-length vector) plus the decoded instruction
// tree.
type Code struct {
	LocalTypes []ValueType
	Body       []Instruction
}

// DataSegmentMode distinguishes the three data segment kinds defined by
// the bulk-memory proposal.
type DataSegmentMode int

const (
	DataSegmentModeActive           DataSegmentMode = iota // kind 0: implicit memory index 0
	DataSegmentModePassive                                 // kind 1
	DataSegmentModeActiveWithMemory                         // kind 2: explicit memory index
)

// DataSegment is one entry of DataSection.
type DataSegment struct {
	Mode              DataSegmentMode
	MemoryIndex       Index // only meaningful when Mode == DataSegmentModeActiveWithMemory
	OffsetExpression  ConstantExpression
	Init              []byte
}

// NameMap is an ordered (index, name) association, the shape of the
// function/table/global/data name subsections and of one function's entry
// in the local name subsection.
type NameMap []NameAssoc

// NameAssoc is one entry of a NameMap.
type NameAssoc struct {
	Index Index
	Name  string
}

// IndirectNameMap associates an outer index (a function index, for local
// and label names) with an inner NameMap.
type IndirectNameMap []IndirectNameAssoc

// IndirectNameAssoc is one entry of an IndirectNameMap.
type IndirectNameAssoc struct {
	Index   Index
	NameMap NameMap
}

// NameSection is the structured payload of the custom "name" section, per
// spec.md section 3 and section 6. Subsections this module does not need
// to inspect (local, labels, type, memory, elem: subids 2, 3, 4, 6, 8) are
// retained as opaque bytes so they round-trip unchanged.
type NameSection struct {
	ModuleName    string
	FunctionNames NameMap
	TableNames    NameMap
	GlobalNames   NameMap
	DataNames     NameMap

	LocalNamesData  []byte
	LabelNamesData  []byte
	TypeNamesData   []byte
	MemoryNamesData []byte
	ElemNamesData   []byte
}

// CustomSection is a non-"name" custom section: a name plus its raw
// payload, retained verbatim.
type CustomSection struct {
	Name string
	Data []byte
}

// Range is a half-open byte range [Start, End) within the source module,
// recorded by the decoder for C4's section bookkeeping. Ranges are
// advisory: per spec.md section 9, the encoder performs a whole-file
// rewrite and never patches byte ranges in place; EncodeModule neither
// reads nor computes them.
type Range struct {
	Start, End uint64
}

// Module is the root aggregate: every section of a decoded Wasm binary,
// plus the per-section byte ranges recorded during decode.
type Module struct {
	TypeSection       []*FunctionType
	ImportSection     []*Import
	FunctionSection   []Index // func_sec: per internal function, an index into TypeSection
	TableSection      []*TableType
	MemorySection     []*MemoryType
	GlobalSection     []*Global
	ExportSection     []*Export
	StartSection      *Index
	ElementSection    []*ElementSegment
	CodeSection       []*Code
	DataSection       []*DataSegment
	DataCountSection  *uint32

	NameSection    *NameSection
	CustomSections []CustomSection

	SectionRanges map[SectionID]Range
}

// ImportedFunctionCount returns the number of ImportSection entries of
// kind func. Combined function-index numbering (used by Call, exports,
// elem.init, and start) enumerates these first, then CodeSection.
func (m *Module) ImportedFunctionCount() uint32 {
	var n uint32
	for _, i := range m.ImportSection {
		if i.Kind == ImportKindFunc {
			n++
		}
	}
	return n
}

// ImportedGlobalCount returns the number of ImportSection entries of kind
// global. Combined global-index numbering enumerates these first, then
// GlobalSection.
func (m *Module) ImportedGlobalCount() uint32 {
	var n uint32
	for _, i := range m.ImportSection {
		if i.Kind == ImportKindGlobal {
			n++
		}
	}
	return n
}

// ImportedTableCount returns the number of ImportSection entries of kind
// table.
func (m *Module) ImportedTableCount() uint32 {
	var n uint32
	for _, i := range m.ImportSection {
		if i.Kind == ImportKindTable {
			n++
		}
	}
	return n
}

// ImportedMemoryCount returns the number of ImportSection entries of kind
// memory.
func (m *Module) ImportedMemoryCount() uint32 {
	var n uint32
	for _, i := range m.ImportSection {
		if i.Kind == ImportKindMemory {
			n++
		}
	}
	return n
}

// FunctionCount is the combined function-index space size: imported
// functions plus CodeSection entries.
func (m *Module) FunctionCount() uint32 {
	return m.ImportedFunctionCount() + uint32(len(m.CodeSection))
}

// GlobalCount is the combined global-index space size.
func (m *Module) GlobalCount() uint32 {
	return m.ImportedGlobalCount() + uint32(len(m.GlobalSection))
}

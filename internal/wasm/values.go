package wasm

import "fmt"

// ValueType is a WebAssembly value type: a numeric type, a vector type, or
// a reference type. See https://webassembly.github.io/spec/core/binary/types.html#value-types
type ValueType = byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeV128      ValueType = 0x7b
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

// ValueTypeName returns the WebAssembly text format name of t, or "unknown"
// if t is not a defined value type.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	}
	return "unknown"
}

// RefType is the subset of ValueType that is a reference type: funcref or
// externref.
type RefType = byte

const (
	RefTypeFuncref   RefType = ValueTypeFuncref
	RefTypeExternref RefType = ValueTypeExternref
)

// Index is a numeric index into one of a module's index spaces (function,
// table, memory, global, type, local, label, data, or element).
type Index = uint32

// ExternType classifies an import or export by the kind byte it carries
// on the wire.
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

// ImportKind and ExportKind are ExternType under different names, matching
// the field names used on Import and Export respectively.
type ImportKind = ExternType
type ExportKind = ExternType

const (
	ImportKindFunc   = ExternTypeFunc
	ImportKindTable  = ExternTypeTable
	ImportKindMemory = ExternTypeMemory
	ImportKindGlobal = ExternTypeGlobal

	ExportKindFunc   = ExternTypeFunc
	ExportKindTable  = ExternTypeTable
	ExportKindMemory = ExternTypeMemory
	ExportKindGlobal = ExternTypeGlobal
)

// ElemTypeFuncref is the only table element type the MVP and this subset
// of the binary format support.
const ElemTypeFuncref = 0x70

// BlockType tags. Per spec.md section 3, block_type is either a negative
// tag identifying a single-value signature or empty, or a non-negative
// index into TypeSection.
const (
	BlockTypeI32   int32 = -1
	BlockTypeI64   int32 = -2
	BlockTypeF32   int32 = -3
	BlockTypeF64   int32 = -4
	BlockTypeV128  int32 = -5
	BlockTypeEmpty int32 = -64
)

// MemoryMaxPages is the maximum number of 64KiB pages a linear memory may
// declare, per the WebAssembly Core specification (4GiB address space).
const MemoryMaxPages = 65536

// MemoryPageSize is the number of bytes in one linear memory page.
const MemoryPageSize = 65536

// PagesToUnitOfBytes formats pages worth of bytes in the largest unit the
// binary package uses for size-limit error messages.
func PagesToUnitOfBytes(pages uint32) string {
	k := uint64(pages) * MemoryPageSize / 1024
	if k < 1024 {
		return fmt.Sprintf("%d Ki", k)
	}
	if k < 1024*1024 {
		return fmt.Sprintf("%d Mi", k/1024)
	}
	return fmt.Sprintf("%d Gi", k/1024/1024)
}

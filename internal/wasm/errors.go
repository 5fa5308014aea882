package wasm

import "errors"

// Decode/encode errors named in spec.md section 7. These are sentinel
// values; call sites wrap them with fmt.Errorf("...: %w", err) to add
// position/field context.
var (
	ErrUnexpectedEnd            = errors.New("unexpected end of input")
	ErrBadMagic                 = errors.New("invalid magic number")
	ErrBadVersion                = errors.New("invalid version header")
	ErrMalformedSectionID       = errors.New("malformed section id")
	ErrSectionOutOfOrder        = errors.New("section out of order")
	ErrSectionSizeMismatch      = errors.New("section size mismatch")
	ErrMalformedValType         = errors.New("malformed value type")
	ErrMalformedBlockType       = errors.New("malformed block type")
	ErrMalformedMutability      = errors.New("malformed mutability")
	ErrBadFuncTypeTag           = errors.New("invalid function type tag")
	ErrBadElemType              = errors.New("invalid element type")
	ErrUndefinedOpcode          = errors.New("undefined opcode")
	ErrBadZeroFlag              = errors.New("invalid zero flag")
	ErrInvalidExprEnd           = errors.New("constant expression has been not terminated")
	ErrMalformedUtf8            = errors.New("malformed UTF-8 encoding")
	ErrInconsistentFuncCode     = errors.New("function and code section have inconsistent lengths")
	ErrFunctionBodySizeMismatch = errors.New("function body size does not match its declared size")
	ErrTooManyLocals            = errors.New("too many locals")
	ErrJunkAfterLastSection     = errors.New("junk after last section")
	ErrAmbiguousSelector        = errors.New("descriptor matches more than one entry")
	ErrNoMatch                  = errors.New("descriptor matches no entry")
	ErrImportNotEditable        = errors.New("imported function is not editable")
	ErrIndexInUse               = errors.New("index is still referenced and cannot be deleted")
)

// Package wasmdebug formats module entities (functions, signatures) for
// diagnostic error messages, independent of where in the pipeline the
// error originates.
package wasmdebug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasmrw/wasmrw/internal/wasm"
)

// FuncName formats a function reference as "module.function", falling
// back to "$idx" when funcName is empty.
func FuncName(moduleName, funcName string, funcIdx wasm.Index) string {
	if funcName == "" {
		funcName = "$" + strconv.FormatUint(uint64(funcIdx), 10)
	}
	return moduleName + "." + funcName
}

// Signature appends a function's parameter and result types to name,
// e.g. Signature("x.y", []wasm.ValueType{wasm.ValueTypeI32}, nil) returns
// "x.y(i32)".
func Signature(name string, paramTypes, resultTypes []wasm.ValueType) string {
	base := fmt.Sprintf("%s(%s)", name, joinValueTypes(paramTypes))
	switch len(resultTypes) {
	case 0:
		return base
	case 1:
		return base + " " + wasm.ValueTypeName(resultTypes[0])
	default:
		return base + " (" + joinValueTypes(resultTypes) + ")"
	}
}

func joinValueTypes(ts []wasm.ValueType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = wasm.ValueTypeName(t)
	}
	return strings.Join(names, ",")
}

package wasmdebug

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestFuncName(t *testing.T) {
	tests := []struct {
		name, moduleName, funcName string
		funcIdx                    wasm.Index
		expected                   string
	}{
		{name: "empty", expected: ".$0"},
		{name: "empty module", funcName: "y", expected: ".y"},
		{name: "empty function", moduleName: "x", funcIdx: 255, expected: "x.$255"},
		{name: "looks like index in function", moduleName: "x", funcName: "[255]", expected: "x.[255]"},
		{name: "no special characters", moduleName: "x", funcName: "y", expected: "x.y"},
		{name: "dots in module", moduleName: "w.x", funcName: "y", expected: "w.x.y"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, FuncName(tc.moduleName, tc.funcName, tc.funcIdx))
		})
	}
}

func TestSignature(t *testing.T) {
	i32, i64, f32, f64 := wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64
	tests := []struct {
		name                    string
		paramTypes, resultTypes []wasm.ValueType
		expected                string
	}{
		{name: "v_v", expected: "x.y()"},
		{name: "i32_v", paramTypes: []wasm.ValueType{i32}, expected: "x.y(i32)"},
		{name: "i32f64_v", paramTypes: []wasm.ValueType{i32, f64}, expected: "x.y(i32,f64)"},
		{name: "v_i64", resultTypes: []wasm.ValueType{i64}, expected: "x.y() i64"},
		{name: "v_i64f32", resultTypes: []wasm.ValueType{i64, f32}, expected: "x.y() (i64,f32)"},
		{name: "i32_i64", paramTypes: []wasm.ValueType{i32}, resultTypes: []wasm.ValueType{i64}, expected: "x.y(i32) i64"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Signature("x.y", tc.paramTypes, tc.resultTypes))
		})
	}
}

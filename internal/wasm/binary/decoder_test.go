package binary

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestDecodeModule_magicAndVersion(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		err  error
	}{
		{name: "too short", in: []byte{0x00, 0x61, 0x73}, err: wasm.ErrUnexpectedEnd},
		{name: "bad magic", in: []byte{0x00, 0x61, 0x73, 0x6e, 0x01, 0x00, 0x00, 0x00}, err: wasm.ErrBadMagic},
		{name: "bad version", in: []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, err: wasm.ErrBadVersion},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeModule(tc.in, api.CoreFeaturesV2)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodeModule_empty(t *testing.T) {
	m, err := DecodeModule(append(append([]byte{}, Magic...), version...), api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Empty(t, m.TypeSection)
	require.Empty(t, m.CodeSection)
}

func TestDecodeModule_roundTrip_identity(t *testing.T) {
	// (module) with one exported no-op function, the canonical "does
	// nothing" fixture.
	mod := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{{}},
		FunctionSection: []wasm.Index{0},
		ExportSection:   []*wasm.Export{{Name: "f", Kind: wasm.ExportKindFunc, Index: 0}},
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{}},
		},
	}
	bin := EncodeModule(mod)

	decoded, err := DecodeModule(bin, api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Len(t, decoded.TypeSection, 1)
	require.Len(t, decoded.FunctionSection, 1)
	require.Len(t, decoded.ExportSection, 1)
	require.Equal(t, "f", decoded.ExportSection[0].Name)
	require.Len(t, decoded.CodeSection, 1)

	bin2 := EncodeModule(decoded)
	require.Equal(t, bin, bin2)
}

func TestDecodeModule_sectionOutOfOrder(t *testing.T) {
	bin := append(append([]byte{}, Magic...), version...)
	// export section (7) before type section (1): out of order.
	bin = append(bin, byte(wasm.SectionIDExport), 0x01, 0x00)
	bin = append(bin, byte(wasm.SectionIDType), 0x01, 0x00)
	_, err := DecodeModule(bin, api.CoreFeaturesV2)
	require.ErrorIs(t, err, wasm.ErrSectionOutOfOrder)
}

func TestDecodeModule_inconsistentFuncCode(t *testing.T) {
	mod := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{{}},
		FunctionSection: []wasm.Index{0, 0},
		CodeSection:     []*wasm.Code{{Body: []wasm.Instruction{}}},
	}
	bin := EncodeModule(mod)
	_, err := DecodeModule(bin, api.CoreFeaturesV2)
	require.ErrorIs(t, err, wasm.ErrInconsistentFuncCode)
}

package binary

import (
	"bytes"
	"fmt"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

const (
	subsectionIDModuleName   = 0
	subsectionIDFunctionNames = 1
	subsectionIDLocalNames   = 2
	subsectionIDLabelNames   = 3
	subsectionIDTypeNames    = 4
	subsectionIDTableNames   = 5
	subsectionIDMemoryNames  = 6
	subsectionIDGlobalNames  = 7
	subsectionIDElemNames    = 8
	subsectionIDDataNames    = 9
)

// decodeNameSection decodes the payload of the custom "name" section.
// Subsections this module does not interpret structurally (local, label,
// type, memory, elem) are preserved as opaque bytes so they round-trip
// byte-for-byte even when this module has no typed view onto them.
func decodeNameSection(data []byte) (*wasm.NameSection, error) {
	r := bytes.NewReader(data)
	ns := &wasm.NameSection{}
	for i := 0; r.Len() > 0; i++ {
		id, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read a subsection id: %w", err)
		}
		size, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read the size of subsection[%d]: %w", i, err)
		}
		sub := make([]byte, size)
		if _, err := r.Read(sub); err != nil {
			return nil, fmt.Errorf("failed to read subsection[%d]: %w", i, err)
		}
		sr := bytes.NewReader(sub)

		switch id {
		case subsectionIDModuleName:
			name, _, err := decodeUTF8(sr, "module name")
			if err != nil {
				return nil, err
			}
			ns.ModuleName = name
		case subsectionIDFunctionNames:
			nm, err := decodeNameMap(sr)
			if err != nil {
				return nil, fmt.Errorf("failed to read function name subsection: %w", err)
			}
			ns.FunctionNames = nm
		case subsectionIDTableNames:
			nm, err := decodeNameMap(sr)
			if err != nil {
				return nil, fmt.Errorf("failed to read table name subsection: %w", err)
			}
			ns.TableNames = nm
		case subsectionIDGlobalNames:
			nm, err := decodeNameMap(sr)
			if err != nil {
				return nil, fmt.Errorf("failed to read global name subsection: %w", err)
			}
			ns.GlobalNames = nm
		case subsectionIDDataNames:
			nm, err := decodeNameMap(sr)
			if err != nil {
				return nil, fmt.Errorf("failed to read data name subsection: %w", err)
			}
			ns.DataNames = nm
		case subsectionIDLocalNames:
			ns.LocalNamesData = sub
		case subsectionIDLabelNames:
			ns.LabelNamesData = sub
		case subsectionIDTypeNames:
			ns.TypeNamesData = sub
		case subsectionIDMemoryNames:
			ns.MemoryNamesData = sub
		case subsectionIDElemNames:
			ns.ElemNamesData = sub
		}
	}
	return ns, nil
}

func decodeNameMap(r *bytes.Reader) (wasm.NameMap, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read the count: %w", err)
	}
	ret := make(wasm.NameMap, count)
	for i := range ret {
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read index[%d]: %w", i, err)
		}
		name, _, err := decodeUTF8(r, fmt.Sprintf("name[%d]", i))
		if err != nil {
			return nil, err
		}
		ret[i] = wasm.NameAssoc{Index: idx, Name: name}
	}
	return ret, nil
}

func encodeNameMap(nm wasm.NameMap) []byte {
	out := leb128.EncodeUint32(uint32(len(nm)))
	for _, a := range nm {
		out = append(out, leb128.EncodeUint32(a.Index)...)
		out = append(out, encodeName(a.Name)...)
	}
	return out
}

func encodeNameSubsection(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, leb128.EncodeUint32(uint32(len(payload)))...)
	return append(out, payload...)
}

// encodeNameSection re-synthesizes the custom "name" section payload from
// a wasm.NameSection, emitting only the subsections that carry data, in
// ascending subsection-id order as required by the Wasm spec.
func encodeNameSection(ns *wasm.NameSection) []byte {
	var out []byte
	if ns.ModuleName != "" {
		out = append(out, encodeNameSubsection(subsectionIDModuleName, encodeName(ns.ModuleName))...)
	}
	if len(ns.FunctionNames) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDFunctionNames, encodeNameMap(ns.FunctionNames))...)
	}
	if len(ns.LocalNamesData) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDLocalNames, ns.LocalNamesData)...)
	}
	if len(ns.LabelNamesData) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDLabelNames, ns.LabelNamesData)...)
	}
	if len(ns.TypeNamesData) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDTypeNames, ns.TypeNamesData)...)
	}
	if len(ns.TableNames) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDTableNames, encodeNameMap(ns.TableNames))...)
	}
	if len(ns.MemoryNamesData) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDMemoryNames, ns.MemoryNamesData)...)
	}
	if len(ns.GlobalNames) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDGlobalNames, encodeNameMap(ns.GlobalNames))...)
	}
	if len(ns.ElemNamesData) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDElemNames, ns.ElemNamesData)...)
	}
	if len(ns.DataNames) > 0 {
		out = append(out, encodeNameSubsection(subsectionIDDataNames, encodeNameMap(ns.DataNames))...)
	}
	return out
}

package binary

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func decodeValueType(r io.ByteReader) (wasm.ValueType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64,
		wasm.ValueTypeV128, wasm.ValueTypeFuncref, wasm.ValueTypeExternref:
		return b, nil
	}
	return 0, fmt.Errorf("%w: invalid value type: %d", wasm.ErrMalformedValType, b)
}

func decodeValueTypes(r io.ByteReader) ([]wasm.ValueType, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("could not read count: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	ret := make([]wasm.ValueType, count)
	for i := range ret {
		ret[i], err = decodeValueType(r)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func encodeValueTypes(ts []wasm.ValueType) []byte {
	out := append(leb128.EncodeUint32(uint32(len(ts))), ts...)
	return out
}

// decodeBlockType reads the signed LEB128 block type tag of spec.md
// section 3: a negative tag for empty or a single value type, or a
// non-negative wasm.TypeSection index.
func decodeBlockType(r io.ByteReader) (int32, error) {
	v, _, err := leb128.DecodeInt32(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", wasm.ErrMalformedBlockType, err)
	}
	switch v {
	case wasm.BlockTypeEmpty, wasm.BlockTypeI32, wasm.BlockTypeI64, wasm.BlockTypeF32, wasm.BlockTypeF64, wasm.BlockTypeV128:
		return v, nil
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %d", wasm.ErrMalformedBlockType, v)
	}
	return v, nil
}

func encodeBlockType(bt int32) []byte {
	return leb128.EncodeInt32(bt)
}

// decodeUTF8 reads a length-prefixed UTF-8 string from r, validating it
// per spec.md section 4.3 ("Names are UTF-8 validated on read").
// contextFormat names the field being read, for the error message.
func decodeUTF8(r *bytes.Reader, contextFormat string) (string, uint32, error) {
	size, n, err := leb128.DecodeUint32(r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read %s size: %w", contextFormat, err)
	}
	if size == 0 {
		return "", n, nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", 0, fmt.Errorf("failed to read %s: %w", contextFormat, err)
	}
	if !utf8.Valid(buf) {
		return "", 0, fmt.Errorf("%w: %s", wasm.ErrMalformedUtf8, contextFormat)
	}
	return string(buf), n + size, nil
}

func decodeLimits(r io.ByteReader) (wasm.Limits, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return wasm.Limits{}, fmt.Errorf("read limits flag: %w", err)
	}
	if flag != 0 && flag != 1 {
		return wasm.Limits{}, fmt.Errorf("invalid limits flag: 0x%x", flag)
	}
	min, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.Limits{}, fmt.Errorf("read limits min: %w", err)
	}
	lim := wasm.Limits{Min: min}
	if flag == 1 {
		max, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Limits{}, fmt.Errorf("read limits max: %w", err)
		}
		lim.Max = &max
	}
	return lim, nil
}

func encodeLimits(l wasm.Limits) []byte {
	if l.Max == nil {
		return append([]byte{0}, leb128.EncodeUint32(l.Min)...)
	}
	out := append([]byte{1}, leb128.EncodeUint32(l.Min)...)
	return append(out, leb128.EncodeUint32(*l.Max)...)
}

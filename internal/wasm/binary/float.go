package binary

import (
	"encoding/binary"
	"math"
)

func decodeFloat32(b [4]byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:]))
}

func encodeFloat32(v float32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b
}

func decodeFloat64(b [8]byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
}

func encodeFloat64(v float64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return b
}

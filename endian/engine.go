// Package endian provides byte order utilities shared by the point record codecs.
//
// Both PCD binary payloads and LAS point records are little-endian on disk. The
// EndianEngine interface combines binary.ByteOrder with binary.AppendByteOrder so
// codecs can either patch fixed offsets inside a record or append to a growing
// buffer through one value. Float helpers reinterpret IEEE-754 bit patterns
// through the same engine.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = endian.AppendFloat32(engine, buf, p.X)
//	x := endian.Float32(engine, rec[0:4])
//
// All functions are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian satisfies it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by PCD and LAS.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Float32 decodes an IEEE-754 single from the first 4 bytes of b.
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// PutFloat32 encodes v into the first 4 bytes of b.
func PutFloat32(engine EndianEngine, b []byte, v float32) {
	engine.PutUint32(b, math.Float32bits(v))
}

// AppendFloat32 appends the 4-byte encoding of v to b.
func AppendFloat32(engine EndianEngine, b []byte, v float32) []byte {
	return engine.AppendUint32(b, math.Float32bits(v))
}

// Float64 decodes an IEEE-754 double from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// PutFloat64 encodes v into the first 8 bytes of b.
func PutFloat64(engine EndianEngine, b []byte, v float64) {
	engine.PutUint64(b, math.Float64bits(v))
}

// AppendFloat64 appends the 8-byte encoding of v to b.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}

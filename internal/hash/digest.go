package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// PointDigest accumulates an xxHash64 over point records.
//
// Each point contributes 16 little-endian bytes: x, y, z as IEEE-754 singles
// followed by the packed 0x00RRGGBB color. Two clouds have the same digest
// when they hold bit-identical points in the same order, whatever container
// they were read from.
type PointDigest struct {
	d   *xxhash.Digest
	buf [16]byte
}

// NewPointDigest returns an empty digest.
func NewPointDigest() *PointDigest {
	return &PointDigest{d: xxhash.New()}
}

// Add feeds one point into the digest.
func (p *PointDigest) Add(x, y, z float32, rgb uint32) {
	binary.LittleEndian.PutUint32(p.buf[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(p.buf[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(p.buf[8:12], math.Float32bits(z))
	binary.LittleEndian.PutUint32(p.buf[12:16], rgb)
	_, _ = p.d.Write(p.buf[:])
}

// Sum64 returns the digest of all points added so far.
func (p *PointDigest) Sum64() uint64 {
	return p.d.Sum64()
}

// Bytes computes the xxHash64 of raw data.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

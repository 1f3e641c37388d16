// Package cloud defines the in-memory point cloud shared by the PCD and LAS codecs.
//
// A Cloud is an ordered sequence of XYZ+RGB points with the organisation
// attributes carried by both containers. Decoders build it with PushChecked,
// which enforces the density rule: a point with a non-finite coordinate is
// dropped and the cloud is marked as not dense for the rest of its life.
package cloud

import (
	"math"

	"github.com/arloliu/pointio/internal/hash"
	"github.com/golang/geo/r3"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// White is the color assigned to points read without color data.
var White = RGB{R: 255, G: 255, B: 255}

// Packed returns the color as 0x00RRGGBB.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// UnpackRGB splits a packed 0x00RRGGBB value. The top byte is ignored.
func UnpackRGB(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v & 0xff),
	}
}

// Point is a single-precision position with a color.
type Point struct {
	X, Y, Z float32
	Color   RGB
}

// NewPoint returns a white point at (x, y, z).
func NewPoint(x, y, z float32) Point {
	return Point{X: x, Y: y, Z: z, Color: White}
}

// IsFinite reports whether all three coordinates are finite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Cloud is an ordered point sequence with organisation metadata.
//
// Width*Height equals Len for clouds built by this module's decoders, except
// when non-finite points were dropped, in which case Width and Height keep the
// header values and IsDense is false.
type Cloud struct {
	Points  []Point
	Width   uint32
	Height  uint32
	IsDense bool
}

// New returns an empty, dense, unorganized cloud with room for capacity points.
func New(capacity int) *Cloud {
	return &Cloud{
		Points:  make([]Point, 0, capacity),
		Height:  1,
		IsDense: true,
	}
}

// FromPoints returns an unorganized cloud over pts. It does not copy pts and
// does not check finiteness.
func FromPoints(pts []Point) *Cloud {
	return &Cloud{
		Points:  pts,
		Width:   uint32(len(pts)),
		Height:  1,
		IsDense: true,
	}
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	return len(c.Points)
}

// Push appends p without checks and widens an unorganized cloud.
func (c *Cloud) Push(p Point) {
	c.Points = append(c.Points, p)
	if c.Height <= 1 {
		c.Width = uint32(len(c.Points))
		c.Height = 1
	}
}

// PushChecked appends p if its coordinates are finite. Otherwise p is dropped,
// IsDense becomes false and PushChecked returns false.
//
// Unlike Push it leaves Width and Height alone; decoders set them from the header.
func (c *Cloud) PushChecked(p Point) bool {
	if !p.IsFinite() {
		c.IsDense = false
		return false
	}
	c.Points = append(c.Points, p)

	return true
}

// Organized reports whether Width*Height matches the point count.
func (c *Cloud) Organized() bool {
	return uint64(c.Width)*uint64(c.Height) == uint64(len(c.Points))
}

// BoundingBox returns the per-axis minimum and maximum. Both are zero for an empty cloud.
func (c *Cloud) BoundingBox() (r3.Vector, r3.Vector) {
	if len(c.Points) == 0 {
		return r3.Vector{}, r3.Vector{}
	}

	first := c.Points[0]
	lo := r3.Vector{X: float64(first.X), Y: float64(first.Y), Z: float64(first.Z)}
	hi := lo
	for _, p := range c.Points[1:] {
		lo.X = math.Min(lo.X, float64(p.X))
		lo.Y = math.Min(lo.Y, float64(p.Y))
		lo.Z = math.Min(lo.Z, float64(p.Z))
		hi.X = math.Max(hi.X, float64(p.X))
		hi.Y = math.Max(hi.Y, float64(p.Y))
		hi.Z = math.Max(hi.Z, float64(p.Z))
	}

	return lo, hi
}

// Digest returns the xxHash64 of the points' coordinate bits and packed colors.
//
// It is independent of container, encoding, and organisation metadata, so a
// lossless conversion keeps it unchanged.
func (c *Cloud) Digest() uint64 {
	d := hash.NewPointDigest()
	for _, p := range c.Points {
		d.Add(p.X, p.Y, p.Z, p.Color.Packed())
	}

	return d.Sum64()
}

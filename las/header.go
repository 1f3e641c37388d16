package las

import (
	"bytes"
	"fmt"

	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/golang/geo/r3"
)

// Signature is the file signature at offset 0.
const Signature = "LASF"

// Header sizes of the supported versions.
const (
	HeaderSize12 = 227
	HeaderSize13 = 235
	HeaderSize14 = 375
)

const identifierLength = 32

// Header is the public header block of a LAS 1.2, 1.3 or 1.4 file.
type Header struct {
	FileSourceID       uint16
	GlobalEncoding     uint16
	ProjectID          [16]byte
	VersionMajor       uint8
	VersionMinor       uint8
	SystemIdentifier   string
	GeneratingSoftware string
	CreationDayOfYear  uint16
	CreationYear       uint16
	HeaderSize         uint16
	OffsetToPointData  uint32
	NumberOfVLRs       uint32
	PointFormat        format.PointFormat
	PointRecordLength  uint16

	LegacyPointCount     uint32
	LegacyPointsByReturn [5]uint32

	Scale  r3.Vector
	Offset r3.Vector
	Min    r3.Vector
	Max    r3.Vector

	// LAS 1.3
	WaveformDataStart uint64

	// LAS 1.4
	EVLRStart      uint64
	NumberOfEVLRs  uint32
	PointCount64   uint64
	PointsByReturn [15]uint64
}

// HeaderSizeFor returns the header size written for a 1.minor file.
func HeaderSizeFor(minor uint8) int {
	switch {
	case minor >= 4:
		return HeaderSize14
	case minor == 3:
		return HeaderSize13
	default:
		return HeaderSize12
	}
}

// PointCount returns the number of point records: the 64-bit count for
// version 1.4 and later, the legacy 32-bit count otherwise.
func (h *Header) PointCount() uint64 {
	if h.VersionMajor == 1 && h.VersionMinor >= 4 {
		return h.PointCount64
	}

	return uint64(h.LegacyPointCount)
}

// SetPointCount fills every count field for n single-return points.
//
// Legacy counts are left zero when n does not fit in 32 bits or the point
// format is 6 or above.
func (h *Header) SetPointCount(n uint64) {
	h.LegacyPointCount = 0
	h.LegacyPointsByReturn = [5]uint32{}
	h.PointCount64 = 0
	h.PointsByReturn = [15]uint64{}

	if n <= uint64(^uint32(0)) && h.PointFormat < 6 {
		h.LegacyPointCount = uint32(n)
		h.LegacyPointsByReturn[0] = uint32(n)
	}
	if h.VersionMinor >= 4 {
		h.PointCount64 = n
		h.PointsByReturn[0] = n
	}
}

// Transform returns the scale and offset used by point records.
func (h *Header) Transform() Transform {
	return Transform{Scale: h.Scale, Offset: h.Offset}
}

// Version returns "major.minor".
func (h *Header) Version() string {
	return fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)
}

// ParseHeader parses the public header block at the start of data.
//
// Returns:
//   - Header: Parsed header
//   - error: ErrInvalidSignature, ErrUnsupportedVersion, ErrUnsupportedPointFormat,
//     or ErrMalformedHeader for short input or a record length below the
//     format's minimum
func ParseHeader(data []byte) (Header, error) {
	var h Header

	if len(data) < len(Signature) {
		return h, fmt.Errorf("%w: %d bytes", errs.ErrMalformedHeader, len(data))
	}
	if string(data[:4]) != Signature {
		return h, fmt.Errorf("%w: %q", errs.ErrInvalidSignature, data[:4])
	}
	if len(data) < HeaderSize12 {
		return h, fmt.Errorf("%w: header needs %d bytes, have %d", errs.ErrMalformedHeader, HeaderSize12, len(data))
	}

	r := reader{buf: data, pos: 4, engine: endian.GetLittleEndianEngine()}

	h.FileSourceID = r.u16()
	h.GlobalEncoding = r.u16()
	copy(h.ProjectID[:], r.bytes(16))
	h.VersionMajor = r.u8()
	h.VersionMinor = r.u8()

	if h.VersionMajor != 1 || h.VersionMinor < 2 {
		return h, fmt.Errorf("%w: %s", errs.ErrUnsupportedVersion, h.Version())
	}
	if size := HeaderSizeFor(h.VersionMinor); len(data) < size {
		return h, fmt.Errorf("%w: version %s header needs %d bytes, have %d",
			errs.ErrMalformedHeader, h.Version(), size, len(data))
	}

	h.SystemIdentifier = r.text(identifierLength)
	h.GeneratingSoftware = r.text(identifierLength)
	h.CreationDayOfYear = r.u16()
	h.CreationYear = r.u16()
	h.HeaderSize = r.u16()
	h.OffsetToPointData = r.u32()
	h.NumberOfVLRs = r.u32()
	h.PointFormat = format.PointFormat(r.u8())
	h.PointRecordLength = r.u16()
	h.LegacyPointCount = r.u32()
	for i := range h.LegacyPointsByReturn {
		h.LegacyPointsByReturn[i] = r.u32()
	}

	h.Scale = r.vector()
	h.Offset = r.vector()
	h.Max.X, h.Min.X = r.f64(), r.f64()
	h.Max.Y, h.Min.Y = r.f64(), r.f64()
	h.Max.Z, h.Min.Z = r.f64(), r.f64()

	if h.VersionMinor >= 3 {
		h.WaveformDataStart = r.u64()
	}
	if h.VersionMinor >= 4 {
		h.EVLRStart = r.u64()
		h.NumberOfEVLRs = r.u32()
		h.PointCount64 = r.u64()
		for i := range h.PointsByReturn {
			h.PointsByReturn[i] = r.u64()
		}
	}

	if !h.PointFormat.Valid() {
		return h, fmt.Errorf("%w: %d", errs.ErrUnsupportedPointFormat, h.PointFormat)
	}
	if h.PointRecordLength < h.PointFormat.RecordLength() {
		return h, fmt.Errorf("%w: record length %d is shorter than %d for format %d",
			errs.ErrMalformedHeader, h.PointRecordLength, h.PointFormat.RecordLength(), h.PointFormat)
	}

	return h, nil
}

// Bytes serializes the header in the layout of its version: 227 bytes for
// 1.2, 235 for 1.3 and 375 for 1.4.
func (h *Header) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, HeaderSizeFor(h.VersionMinor))

	b = append(b, Signature...)
	b = engine.AppendUint16(b, h.FileSourceID)
	b = engine.AppendUint16(b, h.GlobalEncoding)
	b = append(b, h.ProjectID[:]...)
	b = append(b, h.VersionMajor, h.VersionMinor)
	b = appendText(b, h.SystemIdentifier, identifierLength)
	b = appendText(b, h.GeneratingSoftware, identifierLength)
	b = engine.AppendUint16(b, h.CreationDayOfYear)
	b = engine.AppendUint16(b, h.CreationYear)
	b = engine.AppendUint16(b, h.HeaderSize)
	b = engine.AppendUint32(b, h.OffsetToPointData)
	b = engine.AppendUint32(b, h.NumberOfVLRs)
	b = append(b, byte(h.PointFormat))
	b = engine.AppendUint16(b, h.PointRecordLength)
	b = engine.AppendUint32(b, h.LegacyPointCount)
	for _, n := range h.LegacyPointsByReturn {
		b = engine.AppendUint32(b, n)
	}

	for _, v := range []r3.Vector{h.Scale, h.Offset} {
		b = endian.AppendFloat64(engine, b, v.X)
		b = endian.AppendFloat64(engine, b, v.Y)
		b = endian.AppendFloat64(engine, b, v.Z)
	}
	for _, v := range []float64{h.Max.X, h.Min.X, h.Max.Y, h.Min.Y, h.Max.Z, h.Min.Z} {
		b = endian.AppendFloat64(engine, b, v)
	}

	if h.VersionMinor >= 3 {
		b = engine.AppendUint64(b, h.WaveformDataStart)
	}
	if h.VersionMinor >= 4 {
		b = engine.AppendUint64(b, h.EVLRStart)
		b = engine.AppendUint32(b, h.NumberOfEVLRs)
		b = engine.AppendUint64(b, h.PointCount64)
		for _, n := range h.PointsByReturn {
			b = engine.AppendUint64(b, n)
		}
	}

	return b
}

// appendText writes s NUL-padded to n bytes, truncating longer strings.
func appendText(b []byte, s string, n int) []byte {
	if len(s) > n {
		s = s[:n]
	}
	b = append(b, s...)

	return append(b, make([]byte, n-len(s))...)
}

// reader decodes fixed-offset little-endian fields. Callers check the length first.
type reader struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

func (r *reader) bytes(n int) []byte {
	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b
}

func (r *reader) u8() uint8   { return r.bytes(1)[0] }
func (r *reader) u16() uint16 { return r.engine.Uint16(r.bytes(2)) }
func (r *reader) u32() uint32 { return r.engine.Uint32(r.bytes(4)) }
func (r *reader) u64() uint64 { return r.engine.Uint64(r.bytes(8)) }

func (r *reader) f64() float64 {
	return endian.Float64(r.engine, r.bytes(8))
}

func (r *reader) vector() r3.Vector {
	return r3.Vector{X: r.f64(), Y: r.f64(), Z: r.f64()}
}

func (r *reader) text(n int) string {
	b := r.bytes(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

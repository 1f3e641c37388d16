package las

import (
	"fmt"
	"math"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/golang/geo/r3"
)

// Byte offsets of the fields shared by every point format.
const (
	offX              = 0
	offY              = 4
	offZ              = 8
	offIntensity      = 12
	offReturnInfo     = 14
	offClassification = 15
	offScanAngle      = 16
	offUserData       = 17
	offPointSourceID  = 18
	baseRecordLength  = 20
)

// Write defaults for attributes a Cloud does not carry.
const (
	ClassUnclassified uint8 = 1
	SingleReturn      uint8 = 0x11 // return 1 of 1
)

// Transform maps stored integer coordinates to real-world coordinates:
// real = stored*Scale + Offset, per axis.
type Transform struct {
	Scale  r3.Vector
	Offset r3.Vector
}

// Apply converts stored integers to real-world coordinates.
func (t Transform) Apply(x, y, z int32) r3.Vector {
	return r3.Vector{
		X: float64(x)*t.Scale.X + t.Offset.X,
		Y: float64(y)*t.Scale.Y + t.Offset.Y,
		Z: float64(z)*t.Scale.Z + t.Offset.Z,
	}
}

// Quantize converts a real-world coordinate to stored integers with
// round((v-offset)/scale) per axis.
//
// Returns:
//   - [3]int32: Stored X, Y, Z
//   - error: ErrCoordinateOutOfRange when a result is not finite or does not fit in int32
func (t Transform) Quantize(v r3.Vector) ([3]int32, error) {
	var out [3]int32
	axes := [3][3]float64{
		{v.X, t.Offset.X, t.Scale.X},
		{v.Y, t.Offset.Y, t.Scale.Y},
		{v.Z, t.Offset.Z, t.Scale.Z},
	}

	for i, a := range axes {
		q := math.Round((a[0] - a[1]) / a[2])
		if math.IsNaN(q) || q < math.MinInt32 || q > math.MaxInt32 {
			return out, fmt.Errorf("%w: %g with scale %g offset %g",
				errs.ErrCoordinateOutOfRange, a[0], a[2], a[1])
		}
		out[i] = int32(q)
	}

	return out, nil
}

// PointRecord is one decoded point data record.
//
// ScanDirection and EdgeOfFlightLine are carried next to ReturnInfo rather
// than inside it; they are not written by EncodeRecord.
type PointRecord struct {
	X, Y, Z        float64
	Intensity      uint16
	ReturnInfo     uint8
	Classification uint8
	ScanAngle      int8
	UserData       uint8
	PointSourceID  uint16
	GPSTime        float64
	Color          cloud.RGB
	NIR            uint16

	ScanDirection    bool
	EdgeOfFlightLine bool
}

// NewPointRecord returns the record written for p: intensity 0, unclassified,
// return 1 of 1, and p's color.
func NewPointRecord(p cloud.Point) PointRecord {
	return PointRecord{
		X:              float64(p.X),
		Y:              float64(p.Y),
		Z:              float64(p.Z),
		ReturnInfo:     SingleReturn,
		Classification: ClassUnclassified,
		Color:          p.Color,
	}
}

// ReturnNumber returns bits 0-3 of ReturnInfo.
func (r *PointRecord) ReturnNumber() uint8 {
	return r.ReturnInfo & 0x0f
}

// NumberOfReturns returns bits 4-7 of ReturnInfo.
func (r *PointRecord) NumberOfReturns() uint8 {
	return (r.ReturnInfo >> 4) & 0x0f
}

// SetReturnInfo packs returnNumber and numberOfReturns into ReturnInfo and
// stores the two flags out of band.
func (r *PointRecord) SetReturnInfo(returnNumber, numberOfReturns uint8, scanDirection, edgeOfFlightLine bool) {
	r.ReturnInfo = returnNumber&0x0f | (numberOfReturns&0x0f)<<4
	r.ScanDirection = scanDirection
	r.EdgeOfFlightLine = edgeOfFlightLine
}

// Point narrows the record to a cloud point.
func (r *PointRecord) Point() cloud.Point {
	return cloud.Point{X: float32(r.X), Y: float32(r.Y), Z: float32(r.Z), Color: r.Color}
}

// RecordLayout locates the optional attribute groups of one point format.
// Offsets are -1 when the group is absent.
type RecordLayout struct {
	format    format.PointFormat
	length    int
	transform Transform

	timeOff  int
	colorOff int
	nirOff   int
}

// NewRecordLayout builds the layout for format pf with records of length
// bytes. Bytes past the modeled fields are padding or wave packet data; they
// are skipped on decode and zeroed on encode.
//
// Returns:
//   - *RecordLayout: Record layout
//   - error: ErrUnsupportedPointFormat, or ErrMalformedHeader if length is
//     shorter than the format's record length
func NewRecordLayout(pf format.PointFormat, length int, t Transform) (*RecordLayout, error) {
	if !pf.Valid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedPointFormat, pf)
	}
	if length < int(pf.RecordLength()) {
		return nil, fmt.Errorf("%w: record length %d is shorter than %d for format %d",
			errs.ErrMalformedHeader, length, pf.RecordLength(), pf)
	}

	l := &RecordLayout{format: pf, length: length, transform: t, timeOff: -1, colorOff: -1, nirOff: -1}

	off := baseRecordLength
	if pf.HasTime() {
		l.timeOff = off
		off += 8
	}
	if pf.HasColor() {
		l.colorOff = off
		off += 6
	}
	if pf.HasNIR() {
		l.nirOff = off
	}

	return l, nil
}

// Length returns the record stride in bytes.
func (l *RecordLayout) Length() int {
	return l.length
}

// Decode reads the record at the start of rec.
func (l *RecordLayout) Decode(rec []byte) (PointRecord, error) {
	if len(rec) < l.length {
		return PointRecord{}, fmt.Errorf("%w: format %d record needs %d bytes, have %d",
			errs.ErrTruncatedPayload, l.format, l.length, len(rec))
	}

	engine := endian.GetLittleEndianEngine()

	pos := l.transform.Apply(
		int32(engine.Uint32(rec[offX:])),
		int32(engine.Uint32(rec[offY:])),
		int32(engine.Uint32(rec[offZ:])),
	)

	r := PointRecord{
		X:              pos.X,
		Y:              pos.Y,
		Z:              pos.Z,
		Intensity:      engine.Uint16(rec[offIntensity:]),
		ReturnInfo:     rec[offReturnInfo],
		Classification: rec[offClassification],
		ScanAngle:      int8(rec[offScanAngle]),
		UserData:       rec[offUserData],
		PointSourceID:  engine.Uint16(rec[offPointSourceID:]),
		Color:          cloud.White,
	}

	if l.timeOff >= 0 {
		r.GPSTime = endian.Float64(engine, rec[l.timeOff:])
	}
	if l.colorOff >= 0 {
		r.Color = cloud.RGB{
			R: uint8(engine.Uint16(rec[l.colorOff:]) >> 8),
			G: uint8(engine.Uint16(rec[l.colorOff+2:]) >> 8),
			B: uint8(engine.Uint16(rec[l.colorOff+4:]) >> 8),
		}
	}
	if l.nirOff >= 0 {
		r.NIR = engine.Uint16(rec[l.nirOff:])
	}

	return r, nil
}

// Append appends the encoded record for r to dst. dst is returned unchanged
// on error.
func (l *RecordLayout) Append(dst []byte, r *PointRecord) ([]byte, error) {
	q, err := l.transform.Quantize(r3.Vector{X: r.X, Y: r.Y, Z: r.Z})
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, make([]byte, l.length)...)
	rec := dst[start:]

	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(rec[offX:], uint32(q[0]))
	engine.PutUint32(rec[offY:], uint32(q[1]))
	engine.PutUint32(rec[offZ:], uint32(q[2]))
	engine.PutUint16(rec[offIntensity:], r.Intensity)
	rec[offReturnInfo] = r.ReturnInfo
	rec[offClassification] = r.Classification
	rec[offScanAngle] = byte(r.ScanAngle)
	rec[offUserData] = r.UserData
	engine.PutUint16(rec[offPointSourceID:], r.PointSourceID)

	if l.timeOff >= 0 {
		endian.PutFloat64(engine, rec[l.timeOff:], r.GPSTime)
	}
	if l.colorOff >= 0 {
		engine.PutUint16(rec[l.colorOff:], uint16(r.Color.R)<<8)
		engine.PutUint16(rec[l.colorOff+2:], uint16(r.Color.G)<<8)
		engine.PutUint16(rec[l.colorOff+4:], uint16(r.Color.B)<<8)
	}
	if l.nirOff >= 0 {
		engine.PutUint16(rec[l.nirOff:], r.NIR)
	}

	return dst, nil
}

// DecodeRecord decodes one record of format pf using transform t.
func DecodeRecord(rec []byte, pf format.PointFormat, t Transform) (PointRecord, error) {
	l, err := NewRecordLayout(pf, int(pf.RecordLength()), t)
	if err != nil {
		return PointRecord{}, err
	}

	return l.Decode(rec)
}

// EncodeRecord appends one record of format pf, exactly pf.RecordLength() bytes, to dst.
func EncodeRecord(dst []byte, r *PointRecord, pf format.PointFormat, t Transform) ([]byte, error) {
	l, err := NewRecordLayout(pf, int(pf.RecordLength()), t)
	if err != nil {
		return dst, err
	}

	return l.Append(dst, r)
}

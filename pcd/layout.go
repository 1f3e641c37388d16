package pcd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
)

type fieldRole uint8

const (
	roleOpaque fieldRole = iota
	roleX
	roleY
	roleZ
	roleRGB
)

// slot locates one field inside a record.
type slot struct {
	offset  int  // byte offset in a binary record
	width   int  // size*count
	token   int  // index of the first ascii token
	typ     byte // TYPE tag
	role    fieldRole
	present bool
}

// Layout maps a header's field schema to record offsets.
//
// It is built once per header and reused for every record, so decoding a
// point is a handful of fixed-offset loads.
type Layout struct {
	recordSize int
	tokens     int
	fields     []Field
	slots      []slot

	x, y, z, rgb slot
}

// NewLayout builds the record layout for a validated header.
//
// x, y and z must be 4-byte float fields. rgb, when present, must be 4 bytes
// wide. Other fields may have any size and type and are carried as opaque bytes.
// When a name appears more than once, the first occurrence is used.
//
// Returns:
//   - *Layout: Record layout
//   - error: Validation error from Header.Validate, or ErrUnsupportedField
func NewLayout(h *Header) (*Layout, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	l := &Layout{
		fields: h.FieldList(),
		slots:  make([]slot, len(h.Fields)),
	}

	offset, token := 0, 0
	for i, f := range l.fields {
		s := slot{offset: offset, width: f.Width(), token: token, typ: f.Type, present: true}
		l.slots[i] = s
		offset += s.width
		token += f.Count

		var target *slot
		switch f.Name {
		case "x":
			target, s.role = &l.x, roleX
		case "y":
			target, s.role = &l.y, roleY
		case "z":
			target, s.role = &l.z, roleZ
		case "rgb":
			target, s.role = &l.rgb, roleRGB
		default:
			continue
		}
		if target.present {
			continue
		}

		if err := checkKnownField(f); err != nil {
			return nil, err
		}
		*target = s
		l.slots[i] = s
	}

	l.recordSize = offset
	l.tokens = token

	return l, nil
}

func checkKnownField(f Field) error {
	if f.Size != 4 {
		return fmt.Errorf("%w: %s has size %d, want 4", errs.ErrUnsupportedField, f.Name, f.Size)
	}

	if f.Name == "rgb" {
		switch f.Type {
		case TypeUnsigned, TypeSigned, TypeFloat:
			return nil
		default:
			return fmt.Errorf("%w: rgb has type %q", errs.ErrUnsupportedField, f.Type)
		}
	}

	if f.Type != TypeFloat {
		return fmt.Errorf("%w: %s has type %q, want F", errs.ErrUnsupportedField, f.Name, f.Type)
	}

	return nil
}

// RecordSize returns the byte length of one binary record.
func (l *Layout) RecordSize() int {
	return l.recordSize
}

// HasColor reports whether the schema carries an rgb field.
func (l *Layout) HasColor() bool {
	return l.rgb.present
}

// DecodeRecord decodes the record starting at offset in data.
//
// Returns:
//   - cloud.Point: Decoded point, white when the schema has no rgb field
//   - error: ErrTruncatedPayload if the record extends past data
func (l *Layout) DecodeRecord(data []byte, offset int) (cloud.Point, error) {
	if offset < 0 || offset+l.recordSize > len(data) {
		return cloud.Point{}, fmt.Errorf("%w: record at %d needs %d bytes, have %d",
			errs.ErrTruncatedPayload, offset, l.recordSize, len(data)-offset)
	}

	return l.decode(data[offset : offset+l.recordSize]), nil
}

func (l *Layout) decode(rec []byte) cloud.Point {
	engine := endian.GetLittleEndianEngine()

	p := cloud.Point{
		X:     endian.Float32(engine, rec[l.x.offset:]),
		Y:     endian.Float32(engine, rec[l.y.offset:]),
		Z:     endian.Float32(engine, rec[l.z.offset:]),
		Color: cloud.White,
	}
	if l.rgb.present {
		p.Color = cloud.UnpackRGB(engine.Uint32(rec[l.rgb.offset:]))
	}

	return p
}

// EncodeRecord appends the binary record for p to dst.
//
// Fields other than x, y, z and rgb are written as zero bytes of their
// declared width, so every record is exactly RecordSize bytes.
func (l *Layout) EncodeRecord(dst []byte, p cloud.Point) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, l.recordSize)...)
	rec := dst[start:]

	engine := endian.GetLittleEndianEngine()
	endian.PutFloat32(engine, rec[l.x.offset:], p.X)
	endian.PutFloat32(engine, rec[l.y.offset:], p.Y)
	endian.PutFloat32(engine, rec[l.z.offset:], p.Z)
	if l.rgb.present {
		engine.PutUint32(rec[l.rgb.offset:], p.Color.Packed())
	}

	return dst
}

// DecodeTokens decodes one ascii line already split into tokens.
//
// Returns:
//   - cloud.Point: Decoded point
//   - bool: false when the line has fewer tokens than the schema declares
//   - error: ErrCorruptPayload for tokens that are not numbers
func (l *Layout) DecodeTokens(tokens []string) (cloud.Point, bool, error) {
	if len(tokens) < l.tokens {
		return cloud.Point{}, false, nil
	}

	var p cloud.Point
	var err error
	if p.X, err = parseCoordinate(tokens[l.x.token]); err != nil {
		return p, false, err
	}
	if p.Y, err = parseCoordinate(tokens[l.y.token]); err != nil {
		return p, false, err
	}
	if p.Z, err = parseCoordinate(tokens[l.z.token]); err != nil {
		return p, false, err
	}

	p.Color = cloud.White
	if l.rgb.present {
		packed, err := parsePackedColor(tokens[l.rgb.token], l.rgb.typ)
		if err != nil {
			return p, false, err
		}
		p.Color = cloud.UnpackRGB(packed)
	}

	return p, true, nil
}

func parseCoordinate(tok string) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", errs.ErrCorruptPayload, tok)
	}

	return float32(v), nil
}

// parsePackedColor reads a packed color token. Float-typed rgb columns hold
// the float whose bit pattern is the packed color; other columns hold the
// unsigned integer, or a float that is truncated to one.
func parsePackedColor(tok string, typ byte) (uint32, error) {
	if typ == TypeFloat {
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: rgb %q", errs.ErrCorruptPayload, tok)
		}

		return math.Float32bits(float32(f)), nil
	}

	if v, err := strconv.ParseUint(tok, 10, 32); err == nil {
		return uint32(v), nil
	}

	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: rgb %q", errs.ErrCorruptPayload, tok)
	}

	return uint32(f), nil
}

// AppendTokens appends the ascii line for p, without the trailing newline.
func (l *Layout) AppendTokens(dst []byte, p cloud.Point) []byte {
	for i, f := range l.fields {
		s := l.slots[i]
		for c := range f.Count {
			if i > 0 || c > 0 {
				dst = append(dst, ' ')
			}

			role := s.role
			if c > 0 {
				role = roleOpaque
			}

			switch role {
			case roleX:
				dst = strconv.AppendFloat(dst, float64(p.X), 'g', -1, 32)
			case roleY:
				dst = strconv.AppendFloat(dst, float64(p.Y), 'g', -1, 32)
			case roleZ:
				dst = strconv.AppendFloat(dst, float64(p.Z), 'g', -1, 32)
			case roleRGB:
				dst = appendPackedColor(dst, p.Color.Packed(), s.typ)
			default:
				dst = append(dst, '0')
			}
		}
	}

	return dst
}

func appendPackedColor(dst []byte, packed uint32, typ byte) []byte {
	if typ == TypeFloat {
		return strconv.AppendFloat(dst, float64(math.Float32frombits(packed)), 'g', -1, 32)
	}

	return strconv.AppendUint(dst, uint64(packed), 10)
}

// toColumns transposes n row-major records into one contiguous column per
// field, the layout of binary_compressed payloads.
func (l *Layout) toColumns(rows []byte, n int) []byte {
	out := make([]byte, len(rows))

	col := 0
	for _, s := range l.slots {
		for i := range n {
			src := i*l.recordSize + s.offset
			copy(out[col+i*s.width:col+(i+1)*s.width], rows[src:src+s.width])
		}
		col += n * s.width
	}

	return out
}

// toRows is the inverse of toColumns.
func (l *Layout) toRows(cols []byte, n int) []byte {
	out := make([]byte, len(cols))

	col := 0
	for _, s := range l.slots {
		for i := range n {
			dst := i*l.recordSize + s.offset
			copy(out[dst:dst+s.width], cols[col+i*s.width:col+(i+1)*s.width])
		}
		col += n * s.width
	}

	return out
}

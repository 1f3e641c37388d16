package pcd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
)

// Field type tags used on the TYPE line.
const (
	TypeFloat    byte = 'F'
	TypeUnsigned byte = 'U'
	TypeSigned   byte = 'I'
)

// DefaultVersion and DefaultViewpoint are written when no other value is configured.
const (
	DefaultVersion   = "0.7"
	DefaultViewpoint = "0 0 0 1 0 0 0"
)

const magicComment = "# .PCD v0.7 - Point Cloud Data file format"

// Field describes one column of a PCD record.
type Field struct {
	Name  string
	Size  int  // bytes per element
	Type  byte // TypeFloat, TypeUnsigned or TypeSigned
	Count int  // elements per point
}

// Width returns the bytes the field occupies in a binary record.
func (f Field) Width() int {
	return f.Size * f.Count
}

// Header is the text header of a PCD file.
//
// The four field lists are kept parallel as they appear on disk so that a
// header with mismatched lists can be parsed and then reported by Validate.
type Header struct {
	Version   string
	Fields    []string
	Sizes     []int
	Types     []byte
	Counts    []int
	Width     uint32
	Height    uint32
	Viewpoint string
	Points    int

	// Data is the payload encoding, zero when DataKeyword is not recognized.
	Data        format.DataEncoding
	DataKeyword string
}

// NewXYZRGBHeader returns the header written for a cloud of n points with
// x, y, z float coordinates and a packed unsigned rgb column.
func NewXYZRGBHeader(width, height uint32, n int, enc format.DataEncoding) Header {
	return Header{
		Version:     DefaultVersion,
		Fields:      []string{"x", "y", "z", "rgb"},
		Sizes:       []int{4, 4, 4, 4},
		Types:       []byte{TypeFloat, TypeFloat, TypeFloat, TypeUnsigned},
		Counts:      []int{1, 1, 1, 1},
		Width:       width,
		Height:      height,
		Viewpoint:   DefaultViewpoint,
		Points:      n,
		Data:        enc,
		DataKeyword: enc.String(),
	}
}

// AddField appends a field to the schema.
func (h *Header) AddField(f Field) {
	h.Fields = append(h.Fields, f.Name)
	h.Sizes = append(h.Sizes, f.Size)
	h.Types = append(h.Types, f.Type)
	h.Counts = append(h.Counts, f.Count)
}

// FieldList returns the schema as Field values. It assumes Validate passed.
func (h *Header) FieldList() []Field {
	fields := make([]Field, len(h.Fields))
	for i, name := range h.Fields {
		fields[i] = Field{Name: name, Size: h.Sizes[i], Type: h.Types[i], Count: h.Counts[i]}
	}

	return fields
}

// RecordSize returns the sum of size*count over all fields.
func (h *Header) RecordSize() int {
	total := 0
	for i := range h.Sizes {
		if i < len(h.Counts) {
			total += h.Sizes[i] * h.Counts[i]
		}
	}

	return total
}

// HasField reports whether name is declared in FIELDS.
func (h *Header) HasField(name string) bool {
	for _, f := range h.Fields {
		if f == name {
			return true
		}
	}

	return false
}

// Validate checks the structural rules every readable header must satisfy.
//
// Returns:
//   - error: ErrFieldCountMismatch, ErrMalformedHeader or ErrMissingCoordinate
func (h *Header) Validate() error {
	n := len(h.Fields)
	if len(h.Sizes) != n || len(h.Types) != n || len(h.Counts) != n {
		return fmt.Errorf("%w: FIELDS=%d SIZE=%d TYPE=%d COUNT=%d",
			errs.ErrFieldCountMismatch, n, len(h.Sizes), len(h.Types), len(h.Counts))
	}

	if h.Width == 0 {
		return fmt.Errorf("%w: WIDTH must be positive", errs.ErrMalformedHeader)
	}
	if h.Points <= 0 {
		return fmt.Errorf("%w: POINTS must be positive", errs.ErrMalformedHeader)
	}

	for i := range n {
		if h.Sizes[i] <= 0 || h.Counts[i] <= 0 {
			return fmt.Errorf("%w: field %q has size %d count %d",
				errs.ErrMalformedHeader, h.Fields[i], h.Sizes[i], h.Counts[i])
		}
	}

	for _, axis := range []string{"x", "y", "z"} {
		if !h.HasField(axis) {
			return fmt.Errorf("%w: %s", errs.ErrMissingCoordinate, axis)
		}
	}

	return nil
}

// ParseHeader parses the text header at the start of data.
//
// Blank lines and lines starting with '#' are skipped. Unknown keys are
// ignored. Parsing ends at the DATA line; the returned offset is the index of
// the first payload byte. ParseHeader does not call Validate.
//
// Returns:
//   - Header: Parsed header
//   - int: Offset of the payload within data
//   - error: ErrMalformedHeader for unparsable values or a missing DATA line
func ParseHeader(data []byte) (Header, int, error) {
	h := Header{Height: 1}

	pos := 0
	for pos < len(data) {
		var line []byte
		if end := bytes.IndexByte(data[pos:], '\n'); end >= 0 {
			line = data[pos : pos+end]
			pos += end + 1
		} else {
			line = data[pos:]
			pos = len(data)
		}

		text := strings.TrimSpace(string(line))
		if text == "" || text[0] == '#' {
			continue
		}

		key, rest := text, ""
		if i := strings.IndexAny(text, " \t"); i >= 0 {
			key, rest = text[:i], strings.TrimSpace(text[i+1:])
		}

		var err error
		switch key {
		case "VERSION":
			h.Version = rest
		case "FIELDS":
			h.Fields = strings.Fields(rest)
		case "SIZE":
			h.Sizes, err = parseInts(key, rest)
		case "TYPE":
			h.Types, err = parseTypes(rest)
		case "COUNT":
			h.Counts, err = parseInts(key, rest)
		case "WIDTH":
			h.Width, err = parseUint32(key, rest)
		case "HEIGHT":
			h.Height, err = parseUint32(key, rest)
		case "VIEWPOINT":
			h.Viewpoint = rest
		case "POINTS":
			h.Points, err = strconv.Atoi(rest)
			if err != nil {
				err = fmt.Errorf("%w: POINTS %q", errs.ErrMalformedHeader, rest)
			}
		case "DATA":
			h.DataKeyword = rest
			h.Data = parseDataKeyword(rest)

			return h, pos, nil
		}

		if err != nil {
			return h, 0, err
		}
	}

	return h, 0, fmt.Errorf("%w: missing DATA line", errs.ErrMalformedHeader)
}

// parseDataKeyword accepts only the exact on-disk keywords.
func parseDataKeyword(keyword string) format.DataEncoding {
	enc, ok := format.ParseDataEncoding(keyword)
	if !ok || enc.String() != keyword {
		return 0
	}

	return enc
}

func parseInts(key, s string) ([]int, error) {
	tokens := strings.Fields(s)
	out := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q", errs.ErrMalformedHeader, key, tok)
		}
		out[i] = v
	}

	return out, nil
}

func parseTypes(s string) ([]byte, error) {
	tokens := strings.Fields(s)
	out := make([]byte, len(tokens))
	for i, tok := range tokens {
		if len(tok) != 1 {
			return nil, fmt.Errorf("%w: TYPE value %q", errs.ErrMalformedHeader, tok)
		}
		out[i] = tok[0]
	}

	return out, nil
}

func parseUint32(key, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errs.ErrMalformedHeader, key, s)
	}

	return uint32(v), nil
}

// Bytes serializes the header, ending with the DATA line and its newline.
func (h *Header) Bytes() []byte {
	var b strings.Builder

	b.WriteString(magicComment)
	b.WriteByte('\n')

	version := h.Version
	if version == "" {
		version = DefaultVersion
	}
	fmt.Fprintf(&b, "VERSION %s\n", version)
	fmt.Fprintf(&b, "FIELDS %s\n", strings.Join(h.Fields, " "))
	fmt.Fprintf(&b, "SIZE %s\n", joinInts(h.Sizes))

	types := make([]string, len(h.Types))
	for i, t := range h.Types {
		types[i] = string(t)
	}
	fmt.Fprintf(&b, "TYPE %s\n", strings.Join(types, " "))
	fmt.Fprintf(&b, "COUNT %s\n", joinInts(h.Counts))
	fmt.Fprintf(&b, "WIDTH %d\n", h.Width)
	fmt.Fprintf(&b, "HEIGHT %d\n", h.Height)

	viewpoint := h.Viewpoint
	if viewpoint == "" {
		viewpoint = DefaultViewpoint
	}
	fmt.Fprintf(&b, "VIEWPOINT %s\n", viewpoint)
	fmt.Fprintf(&b, "POINTS %d\n", h.Points)

	keyword := h.DataKeyword
	if h.Data != 0 {
		keyword = h.Data.String()
	}
	fmt.Fprintf(&b, "DATA %s\n", keyword)

	return []byte(b.String())
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, " ")
}

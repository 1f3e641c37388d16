package format

import "strings"

type (
	FileFormat      uint8
	DataEncoding    uint8
	CompressionType uint8
	PointFormat     uint8
)

const (
	FormatUnknown FileFormat = 0x0 // FormatUnknown represents an unrecognized container.
	FormatPCD     FileFormat = 0x1 // FormatPCD represents the PCD field-table container.
	FormatLAS     FileFormat = 0x2 // FormatLAS represents the LAS fixed-format container.

	EncodingASCII            DataEncoding = 0x1 // EncodingASCII represents whitespace delimited text records.
	EncodingBinary           DataEncoding = 0x2 // EncodingBinary represents raw little-endian records.
	EncodingBinaryCompressed DataEncoding = 0x3 // EncodingBinaryCompressed represents LZF compressed column-major records.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionLZF  CompressionType = 0x5 // CompressionLZF represents LZF compression.
	CompressionLZMA CompressionType = 0x6 // CompressionLZMA represents LZMA compression.
)

// MaxPointFormat is the highest LAS point data record format number.
const MaxPointFormat PointFormat = 10

func (f FileFormat) String() string {
	switch f {
	case FormatPCD:
		return "PCD"
	case FormatLAS:
		return "LAS"
	default:
		return "Unknown"
	}
}

// Extension returns the canonical file extension including the leading dot.
func (f FileFormat) Extension() string {
	switch f {
	case FormatPCD:
		return ".pcd"
	case FormatLAS:
		return ".las"
	default:
		return ""
	}
}

// ParseFileFormat maps a case-insensitive name ("pcd", "las") to a FileFormat.
func ParseFileFormat(name string) FileFormat {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "pcd":
		return FormatPCD
	case "las":
		return FormatLAS
	default:
		return FormatUnknown
	}
}

// String returns the keyword used on the PCD DATA line.
func (e DataEncoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingBinary:
		return "binary"
	case EncodingBinaryCompressed:
		return "binary_compressed"
	default:
		return "unknown"
	}
}

// ParseDataEncoding maps a DATA keyword to a DataEncoding.
//
// The short CLI spelling "compressed" is accepted as an alias of binary_compressed.
// The second return value is false for unrecognized keywords.
func ParseDataEncoding(keyword string) (DataEncoding, bool) {
	switch strings.ToLower(keyword) {
	case "ascii":
		return EncodingASCII, true
	case "binary":
		return EncodingBinary, true
	case "binary_compressed", "compressed":
		return EncodingBinaryCompressed, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZF:
		return "LZF"
	case CompressionLZMA:
		return "LZMA"
	default:
		return "Unknown"
	}
}

// pointFormatInfo describes the fixed shape of one LAS point data record format.
type pointFormatInfo struct {
	length uint16
	time   bool
	color  bool
	nir    bool
	wave   bool
}

var pointFormats = [MaxPointFormat + 1]pointFormatInfo{
	0:  {length: 20},
	1:  {length: 28, time: true},
	2:  {length: 26, color: true},
	3:  {length: 34, time: true, color: true},
	4:  {length: 57, time: true, wave: true},
	5:  {length: 63, time: true, color: true, wave: true},
	6:  {length: 30, time: true},
	7:  {length: 36, time: true, color: true},
	8:  {length: 38, time: true, color: true, nir: true},
	9:  {length: 59, time: true, wave: true},
	10: {length: 67, time: true, color: true, nir: true, wave: true},
}

// Valid reports whether the point format number is in the range 0-10.
func (p PointFormat) Valid() bool {
	return p <= MaxPointFormat
}

// RecordLength returns the minimum point record length in bytes, or 0 for invalid formats.
func (p PointFormat) RecordLength() uint16 {
	if !p.Valid() {
		return 0
	}

	return pointFormats[p].length
}

// HasTime reports whether records carry an 8-byte GPS time.
func (p PointFormat) HasTime() bool {
	return p.Valid() && pointFormats[p].time
}

// HasColor reports whether records carry three 16-bit color channels.
func (p PointFormat) HasColor() bool {
	return p.Valid() && pointFormats[p].color
}

// HasNIR reports whether records carry a 16-bit near-infrared channel.
func (p PointFormat) HasNIR() bool {
	return p.Valid() && pointFormats[p].nir
}

// HasWavePacket reports whether records reserve trailing wave packet bytes.
func (p PointFormat) HasWavePacket() bool {
	return p.Valid() && pointFormats[p].wave
}

// MinVersionMinor returns the lowest LAS 1.x minor version that defines the format.
func (p PointFormat) MinVersionMinor() uint8 {
	switch {
	case p >= 6:
		return 4
	case p >= 4:
		return 3
	default:
		return 2
	}
}

package pcd

import (
	"fmt"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/compress"
	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/options"
	"github.com/arloliu/pointio/internal/pool"
)

// Encode serializes c as a PCD file.
//
// The schema is x y z rgb followed by any WithExtraField columns. Organized
// clouds keep their Width and Height; any other cloud is written as a single
// row of Len points.
//
// Parameters:
//   - c: Cloud to encode
//   - opts: Encoder options
//
// Returns:
//   - []byte: File contents owned by the caller
//   - error: ErrEmptyCloud, ErrInvalidOption, or an option error
func Encode(c *cloud.Cloud, opts ...Option) ([]byte, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if c == nil || c.Len() == 0 {
		return nil, errs.ErrEmptyCloud
	}

	h := NewHeader(c, cfg)
	layout, err := NewLayout(&h)
	if err != nil {
		return nil, err
	}

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	_, _ = buf.Write(h.Bytes())

	switch cfg.encoding {
	case format.EncodingASCII:
		encodeASCII(buf, layout, c.Points)
	case format.EncodingBinary:
		encodeBinary(buf, layout, c.Points)
	case format.EncodingBinaryCompressed:
		encodeCompressed(buf, layout, c.Points)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedEncoding, cfg.encoding)
	}

	cfg.logger.Debugf("pcd: encoded %d points (%s, %d bytes)", c.Len(), cfg.encoding, buf.Len())

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// NewHeader returns the header Encode writes for c under cfg.
func NewHeader(c *cloud.Cloud, cfg *Config) Header {
	if cfg == nil {
		cfg = newConfig()
	}

	width, height := uint32(c.Len()), uint32(1)
	if c.Height > 1 && c.Organized() {
		width, height = c.Width, c.Height
	}

	h := NewXYZRGBHeader(width, height, c.Len(), cfg.encoding)
	h.Viewpoint = cfg.viewpoint
	for _, f := range cfg.extra {
		h.AddField(f)
	}

	return h
}

func encodeASCII(buf *pool.ByteBuffer, layout *Layout, pts []cloud.Point) {
	for _, p := range pts {
		buf.B = layout.AppendTokens(buf.B, p)
		buf.B = append(buf.B, '\n')
	}
}

func encodeBinary(buf *pool.ByteBuffer, layout *Layout, pts []cloud.Point) {
	buf.Grow(len(pts) * layout.RecordSize())
	for _, p := range pts {
		buf.B = layout.EncodeRecord(buf.B, p)
	}
}

// encodeCompressed writes the u32 compressed size, the u32 uncompressed size
// and the LZF block of the column-major records.
func encodeCompressed(buf *pool.ByteBuffer, layout *Layout, pts []cloud.Point) {
	rows := make([]byte, 0, len(pts)*layout.RecordSize())
	for _, p := range pts {
		rows = layout.EncodeRecord(rows, p)
	}

	cols := layout.toColumns(rows, len(pts))
	block := compress.LZFCompress(cols)

	engine := endian.GetLittleEndianEngine()
	preamble := buf.ExtendOrGrow(compressedPreamble)
	engine.PutUint32(preamble[0:4], uint32(len(block)))
	engine.PutUint32(preamble[4:8], uint32(len(cols)))
	_, _ = buf.Write(block)
}

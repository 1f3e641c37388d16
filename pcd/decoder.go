package pcd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/compress"
	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/options"
)

// compressedPreamble is the two u32 sizes before a binary_compressed block.
const compressedPreamble = 8

// Decode parses a complete PCD file.
//
// Points with a non-finite x, y or z are dropped and clear IsDense, so the
// returned cloud may hold fewer points than the header declares. Width and
// Height are copied from the header.
//
// Parameters:
//   - data: File contents
//   - opts: Decoder options (only WithLogger applies)
//
// Returns:
//   - *cloud.Cloud: Decoded points
//   - Header: Parsed header
//   - error: Header, payload or encoding error
func Decode(data []byte, opts ...Option) (*cloud.Cloud, Header, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, Header{}, err
	}

	h, offset, err := ParseHeader(data)
	if err != nil {
		return nil, h, err
	}

	layout, err := NewLayout(&h)
	if err != nil {
		return nil, h, err
	}

	payload := data[offset:]
	c := cloud.New(min(h.Points, len(payload)))
	c.Width, c.Height = h.Width, h.Height

	var read, dropped int
	switch h.Data {
	case format.EncodingASCII:
		read, dropped, err = decodeASCII(c, layout, payload, h.Points)
	case format.EncodingBinary:
		read, dropped, err = decodeBinary(c, layout, payload, h.Points)
	case format.EncodingBinaryCompressed:
		read, dropped, err = decodeCompressed(c, layout, payload, h.Points)
	default:
		err = fmt.Errorf("%w: DATA %q", errs.ErrUnsupportedEncoding, h.DataKeyword)
	}
	if err != nil {
		return nil, h, err
	}

	if read < h.Points {
		cfg.logger.Warnf("pcd: payload holds %d of %d declared points", read, h.Points)
	}
	if dropped > 0 {
		cfg.logger.Warnf("pcd: dropped %d non-finite points of %d", dropped, read)
	}
	cfg.logger.Debugf("pcd: decoded %d points (%s, %dx%d, record %d bytes)",
		c.Len(), h.Data, h.Width, h.Height, layout.RecordSize())

	return c, h, nil
}

// decodeASCII reads up to n lines. Blank lines, comments and lines with too
// few tokens do not count as points.
//
// Each decoder returns the number of records read and how many of them were
// dropped as non-finite.
func decodeASCII(c *cloud.Cloud, layout *Layout, payload []byte, n int) (int, int, error) {
	read, dropped := 0, 0
	for len(payload) > 0 && read < n {
		var line []byte
		if end := bytes.IndexByte(payload, '\n'); end >= 0 {
			line, payload = payload[:end], payload[end+1:]
		} else {
			line, payload = payload, nil
		}

		tokens := strings.Fields(string(line))
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		p, ok, err := layout.DecodeTokens(tokens)
		if err != nil {
			return read, dropped, err
		}
		if !ok {
			continue
		}

		read++
		if !c.PushChecked(p) {
			dropped++
		}
	}

	return read, dropped, nil
}

func decodeBinary(c *cloud.Cloud, layout *Layout, payload []byte, n int) (int, int, error) {
	size := layout.RecordSize()
	if n > len(payload)/size {
		return 0, 0, fmt.Errorf("%w: %d points of %d bytes need %d bytes, have %d",
			errs.ErrTruncatedPayload, n, size, n*size, len(payload))
	}

	dropped := 0
	for i := range n {
		if !c.PushChecked(layout.decode(payload[i*size : (i+1)*size])) {
			dropped++
		}
	}

	return n, dropped, nil
}

func decodeCompressed(c *cloud.Cloud, layout *Layout, payload []byte, n int) (int, int, error) {
	if len(payload) < compressedPreamble {
		return 0, 0, fmt.Errorf("%w: binary_compressed preamble needs %d bytes, have %d",
			errs.ErrTruncatedPayload, compressedPreamble, len(payload))
	}

	engine := endian.GetLittleEndianEngine()
	compressedSize := int(engine.Uint32(payload[0:4]))
	uncompressedSize := int(engine.Uint32(payload[4:8]))
	block := payload[compressedPreamble:]

	if compressedSize > len(block) {
		return 0, 0, fmt.Errorf("%w: compressed block of %d bytes, have %d",
			errs.ErrTruncatedPayload, compressedSize, len(block))
	}

	size := layout.RecordSize()
	if n > uncompressedSize/size || uncompressedSize != n*size {
		return 0, 0, fmt.Errorf("%w: uncompressed size %d, want %d points of %d bytes",
			errs.ErrSizeMismatch, uncompressedSize, n, size)
	}

	cols, err := compress.LZFDecompress(block[:compressedSize], uncompressedSize)
	if err != nil {
		return 0, 0, err
	}

	return decodeBinary(c, layout, layout.toRows(cols, n), n)
}

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// LZMACompressor wraps files in the classic LZMA stream format.
//
// It is the slowest outer codec and usually the smallest for ascii PCD files.
type LZMACompressor struct{}

var _ Codec = (*LZMACompressor)(nil)

// NewLZMACompressor creates a new LZMA compressor.
func NewLZMACompressor() LZMACompressor {
	return LZMACompressor{}
}

// Compress compresses the input data into an LZMA stream.
func (c LZMACompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma compression failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses an LZMA stream.
func (c LZMACompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lzma decompression failed: %w", err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzma decompression failed: %w", err)
	}

	return out, nil
}

package pointio

import (
	"time"

	"github.com/arloliu/pointio/compress"
	"github.com/arloliu/pointio/format"
)

// Report summarizes one Convert call.
type Report struct {
	Input        string
	Output       string
	InputFormat  format.FileFormat
	OutputFormat format.FileFormat

	// Points is the number of points decoded from the input.
	Points  int
	IsDense bool

	InputBytes  int64
	OutputBytes int64

	// Outer describes the outer compression of the output file, with
	// OriginalSize set to the encoded container size. DecompressionTimeNs
	// is filled when the input used the same outer compression.
	Outer compress.CompressionStats

	DecodeTime time.Duration
	EncodeTime time.Duration

	// Digest is the xxHash64 of the decoded points.
	Digest uint64
}

// Convert reads in and writes it to out. Formats and outer compression come
// from the file names.
//
// Parameters:
//   - in: Input path
//   - out: Output path; parent directories are created
//   - opts: Options passed to both the decoder and the encoder
//
// Returns:
//   - Report: Counts, sizes, timings and the point digest
//   - error: First read, encode or write error
func Convert(in, out string, opts ...Option) (Report, error) {
	r := Report{Input: in, Output: out}

	cfg, err := newConfig(opts...)
	if err != nil {
		return r, err
	}

	c, rst, err := readFile(in, cfg)
	if err != nil {
		return r, err
	}
	r.InputFormat = rst.format
	r.InputBytes = int64(rst.onDisk)
	r.DecodeTime = rst.duration
	r.Points = c.Len()
	r.IsDense = c.IsDense
	r.Digest = c.Digest()

	wst, err := writeFile(out, c, cfg)
	if err != nil {
		return r, err
	}
	r.OutputFormat = wst.format
	r.OutputBytes = int64(wst.onDisk)
	r.EncodeTime = wst.duration
	r.Outer = compress.CompressionStats{
		Algorithm:         wst.outer,
		OriginalSize:      int64(wst.encoded),
		CompressedSize:    int64(wst.onDisk),
		CompressionTimeNs: wst.outerTime.Nanoseconds(),
	}
	if rst.outer == wst.outer {
		r.Outer.DecompressionTimeNs = rst.outerTime.Nanoseconds()
	}

	cfg.logger.Infof("converted %s (%s) to %s (%s): %d points in %s",
		in, r.InputFormat, out, r.OutputFormat, r.Points, r.DecodeTime+r.EncodeTime)

	return r, nil
}

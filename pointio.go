// Package pointio converts point clouds between PCD and LAS files.
//
// pointio decodes either container into a cloud.Cloud, an ordered list of
// float32 XYZ positions with 8-bit RGB colors, and encodes a cloud back into
// either container.
//
// # Core Features
//
//   - PCD ascii, binary and binary_compressed (LZF) payloads
//   - LAS 1.2 to 1.4 with point data record formats 0 through 10
//   - Non-finite points are dropped on decode and tracked by the IsDense flag
//   - Optional outer file compression chosen by suffix: .zst, .sz, .lz4, .lzma
//   - Container independent xxHash64 digest of the decoded points
//
// # Basic Usage
//
// Converting a file:
//
//	report, err := pointio.Convert("scan.pcd", "scan.las")
//	fmt.Printf("%d points in %s\n", report.Points, report.DecodeTime+report.EncodeTime)
//
// Working in memory:
//
//	c, err := pointio.Decode(data, format.FormatPCD)
//	out, err := pointio.Encode(c, format.FormatLAS,
//	    pointio.WithLASOptions(las.WithPointFormat(2), las.WithScale(0.001, 0.001, 0.001)),
//	)
//
// # Package Structure
//
// This package provides thin wrappers over the pcd and las packages plus file
// handling. Use those packages directly for headers, per-record attributes,
// and codec specific options.
package pointio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/compress"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/las"
	"github.com/arloliu/pointio/pcd"
)

// outerSuffixes maps outer compression suffixes to their codecs.
var outerSuffixes = map[string]format.CompressionType{
	".zst":  format.CompressionZstd,
	".sz":   format.CompressionS2,
	".lz4":  format.CompressionLZ4,
	".lzma": format.CompressionLZMA,
}

// DetectFormat determines the container and outer compression of path from
// its suffixes, e.g. "scan.pcd", "scan.las.zst".
//
// Parameters:
//   - path: File name or path
//
// Returns:
//   - format.FileFormat: FormatPCD or FormatLAS
//   - format.CompressionType: Outer compression, CompressionNone without a compression suffix
//   - error: ErrUnknownFileFormat if the container extension is not recognized
func DetectFormat(path string) (format.FileFormat, format.CompressionType, error) {
	name := strings.ToLower(filepath.Base(path))

	ct := format.CompressionNone
	if c, ok := outerSuffixes[filepath.Ext(name)]; ok {
		ct = c
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	ff := format.ParseFileFormat(filepath.Ext(name))
	if ff == format.FormatUnknown {
		return ff, ct, fmt.Errorf("%w: %s", errs.ErrUnknownFileFormat, path)
	}

	return ff, ct, nil
}

// Decode decodes a complete container file held in memory.
//
// Parameters:
//   - data: File contents, without outer compression
//   - ff: Container format
//   - opts: Options; only WithPCDOptions, WithLASOptions and WithLogger apply
//
// Returns:
//   - *cloud.Cloud: Decoded points
//   - error: Codec error, or ErrUnknownFileFormat
func Decode(data []byte, ff format.FileFormat, opts ...Option) (*cloud.Cloud, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return decode(data, ff, cfg)
}

func decode(data []byte, ff format.FileFormat, cfg *Config) (*cloud.Cloud, error) {
	switch ff {
	case format.FormatPCD:
		c, _, err := pcd.Decode(data, cfg.pcdOpts()...)
		return c, err
	case format.FormatLAS:
		c, _, err := las.Decode(data, cfg.lasOpts()...)
		return c, err
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownFileFormat, ff)
	}
}

// Encode encodes c as a complete container file.
//
// Parameters:
//   - c: Cloud to encode
//   - ff: Container format
//   - opts: Options; only WithPCDOptions, WithLASOptions and WithLogger apply
//
// Returns:
//   - []byte: File contents owned by the caller
//   - error: Codec error, or ErrUnknownFileFormat
func Encode(c *cloud.Cloud, ff format.FileFormat, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return encode(c, ff, cfg)
}

func encode(c *cloud.Cloud, ff format.FileFormat, cfg *Config) ([]byte, error) {
	switch ff {
	case format.FormatPCD:
		return pcd.Encode(c, cfg.pcdOpts()...)
	case format.FormatLAS:
		return las.Encode(c, cfg.lasOpts()...)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownFileFormat, ff)
	}
}

// ReadFile reads and decodes the file at path. The container and outer
// compression are taken from the file name, see DetectFormat.
func ReadFile(path string, opts ...Option) (*cloud.Cloud, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	c, _, err := readFile(path, cfg)

	return c, err
}

// fileStats describes the bytes moved by one read or write.
type fileStats struct {
	format    format.FileFormat
	encoded   int // container bytes before outer compression
	onDisk    int
	outer     format.CompressionType
	outerTime time.Duration
	duration  time.Duration
}

func readFile(path string, cfg *Config) (*cloud.Cloud, fileStats, error) {
	start := time.Now()

	ff, ct, err := DetectFormat(path)
	if err != nil {
		return nil, fileStats{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fileStats{}, err
	}

	data := raw
	var outerTime time.Duration
	if ct != format.CompressionNone {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return nil, fileStats{}, err
		}
		t0 := time.Now()
		if data, err = codec.Decompress(raw); err != nil {
			return nil, fileStats{}, fmt.Errorf("%s: %w", path, err)
		}
		outerTime = time.Since(t0)
	}

	c, err := decode(data, ff, cfg)
	if err != nil {
		return nil, fileStats{}, fmt.Errorf("%s: %w", path, err)
	}

	st := fileStats{format: ff, encoded: len(data), onDisk: len(raw), outer: ct, outerTime: outerTime, duration: time.Since(start)}
	cfg.logger.Debugf("read %s: %d points, %d bytes on disk", path, c.Len(), st.onDisk)

	return c, st, nil
}

// WriteFile encodes c and writes it to path, creating parent directories.
// The container and outer compression come from the file name unless
// WithCompression overrides the latter.
//
// Returns:
//   - int: Bytes written
//   - error: Encoding, compression or I/O error
func WriteFile(path string, c *cloud.Cloud, opts ...Option) (int, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return 0, err
	}

	st, err := writeFile(path, c, cfg)

	return st.onDisk, err
}

func writeFile(path string, c *cloud.Cloud, cfg *Config) (fileStats, error) {
	start := time.Now()

	ff, ct, err := DetectFormat(path)
	if err != nil {
		return fileStats{}, err
	}
	if cfg.compression != 0 {
		ct = cfg.compression
	}

	data, err := encode(c, ff, cfg)
	if err != nil {
		return fileStats{}, err
	}
	encoded := len(data)

	var outerTime time.Duration
	if ct != format.CompressionNone {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return fileStats{}, err
		}
		t0 := time.Now()
		if data, err = codec.Compress(data); err != nil {
			return fileStats{}, err
		}
		outerTime = time.Since(t0)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fileStats{}, err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fileStats{}, err
	}

	st := fileStats{format: ff, encoded: encoded, onDisk: len(data), outer: ct, outerTime: outerTime, duration: time.Since(start)}
	cfg.logger.Debugf("wrote %s: %d points, %d bytes on disk", path, c.Len(), st.onDisk)

	return st, nil
}

// Digest returns the container independent xxHash64 of c's points.
// Lossless conversions keep it unchanged.
func Digest(c *cloud.Cloud) uint64 {
	return c.Digest()
}

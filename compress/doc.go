// Package compress provides the block codecs used by pointio.
//
// There are two layers of compression in a point cloud file handled by this module:
//
//  1. **Container compression**: PCD binary_compressed payloads are LZF blocks.
//     LZF is part of the PCD format and is always used for that encoding.
//  2. **Outer compression**: a whole PCD or LAS file may be wrapped by a
//     general purpose codec chosen from the file name suffix (.zst, .sz, .lz4, .lzma).
//
// # Architecture
//
// The package defines the same small interfaces for every algorithm:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// LZF blocks do not record their decoded size, so the LZF codec also implements
// SizedCodec, whose DecompressSize bounds the output and rejects blocks that
// decode to a different length.
//
// # Supported Algorithms
//
// **LZF** (format.CompressionLZF)
//
//	compressed := compress.LZFCompress(records)
//	records, err := compress.LZFDecompress(compressed, len(records))
//
// The encoder performs greedy longest-match search over an 8 KiB window
// using a hash table of 3-byte prefixes. Incompressible input grows by at
// most one byte per 32.
//
// **Zstandard** (format.CompressionZstd): best ratio, pure Go by default,
// libzstd with the cgo_zstd build tag.
//
// **S2** (format.CompressionS2): fast block compression.
//
// **LZ4** (format.CompressionLZ4): LZ4 frames, fastest decompression.
//
// **LZMA** (format.CompressionLZMA): slowest, smallest for text payloads.
//
// **NoOp** (format.CompressionNone): pass-through.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Zstd and LZ4
// keep pooled encoder and decoder state internally.
//
// # Error Handling
//
// LZF failures wrap errs.ErrCorruptPayload or errs.ErrSizeMismatch. The other
// codecs wrap the underlying library error with the algorithm name.
package compress

package compress

// ZstdCompressor provides Zstandard compression for whole point cloud files.
//
// It gives the best ratio of the outer codecs and suits archived LAS and PCD
// files. The default build uses the pure Go klauspost/compress implementation;
// building with the cgo_zstd tag switches to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

package compress

import (
	"bytes"
	"testing"

	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/stretchr/testify/require"
)

func allCompressionTypes() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionLZF,
		format.CompressionLZMA,
	}
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range allCompressionTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "test")
			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}

	_, err := CreateCodec(format.CompressionType(0xff), "test")
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestGetCodec(t *testing.T) {
	for _, ct := range allCompressionTypes() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"pcd header": []byte("VERSION 0.7\nFIELDS x y z rgb\nSIZE 4 4 4 4\nTYPE F F F U\nCOUNT 1 1 1 1\n"),
		"records":    bytes.Repeat([]byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40, 0, 0, 0x40, 0x40, 0x40, 0x80, 0xff, 0}, 4096),
		"single":     {0x42},
	}

	for _, ct := range allCompressionTypes() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				out, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, payload, out)
			})
		}
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionS2, format.CompressionLZ4, format.CompressionZstd, format.CompressionLZMA} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		out, err := codec.Decompress(nil)
		require.NoError(t, err, ct.String())
		require.Empty(t, out)
	}
}

func TestCodecs_CorruptInput(t *testing.T) {
	garbage := []byte("this is not a compressed stream at all")

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, ct.String())
	}
}

func TestNoOpCompressor_SharesMemory(t *testing.T) {
	data := []byte{1, 2, 3}
	out, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)

	out[0] = 9
	require.Equal(t, byte(9), data[0])
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name    string
		stats   CompressionStats
		ratio   float64
		savings float64
	}{
		{"half", CompressionStats{Algorithm: format.CompressionLZF, OriginalSize: 1000, CompressedSize: 500}, 0.5, 50},
		{"no gain", CompressionStats{OriginalSize: 100, CompressedSize: 100}, 1.0, 0},
		{"empty", CompressionStats{}, 0, 100},
		{"grew", CompressionStats{OriginalSize: 100, CompressedSize: 125}, 1.25, -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.ratio, tt.stats.CompressionRatio(), 1e-9)
			require.InDelta(t, tt.savings, tt.stats.SpaceSavings(), 1e-9)
		})
	}
}

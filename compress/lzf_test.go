package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/arloliu/pointio/errs"
	"github.com/stretchr/testify/require"
)

func lzfTestInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 10000)
	rng.Read(random)

	pattern := bytes.Repeat([]byte("x y z rgb 1.25 -3.5 "), 500)

	// float records with slowly varying coordinates, like a sorted scan line
	records := make([]byte, 0, 16*2000)
	for i := range 2000 {
		records = append(records, byte(i), byte(i>>8), 0x20, 0x41, 0, 0, 0x80, 0x3f, 0, 0, 0, 0x40, 0x40, 0x80, 0xff, 0)
	}

	return map[string][]byte{
		"empty":       {},
		"single byte": {7},
		"five bytes":  {1, 2, 3, 4, 5},
		"zeros":       make([]byte, 5000),
		"pattern":     pattern,
		"random":      random,
		"records":     records,
		"long run":    bytes.Repeat([]byte{0xab}, 100000),
		"exactly 32":  bytes.Repeat([]byte{1, 2, 3, 4}, 8)[:32],
		"33 literals": []byte("abcdefghijklmnopqrstuvwxyz0123456"),
	}
}

func TestLZF_RoundTrip(t *testing.T) {
	for name, input := range lzfTestInputs() {
		t.Run(name, func(t *testing.T) {
			compressed := LZFCompress(input)

			out, err := LZFDecompress(compressed, len(input))
			require.NoError(t, err)
			require.Len(t, out, len(input))
			require.True(t, bytes.Equal(input, out))

			unbounded, err := NewLZFCompressor().Decompress(compressed)
			require.NoError(t, err)
			require.True(t, bytes.Equal(input, unbounded))
		})
	}
}

func TestLZF_FiveBytes(t *testing.T) {
	input := []byte{1, 2, 3, 4, 5}
	compressed := LZFCompress(input)
	require.Equal(t, []byte{4, 1, 2, 3, 4, 5}, compressed)

	out, err := LZFDecompress(compressed, 5)
	require.NoError(t, err)
	require.Equal(t, input, out)
}

func TestLZF_CompressesRepetitiveData(t *testing.T) {
	input := make([]byte, 64*1024)
	compressed := LZFCompress(input)
	require.Less(t, len(compressed), len(input)/50)

	pattern := bytes.Repeat([]byte("0.125 4.5 -2 16711680\n"), 1000)
	require.Less(t, len(LZFCompress(pattern)), len(pattern)/10)
}

func TestLZF_IncompressibleBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	input := make([]byte, 4096)
	rng.Read(input)

	compressed := LZFCompress(input)
	require.LessOrEqual(t, len(compressed), len(input)+len(input)/32+1)
}

func TestLZFDecompress_LiteralOnlyStream(t *testing.T) {
	// literal runs of 31 bytes, the shape written by literal-only encoders
	input := make([]byte, 100)
	for i := range input {
		input[i] = byte(i * 3)
	}

	var stream []byte
	for off := 0; off < len(input); off += 31 {
		end := min(off+31, len(input))
		stream = append(stream, byte(end-off-1))
		stream = append(stream, input[off:end]...)
	}

	out, err := LZFDecompress(stream, len(input))
	require.NoError(t, err)
	require.Equal(t, input, out)
}

func TestLZFDecompress_OverlappingBackReference(t *testing.T) {
	// literal "ab" then copy 8 bytes from distance 2
	stream := []byte{1, 'a', 'b', 6<<5 | 0, 1}

	out, err := LZFDecompress(stream, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("ababababab"), out)
}

func TestLZFDecompress_ExtendedLength(t *testing.T) {
	// literal "z" then copy 7+3+2 = 12 bytes from distance 1
	stream := []byte{0, 'z', 7 << 5, 3, 0}

	out, err := LZFDecompress(stream, 13)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{'z'}, 13), out)
}

func TestLZFDecompress_Failures(t *testing.T) {
	tests := []struct {
		name     string
		stream   []byte
		expected int
		err      error
	}{
		{"truncated literal", []byte{4, 1, 2}, 5, errs.ErrCorruptPayload},
		{"missing distance byte", []byte{0, 'a', 1 << 5}, 4, errs.ErrCorruptPayload},
		{"missing length extension", []byte{0, 'a', 7 << 5}, 12, errs.ErrCorruptPayload},
		{"reference before start", []byte{0, 'a', 1 << 5, 5}, 4, errs.ErrCorruptPayload},
		{"literal overflow", []byte{4, 1, 2, 3, 4, 5}, 3, errs.ErrCorruptPayload},
		{"reference overflow", []byte{0, 'a', 6 << 5, 0}, 4, errs.ErrCorruptPayload},
		{"short output", []byte{1, 'a', 'b'}, 3, errs.ErrSizeMismatch},
		{"negative size", []byte{}, -1, errs.ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := LZFDecompress(tt.stream, tt.expected)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, out)
		})
	}
}

func TestLZFCompressor_DecompressSize(t *testing.T) {
	codec := NewLZFCompressor()
	input := bytes.Repeat([]byte("pointio"), 300)

	compressed, err := codec.Compress(input)
	require.NoError(t, err)

	out, err := codec.DecompressSize(compressed, len(input))
	require.NoError(t, err)
	require.Equal(t, input, out)

	_, err = codec.DecompressSize(compressed, len(input)+1)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func BenchmarkLZFCompress(b *testing.B) {
	input := lzfTestInputs()["records"]
	b.SetBytes(int64(len(input)))

	for b.Loop() {
		_ = LZFCompress(input)
	}
}

func BenchmarkLZFDecompress(b *testing.B) {
	input := lzfTestInputs()["records"]
	compressed := LZFCompress(input)
	b.SetBytes(int64(len(input)))

	for b.Loop() {
		_, _ = LZFDecompress(compressed, len(input))
	}
}

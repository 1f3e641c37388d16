package las

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/endian"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/stretchr/testify/require"
)

func twoPointCloud() *cloud.Cloud {
	return cloud.FromPoints([]cloud.Point{
		{X: 1, Y: 2, Z: 3, Color: cloud.UnpackRGB(0xFF8040)},
		{X: 4, Y: 5, Z: 6, Color: cloud.UnpackRGB(0x00FF00)},
	})
}

func TestEncodeDecode_Defaults(t *testing.T) {
	data, err := Encode(twoPointCloud(), WithCreationTime(fixedTime))
	require.NoError(t, err)
	require.Len(t, data, HeaderSize13+2*34)

	c, h, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, format.PointFormat(3), h.PointFormat)
	require.Equal(t, 2, c.Len())
	require.True(t, c.IsDense)
	require.Equal(t, uint32(2), c.Width)
	require.Equal(t, uint32(1), c.Height)

	src := twoPointCloud()
	for i, p := range c.Points {
		require.InDelta(t, src.Points[i].X, p.X, 0.01)
		require.InDelta(t, src.Points[i].Y, p.Y, 0.01)
		require.InDelta(t, src.Points[i].Z, p.Z, 0.01)
		require.Equal(t, src.Points[i].Color, p.Color)
	}
}

func TestEncodeDecode_AllFormats(t *testing.T) {
	src := cloud.New(500)
	rng := rand.New(rand.NewSource(3))
	for range 500 {
		src.Push(cloud.Point{
			X:     float32(rng.Float64()*2000 - 1000),
			Y:     float32(rng.Float64() * 100),
			Z:     float32(rng.NormFloat64()),
			Color: cloud.UnpackRGB(rng.Uint32()),
		})
	}

	for pf := format.PointFormat(0); pf <= format.MaxPointFormat; pf++ {
		minor := max(pf.MinVersionMinor(), 2)

		t.Run(fmt.Sprintf("format_%d_v1.%d", pf, minor), func(t *testing.T) {
			data, err := Encode(src, WithPointFormat(pf), WithVersion(minor), WithScale(0.001, 0.001, 0.001))
			require.NoError(t, err)
			require.Len(t, data, HeaderSizeFor(minor)+src.Len()*int(pf.RecordLength()))

			c, h, err := Decode(data)
			require.NoError(t, err)
			require.Equal(t, uint64(src.Len()), h.PointCount())
			require.Equal(t, src.Len(), c.Len())

			for i, p := range c.Points {
				want := src.Points[i]
				require.InDelta(t, want.X, p.X, 0.001)
				require.InDelta(t, want.Y, p.Y, 0.001)
				require.InDelta(t, want.Z, p.Z, 0.001)
				if pf.HasColor() {
					require.Equal(t, want.Color, p.Color)
				} else {
					require.Equal(t, cloud.White, p.Color)
				}
			}
		})
	}
}

func TestEncode_Options(t *testing.T) {
	data, err := Encode(twoPointCloud(),
		WithVersion(4),
		WithPointFormat(7),
		WithSystemIdentifier("rig"),
		WithGeneratingSoftware("converter"),
		WithCreationTime(fixedTime),
	)
	require.NoError(t, err)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, "1.4", h.Version())
	require.Equal(t, uint16(HeaderSize14), h.HeaderSize)
	require.Equal(t, uint32(HeaderSize14), h.OffsetToPointData)
	require.Equal(t, format.PointFormat(7), h.PointFormat)
	require.Equal(t, "rig", h.SystemIdentifier)
	require.Equal(t, "converter", h.GeneratingSoftware)
	require.Zero(t, h.LegacyPointCount)
	require.Equal(t, uint64(2), h.PointCount64)
}

func TestEncode_AutoOffset(t *testing.T) {
	far := cloud.FromPoints([]cloud.Point{
		cloud.NewPoint(3e7, -3e7, 100),
		cloud.NewPoint(3e7+2, -3e7+4, 101.5),
	})

	_, err := Encode(far, WithScale(0.001, 0.001, 0.001))
	require.ErrorIs(t, err, errs.ErrCoordinateOutOfRange)

	data, err := Encode(far, WithScale(0.001, 0.001, 0.001), WithAutoOffset())
	require.NoError(t, err)

	c, h, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 3e7, h.Offset.X)
	require.Equal(t, -3e7, h.Offset.Y)
	require.Equal(t, 100.0, h.Offset.Z)
	require.Equal(t, far.Points, c.Points)
}

func TestSnapOffset(t *testing.T) {
	tests := []struct {
		lo, scale, want float64
	}{
		{12.34, 0.01, 12.34},
		{12.345, 0.01, 12.34},
		{-0.005, 0.01, -0.01},
		{0, 0.001, 0},
		{1234567.891, 1, 1234567},
		{math.Inf(-1), 0.01, 0},
		{math.NaN(), 0.01, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g_%g", tt.lo, tt.scale), func(t *testing.T) {
			require.Equal(t, tt.want, snapOffset(tt.lo, tt.scale))
		})
	}
}

func TestEncode_SkipsNonFinite(t *testing.T) {
	src := cloud.FromPoints([]cloud.Point{
		cloud.NewPoint(1, 1, 1),
		cloud.NewPoint(float32(math.NaN()), 0, 0),
		cloud.NewPoint(2, 2, 2),
	})

	data, err := Encode(src)
	require.NoError(t, err)

	c, h, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint64(2), h.PointCount())
	require.Equal(t, 2, c.Len())
	require.True(t, c.IsDense)

	_, err = Encode(cloud.FromPoints([]cloud.Point{cloud.NewPoint(0, float32(math.Inf(-1)), 0)}))
	require.ErrorIs(t, err, errs.ErrEmptyCloud)
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode(cloud.New(0))
	require.ErrorIs(t, err, errs.ErrEmptyCloud)

	_, err = EncodeRecords(nil)
	require.ErrorIs(t, err, errs.ErrEmptyCloud)

	nonFinite := []struct {
		name string
		opts []Option
	}{
		{"fixed offset", nil},
		{"auto offset", []Option{WithAutoOffset()}},
	}
	for _, tt := range nonFinite {
		t.Run("non-finite record "+tt.name, func(t *testing.T) {
			for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				records := []PointRecord{{X: 1, Y: 2, Z: 3}, {X: bad, Y: 2, Z: 3}}
				require.NotPanics(t, func() {
					_, err := EncodeRecords(records, tt.opts...)
					require.ErrorIs(t, err, errs.ErrCoordinateOutOfRange)
					require.ErrorContains(t, err, "point 1")
				})
			}
		})
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"format", []Option{WithPointFormat(11)}},
		{"version low", []Option{WithVersion(1)}},
		{"version high", []Option{WithVersion(5)}},
		{"format needs 1.4", []Option{WithPointFormat(6)}},
		{"format needs 1.3", []Option{WithVersion(2), WithPointFormat(4)}},
		{"zero scale", []Option{WithScale(0.01, 0, 0.01)}},
		{"nan scale", []Option{WithScale(math.NaN(), 0.01, 0.01)}},
		{"inf offset", []Option{WithOffset(0, math.Inf(1), 0)}},
		{"system id", []Option{WithSystemIdentifier("a system identifier longer than 32")}},
		{"software", []Option{WithGeneratingSoftware("a software name that is longer than 32")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(twoPointCloud(), tt.opts...)
			require.ErrorIs(t, err, errs.ErrInvalidOption)
		})
	}
}

func TestDecode_PointCountSelection(t *testing.T) {
	data, err := Encode(twoPointCloud(), WithVersion(4))
	require.NoError(t, err)

	// legacy count disagrees with the 64-bit count
	data[107] = 9

	c, h, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint32(9), h.LegacyPointCount)
	require.Equal(t, 2, c.Len())

	// the same disagreement in a 1.3 file reads the legacy count
	data, err = Encode(twoPointCloud(), WithVersion(3))
	require.NoError(t, err)
	data[107] = 1

	c, _, err = Decode(data)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
}

func TestDecode_RecordPadding(t *testing.T) {
	records := sampleRecords()
	h := NewHeader(records, nil)
	h.PointRecordLength = 50

	l, err := NewRecordLayout(h.PointFormat, int(h.PointRecordLength), h.Transform())
	require.NoError(t, err)

	data := h.Bytes()
	for i := range records {
		data, err = l.Append(data, &records[i])
		require.NoError(t, err)
	}

	c, _, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	require.Equal(t, float32(-4), c.Points[1].X)
}

func TestDecode_DropsNonFinite(t *testing.T) {
	records := []PointRecord{
		NewPointRecord(cloud.NewPoint(0, 1, 1)),
		NewPointRecord(cloud.NewPoint(1, 2, 2)),
		NewPointRecord(cloud.NewPoint(0, 3, 3)),
	}
	data, err := EncodeRecords(records, WithScale(1, 1, 1))
	require.NoError(t, err)

	// a huge X scale overflows float32 for every point with a non-zero X
	endian.PutFloat64(endian.GetLittleEndianEngine(), data[131:], 1e300)

	logger := &countingLogger{}
	c, _, err := Decode(data, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	require.False(t, c.IsDense)
	require.Equal(t, uint32(3), c.Width)
	require.Equal(t, float32(3), c.Points[1].Y)
	require.Equal(t, 1, logger.warnings)
}

type countingLogger struct {
	warnings int
}

func (l *countingLogger) Debugf(string, ...any) {}
func (l *countingLogger) Infof(string, ...any)  {}
func (l *countingLogger) Warnf(string, ...any)  { l.warnings++ }
func (l *countingLogger) Errorf(string, ...any) {}

func TestDecode_Errors(t *testing.T) {
	data, err := Encode(twoPointCloud())
	require.NoError(t, err)

	farOffset := append([]byte(nil), data...)
	farOffset[96+3] = 0x10

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"truncated records", data[:len(data)-1], errs.ErrTruncatedPayload},
		{"offset past end", farOffset, errs.ErrTruncatedPayload},
		{"not las", []byte("# .PCD v0.7"), errs.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, c)
		})
	}
}

func TestEncodeDecodeRecords(t *testing.T) {
	in := sampleRecords()
	in[0].Intensity = 777
	in[0].Classification = 6
	in[0].GPSTime = 42.25
	in[0].NIR = 1000
	in[1].SetReturnInfo(2, 2, false, false)
	in[1].UserData = 3

	data, err := EncodeRecords(in, WithVersion(4), WithPointFormat(8))
	require.NoError(t, err)

	out, h, err := DecodeRecords(data)
	require.NoError(t, err)
	require.Equal(t, format.PointFormat(8), h.PointFormat)
	require.Len(t, out, 2)

	for i := range in {
		require.InDelta(t, in[i].X, out[i].X, 0.01)
		require.InDelta(t, in[i].Y, out[i].Y, 0.01)
		require.InDelta(t, in[i].Z, out[i].Z, 0.01)
		out[i].X, out[i].Y, out[i].Z = in[i].X, in[i].Y, in[i].Z
	}
	require.Equal(t, in, out)
}

func BenchmarkEncode(b *testing.B) {
	src := cloud.New(100_000)
	for i := range 100_000 {
		src.Push(cloud.NewPoint(float32(i)*0.01, float32(i%100), 5))
	}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Encode(src)
	}
}

func BenchmarkDecode(b *testing.B) {
	src := cloud.New(100_000)
	for i := range 100_000 {
		src.Push(cloud.NewPoint(float32(i)*0.01, float32(i%100), 5))
	}
	data, err := Encode(src)
	require.NoError(b, err)

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = Decode(data)
	}
}

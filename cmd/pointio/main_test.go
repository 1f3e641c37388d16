package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/pointio"
	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/hash"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *cliFlags {
	t.Helper()

	fs := flag.NewFlagSet("pointio", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f, err := parseFlags(fs, args, 2)
	require.NoError(t, err)

	return f
}

func sampleCloud() *cloud.Cloud {
	c := cloud.New(64)
	for i := range 64 {
		c.Push(cloud.Point{
			X:     float32(i) * 0.25,
			Y:     float32(i%8) * 0.5,
			Z:     float32(i/8) + 0.75,
			Color: cloud.RGB{R: uint8(i * 4), G: 200, B: uint8(i % 5)},
		})
	}

	return c
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestParseFlags(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		f := testFlags(t, "scan.pcd")
		require.Equal(t, []string{"scan.pcd"}, f.Inputs)
		require.Empty(t, *f.Output)
		require.Equal(t, "binary", *f.Variant)
		require.Equal(t, 3, *f.LASFormat)
		require.Equal(t, 0.01, *f.Scale)
		require.Equal(t, 2, *f.Workers)
		require.False(t, *f.Info)
	})

	t.Run("ShortHands", func(t *testing.T) {
		f := testFlags(t, "-o", "out.las", "-f", "las", "-i", "-s", "-w", "3", "-V", "in.pcd")
		require.Equal(t, "out.las", *f.Output)
		require.Equal(t, "las", *f.Format)
		require.True(t, *f.Info)
		require.True(t, *f.Stats)
		require.True(t, *f.Verbose)
		require.Equal(t, 3, *f.Workers)
	})

	t.Run("LongNames", func(t *testing.T) {
		f := testFlags(t, "-output", "out.pcd", "-variant", "compressed", "-las-format", "7", "-scale", "0.001", "in.las")
		require.Equal(t, "out.pcd", *f.Output)
		require.Equal(t, "compressed", *f.Variant)
		require.Equal(t, 7, *f.LASFormat)
		require.Equal(t, 0.001, *f.Scale)
	})

	t.Run("Help", func(t *testing.T) {
		f := testFlags(t, "-h")
		require.True(t, *f.Help)
	})
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"NoInput", nil},
		{"UnknownFormat", []string{"-f", "ply", "in.pcd"}},
		{"UnknownVariant", []string{"-variant", "binary_lzma", "in.pcd"}},
		{"PointFormatTooLarge", []string{"-las-format", "11", "in.pcd"}},
		{"NegativePointFormat", []string{"-las-format", "-1", "in.pcd"}},
		{"ZeroScale", []string{"-scale", "0", "in.pcd"}},
		{"NoWorkers", []string{"-w", "0", "in.pcd"}},
		{"UndefinedFlag", []string{"-nope", "in.pcd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("pointio", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			_, err := parseFlags(fs, tt.args, 1)
			require.Error(t, err)
		})
	}
}

func TestSwapExtension(t *testing.T) {
	tests := []struct {
		in   string
		ff   format.FileFormat
		want string
	}{
		{"scan.pcd", format.FormatLAS, "scan.las"},
		{"dir/scan.LAS", format.FormatPCD, "dir/scan.pcd"},
		{"dir/scan.pcd.zst", format.FormatLAS, "dir/scan.las.zst"},
		{"a.b/scan.las.lzma", format.FormatPCD, "a.b/scan.pcd.lzma"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, swapExtension(tt.in, tt.ff))
		})
	}
}

func TestPlanSingle(t *testing.T) {
	t.Run("OtherContainer", func(t *testing.T) {
		j, err := planSingle("scan.pcd", "", "")
		require.NoError(t, err)
		require.Equal(t, job{Input: "scan.pcd", Output: "scan.las", Format: format.FormatLAS}, j)
	})

	t.Run("FormatFlag", func(t *testing.T) {
		j, err := planSingle("scan.pcd.sz", "", "las")
		require.NoError(t, err)
		require.Equal(t, "scan.las.sz", j.Output)
		require.Equal(t, format.FormatLAS, j.Format)
	})

	t.Run("OutputExtensionWins", func(t *testing.T) {
		j, err := planSingle("scan.pcd", "out/x.las.zst", "pcd")
		require.NoError(t, err)
		require.Equal(t, "out/x.las.zst", j.Output)
		require.Equal(t, format.FormatLAS, j.Format)
	})

	t.Run("SameFile", func(t *testing.T) {
		_, err := planSingle("scan.las", "", "las")
		require.Error(t, err)
	})

	t.Run("UnknownInput", func(t *testing.T) {
		_, err := planSingle("scan.ply", "", "")
		require.ErrorIs(t, err, errs.ErrUnknownFileFormat)
	})

	t.Run("UnknownOutput", func(t *testing.T) {
		_, err := planSingle("scan.pcd", "scan.ply", "")
		require.ErrorIs(t, err, errs.ErrUnknownFileFormat)
	})
}

func TestPlanFolder(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pcd"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "b.las.zst"))

	t.Run("TopLevelOnly", func(t *testing.T) {
		jobs, err := planFolder(root, "", "", false)
		require.NoError(t, err)
		require.Equal(t, []job{
			{Input: filepath.Join(root, "a.pcd"), Output: filepath.Join(root, "a.las"), Format: format.FormatLAS},
		}, jobs)
	})

	t.Run("RecursiveIntoOutDir", func(t *testing.T) {
		out := filepath.Join(root, "converted")
		jobs, err := planFolder(root, out, "", true)
		require.NoError(t, err)
		require.Equal(t, []job{
			{Input: filepath.Join(root, "a.pcd"), Output: filepath.Join(out, "a.las"), Format: format.FormatLAS},
			{Input: filepath.Join(root, "sub", "b.las.zst"), Output: filepath.Join(out, "sub", "b.pcd.zst"), Format: format.FormatPCD},
		}, jobs)
	})

	t.Run("SkipsSameFormatInPlace", func(t *testing.T) {
		jobs, err := planFolder(root, "", "pcd", true)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, filepath.Join(root, "sub", "b.pcd.zst"), jobs[0].Output)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		_, err := planFolder(filepath.Join(root, "missing"), "", "", false)
		require.Error(t, err)
	})
}

func TestRunJobs(t *testing.T) {
	errOdd := errors.New("odd job")

	jobs := make([]job, 10)
	for i := range jobs {
		jobs[i] = job{Input: string(rune('a' + i))}
	}

	results, err := runJobs(jobs, 3, func(j job) (pointio.Report, error) {
		if (j.Input[0]-'a')%2 == 1 {
			return pointio.Report{}, errOdd
		}
		return pointio.Report{Input: j.Input, Points: int(j.Input[0] - 'a')}, nil
	})
	require.ErrorIs(t, err, errOdd)
	require.Len(t, results, 5)
	for i, r := range results {
		require.Equal(t, jobs[2*i].Input, r.job.Input)
		require.Equal(t, 2*i, r.report.Points)
	}

	results, err = runJobs(jobs[:1], 4, func(j job) (pointio.Report, error) {
		return pointio.Report{Input: j.Input}, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestRun_ConvertAndDescribe(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pcd")
	_, err := pointio.WriteFile(in, sampleCloud())
	require.NoError(t, err)

	out := filepath.Join(dir, "out", "scan.las.zst")
	var buf bytes.Buffer
	require.NoError(t, run(testFlags(t, "-o", out, in), &buf))
	require.Contains(t, buf.String(), "64 points")
	require.Contains(t, buf.String(), "Zstd")

	converted, err := pointio.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, pointio.Digest(sampleCloud()), pointio.Digest(converted))

	buf.Reset()
	require.NoError(t, run(testFlags(t, "-i", "-s", out), &buf))
	text := buf.String()
	require.Contains(t, text, "format:      LAS")
	require.Contains(t, text, "compression: Zstd")
	require.Contains(t, text, "points:      64")
	require.Contains(t, text, "dense:       true")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, text, fmt.Sprintf("file xxh64:  %016x", hash.Bytes(raw)))
	require.Contains(t, text, fmt.Sprintf("digest:      %016x", pointio.Digest(converted)))
	require.Contains(t, text, "min:         (0.0000, 0.0000, 0.7500)")
	require.Contains(t, text, "max:         (15.7500, 3.5000, 7.7500)")
}

func TestRun_Folder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pcd", "b.pcd", "c.pcd.lz4"} {
		_, err := pointio.WriteFile(filepath.Join(dir, name), sampleCloud())
		require.NoError(t, err)
	}

	out := filepath.Join(dir, "las")
	var buf bytes.Buffer
	require.NoError(t, run(testFlags(t, "-o", out, "-las-format", "8", dir), &buf))

	for _, name := range []string{"a.las", "b.las", "c.las.lz4"} {
		c, err := pointio.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		require.Equal(t, 64, c.Len())
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pcd")
	require.NoError(t, os.WriteFile(bad, []byte("not a pcd file\n"), 0o644))

	var buf bytes.Buffer
	err := run(testFlags(t, bad), &buf)
	require.ErrorIs(t, err, errs.ErrMalformedHeader)

	err = run(testFlags(t, "-i", filepath.Join(dir, "missing.las")), &buf)
	require.ErrorIs(t, err, os.ErrNotExist)
}

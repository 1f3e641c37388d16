package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arloliu/pointio"
	"github.com/arloliu/pointio/format"
)

// job is one input file and the path it converts to.
type job struct {
	Input  string
	Output string
	Format format.FileFormat
}

// findPointClouds returns the PCD and LAS files under root, including
// outer-compressed ones such as scan.las.zst. Subfolders are visited only
// when recursive is set.
func findPointClouds(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if _, _, err := pointio.DetectFormat(path); err == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}

// otherFormat returns the container a file converts to by default.
func otherFormat(ff format.FileFormat) format.FileFormat {
	if ff == format.FormatPCD {
		return format.FormatLAS
	}

	return format.FormatPCD
}

// swapExtension replaces the container extension of path with ff's, keeping
// any outer compression suffix: scan.pcd.zst becomes scan.las.zst.
func swapExtension(path string, ff format.FileFormat) string {
	outer := ""
	if _, ct, _ := pointio.DetectFormat(path); ct != format.CompressionNone {
		outer = filepath.Ext(path)
		path = strings.TrimSuffix(path, outer)
	}

	return strings.TrimSuffix(path, filepath.Ext(path)) + ff.Extension() + outer
}

// planSingle resolves the output of a single file conversion. The output
// format comes from the -output extension, then -format, then the other
// container.
func planSingle(input, output, flagFormat string) (job, error) {
	inFormat, _, err := pointio.DetectFormat(input)
	if err != nil {
		return job{}, err
	}

	if output != "" {
		ff, _, err := pointio.DetectFormat(output)
		if err != nil {
			return job{}, fmt.Errorf("output %s: %w", output, err)
		}
		return job{Input: input, Output: output, Format: ff}, nil
	}

	ff := otherFormat(inFormat)
	if flagFormat != "" {
		ff = format.ParseFileFormat(flagFormat)
	}

	out := swapExtension(input, ff)
	if strings.EqualFold(out, input) {
		return job{}, fmt.Errorf("%s is already %s, set -output", input, ff)
	}

	return job{Input: input, Output: out, Format: ff}, nil
}

// planFolder builds one job per point cloud under root. Outputs mirror the
// folder structure below outDir, or sit next to their inputs when outDir is
// empty. An input whose output would overwrite it is skipped.
func planFolder(root, outDir, flagFormat string, recursive bool) ([]job, error) {
	files, err := findPointClouds(root, recursive)
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(files))
	for _, in := range files {
		inFormat, _, _ := pointio.DetectFormat(in)

		ff := otherFormat(inFormat)
		if flagFormat != "" {
			ff = format.ParseFileFormat(flagFormat)
		}
		if ff == inFormat && outDir == "" {
			continue
		}

		out := swapExtension(in, ff)
		if outDir != "" {
			rel, err := filepath.Rel(root, out)
			if err != nil {
				return nil, err
			}
			out = filepath.Join(outDir, rel)
		}
		jobs = append(jobs, job{Input: in, Output: out, Format: ff})
	}

	return jobs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Command pointio converts point clouds between PCD and LAS files.
//
// Usage:
//
//	pointio [flags] <input>...
//
// An input may be a file or a folder. Folders are converted in parallel,
// one file per worker. Outer compression follows the file names, so
// "pointio -o scan.las.zst scan.pcd" writes a zstd compressed LAS file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/arloliu/pointio"
	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/hash"
	"github.com/arloliu/pointio/las"
	"github.com/arloliu/pointio/logging"
	"github.com/arloliu/pointio/pcd"
	"github.com/golang/geo/r3"
	"github.com/golang/glog"
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.CommandLine.Usage = printUsage

	f, err := parseFlags(flag.CommandLine, os.Args[1:], runtime.NumCPU())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}
	if *f.Help {
		printUsage()
		return
	}
	if *f.Verbose {
		_ = flag.Set("v", fmt.Sprint(int(logging.DebugLevel)))
	}

	err = run(f, os.Stdout)
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input>...\n\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

// run executes the parsed command line, writing human readable output to w.
func run(f *cliFlags, w io.Writer) error {
	for _, input := range f.Inputs {
		var err error
		if *f.Info || *f.Stats {
			err = describe(f, input, w)
		} else {
			err = convert(f, input, w)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// options translates the flags into codec options. prefix tags log lines.
func options(f *cliFlags, prefix string) []pointio.Option {
	enc, _ := format.ParseDataEncoding(*f.Variant)
	pf := format.PointFormat(*f.LASFormat)
	scale := *f.Scale

	return []pointio.Option{
		pointio.WithLogger(logging.NewGlog(prefix)),
		pointio.WithPCDOptions(pcd.WithDataEncoding(enc)),
		pointio.WithLASOptions(
			las.WithPointFormat(pf),
			las.WithVersion(max(las.DefaultVersionMinor, pf.MinVersionMinor())),
			las.WithScale(scale, scale, scale),
			las.WithAutoOffset(),
		),
	}
}

func convert(f *cliFlags, input string, w io.Writer) error {
	var jobs []job
	if isDir(input) {
		planned, err := planFolder(input, *f.Output, *f.Format, *f.Recursive)
		if err != nil {
			return err
		}
		if len(planned) == 0 {
			glog.Warningf("no point cloud files found in %s", input)
			return nil
		}
		jobs = planned
	} else {
		j, err := planSingle(input, *f.Output, *f.Format)
		if err != nil {
			return err
		}
		jobs = []job{j}
	}

	workers := min(*f.Workers, len(jobs))
	results, err := runJobs(jobs, workers, func(j job) (pointio.Report, error) {
		return pointio.Convert(j.Input, j.Output, options(f, filepath.Base(j.Input))...)
	})
	for _, r := range results {
		printReport(w, r.report)
	}

	return err
}

func describe(f *cliFlags, input string, w io.Writer) error {
	paths := []string{input}
	if isDir(input) {
		found, err := findPointClouds(input, *f.Recursive)
		if err != nil {
			return err
		}
		paths = found
	}

	for _, path := range paths {
		c, err := pointio.ReadFile(path, options(f, filepath.Base(path))...)
		if err != nil {
			return err
		}
		if *f.Info {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			printInfo(w, path, c, hash.Bytes(raw))
		}
		if *f.Stats {
			printStats(w, cloud.ComputeStats(c))
		}
	}

	return nil
}

// printInfo prints the container summary. fileSum is the xxHash64 of the
// file as stored, digest the hash of the decoded points.
func printInfo(w io.Writer, path string, c *cloud.Cloud, fileSum uint64) {
	ff, ct, _ := pointio.DetectFormat(path)

	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  format:      %s\n", ff)
	if ct != format.CompressionNone {
		fmt.Fprintf(w, "  compression: %s\n", ct)
	}
	fmt.Fprintf(w, "  points:      %d\n", c.Len())
	fmt.Fprintf(w, "  width:       %d\n", c.Width)
	fmt.Fprintf(w, "  height:      %d\n", c.Height)
	fmt.Fprintf(w, "  organized:   %t\n", c.Organized())
	fmt.Fprintf(w, "  dense:       %t\n", c.IsDense)
	fmt.Fprintf(w, "  digest:      %016x\n", pointio.Digest(c))
	fmt.Fprintf(w, "  file xxh64:  %016x\n", fileSum)
}

func printStats(w io.Writer, s cloud.Stats) {
	fmt.Fprintf(w, "  points:      %d (dense: %t)\n", s.Count, s.IsDense)
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "  min:         %s\n", formatVector(s.Min))
	fmt.Fprintf(w, "  max:         %s\n", formatVector(s.Max))
	fmt.Fprintf(w, "  center:      %s\n", formatVector(s.Center))
	fmt.Fprintf(w, "  size:        %s\n", formatVector(s.Size))
	fmt.Fprintf(w, "  centroid:    %s\n", formatVector(s.Centroid))
	fmt.Fprintf(w, "  stddev:      %s\n", formatVector(s.StdDev))
}

func printReport(w io.Writer, r pointio.Report) {
	fmt.Fprintf(w, "%s -> %s: %d points, %d -> %d bytes, decode %s, encode %s\n",
		r.Input, r.Output, r.Points, r.InputBytes, r.OutputBytes, r.DecodeTime, r.EncodeTime)
	if !r.IsDense {
		fmt.Fprintf(w, "  non-finite points were dropped\n")
	}
	if r.Outer.Algorithm != format.CompressionNone {
		fmt.Fprintf(w, "  %s: %.1f%% saved\n", r.Outer.Algorithm, r.Outer.SpaceSavings())
	}
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

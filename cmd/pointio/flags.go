package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/las"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	Output    *string
	Format    *string
	Variant   *string
	LASFormat *int
	Scale     *float64
	Info      *bool
	Stats     *bool
	Recursive *bool
	Workers   *int
	Verbose   *bool
	Help      *bool

	Inputs []string
}

// defineFlags registers every pointio flag on fs.
func defineFlags(fs *flag.FlagSet, workers int) *cliFlags {
	return &cliFlags{
		Output:    defineStringFlag(fs, "output", "o", "", "Output file, or output folder when the input is a folder."),
		Format:    defineStringFlag(fs, "format", "f", "", "Output format when -output is not set or is a folder: pcd or las. Defaults to the other container."),
		Variant:   defineStringFlag(fs, "variant", "variant", "binary", "PCD data encoding: ascii, binary or compressed."),
		LASFormat: defineIntFlag(fs, "las-format", "las-format", int(las.DefaultPointFormat), "LAS point data record format, 0 through 10."),
		Scale:     defineFloat64Flag(fs, "scale", "scale", las.DefaultScale, "LAS coordinate scale applied to all three axes."),
		Info:      defineBoolFlag(fs, "info", "i", false, "Print file information instead of converting."),
		Stats:     defineBoolFlag(fs, "stats", "s", false, "Print point statistics instead of converting."),
		Recursive: defineBoolFlag(fs, "recursive", "r", false, "Descend into subfolders when the input is a folder."),
		Workers:   defineIntFlag(fs, "workers", "w", workers, "Number of files converted in parallel in folder mode."),
		Verbose:   defineBoolFlag(fs, "verbose", "V", false, "Log codec diagnostics to stderr, same as -v=2 -logtostderr."),
		Help:      defineBoolFlag(fs, "help", "h", false, "Displays this help."),
	}
}

// parseFlags parses args and validates the values that need no file access.
func parseFlags(fs *flag.FlagSet, args []string, workers int) (*cliFlags, error) {
	f := defineFlags(fs, workers)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.Inputs = fs.Args()

	if *f.Help {
		return f, nil
	}
	if len(f.Inputs) == 0 {
		return nil, errors.New("missing input file or folder")
	}
	if *f.Format != "" && format.ParseFileFormat(*f.Format) == format.FormatUnknown {
		return nil, fmt.Errorf("unknown format %q, want pcd or las", *f.Format)
	}
	if _, ok := format.ParseDataEncoding(*f.Variant); !ok {
		return nil, fmt.Errorf("unknown PCD variant %q, want ascii, binary or compressed", *f.Variant)
	}
	if *f.LASFormat < 0 || !format.PointFormat(*f.LASFormat).Valid() {
		return nil, fmt.Errorf("LAS point format %d out of range 0..%d", *f.LASFormat, format.MaxPointFormat)
	}
	if *f.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", *f.Scale)
	}
	if *f.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", *f.Workers)
	}

	return f, nil
}

func defineStringFlag(fs *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	fs.StringVar(&output, name, defaultValue, usage)
	if shortHand != name {
		fs.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlag(fs *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	fs.IntVar(&output, name, defaultValue, usage)
	if shortHand != name {
		fs.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64Flag(fs *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	fs.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name {
		fs.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlag(fs *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	fs.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		fs.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

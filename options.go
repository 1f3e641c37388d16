package pointio

import (
	"fmt"

	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/options"
	"github.com/arloliu/pointio/las"
	"github.com/arloliu/pointio/logging"
	"github.com/arloliu/pointio/pcd"
)

// Config holds the settings of the top-level file operations.
type Config struct {
	pcdOptions  []pcd.Option
	lasOptions  []las.Option
	compression format.CompressionType
	logger      logging.Logger
}

// Option configures the top-level functions.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{logger: logging.Nop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithPCDOptions passes options to the PCD encoder and decoder.
func WithPCDOptions(opts ...pcd.Option) Option {
	return options.NoError(func(c *Config) {
		c.pcdOptions = append(c.pcdOptions, opts...)
	})
}

// WithLASOptions passes options to the LAS encoder and decoder.
func WithLASOptions(opts ...las.Option) Option {
	return options.NoError(func(c *Config) {
		c.lasOptions = append(c.lasOptions, opts...)
	})
}

// WithCompression overrides the outer compression detected from the output
// file name in WriteFile. format.CompressionLZF is rejected: LZF is only used
// inside PCD binary_compressed payloads.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch ct {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2,
			format.CompressionLZ4, format.CompressionLZMA:
			c.compression = ct
			return nil
		default:
			return fmt.Errorf("%w: outer compression %s", errs.ErrInvalidOption, ct)
		}
	})
}

// WithLogger sets the logger for the file operations and both codecs.
func WithLogger(l logging.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logging.OrNop(l)
	})
}

// pcdOpts returns the PCD options with the logger first so explicit options win.
func (c *Config) pcdOpts() []pcd.Option {
	return append([]pcd.Option{pcd.WithLogger(c.logger)}, c.pcdOptions...)
}

func (c *Config) lasOpts() []las.Option {
	return append([]las.Option{las.WithLogger(c.logger)}, c.lasOptions...)
}

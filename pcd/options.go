package pcd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/options"
	"github.com/arloliu/pointio/logging"
)

// Config holds encoder and decoder settings. Decoders only use the logger.
type Config struct {
	encoding  format.DataEncoding
	viewpoint string
	extra     []Field
	logger    logging.Logger
}

// Option configures Encode and Decode.
type Option = options.Option[*Config]

func newConfig() *Config {
	return &Config{
		encoding:  format.EncodingBinary,
		viewpoint: DefaultViewpoint,
		logger:    logging.Nop(),
	}
}

// NewConfig returns the defaults with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithDataEncoding selects the payload encoding written by Encode.
func WithDataEncoding(enc format.DataEncoding) Option {
	return options.New(func(c *Config) error {
		switch enc {
		case format.EncodingASCII, format.EncodingBinary, format.EncodingBinaryCompressed:
			c.encoding = enc
			return nil
		default:
			return fmt.Errorf("%w: pcd data encoding %d", errs.ErrInvalidOption, enc)
		}
	})
}

// WithViewpoint sets the VIEWPOINT line: translation tx ty tz and quaternion qw qx qy qz.
func WithViewpoint(viewpoint string) Option {
	return options.New(func(c *Config) error {
		parts := strings.Fields(viewpoint)
		if len(parts) != 7 {
			return fmt.Errorf("%w: viewpoint needs 7 values, got %d", errs.ErrInvalidOption, len(parts))
		}
		for _, p := range parts {
			if _, err := strconv.ParseFloat(p, 64); err != nil {
				return fmt.Errorf("%w: viewpoint value %q", errs.ErrInvalidOption, p)
			}
		}
		c.viewpoint = strings.Join(parts, " ")

		return nil
	})
}

// WithExtraField appends a zero-filled column after x y z rgb.
//
// It lets written files match a schema expected by other tools, such as an
// intensity or label column, without carrying data for it.
func WithExtraField(f Field) Option {
	return options.New(func(c *Config) error {
		switch f.Name {
		case "", "x", "y", "z", "rgb":
			return fmt.Errorf("%w: extra field name %q", errs.ErrInvalidOption, f.Name)
		}
		switch f.Size {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("%w: extra field %s size %d", errs.ErrInvalidOption, f.Name, f.Size)
		}
		switch f.Type {
		case TypeFloat, TypeUnsigned, TypeSigned:
		default:
			return fmt.Errorf("%w: extra field %s type %q", errs.ErrInvalidOption, f.Name, f.Type)
		}
		if f.Count < 1 {
			return fmt.Errorf("%w: extra field %s count %d", errs.ErrInvalidOption, f.Name, f.Count)
		}
		c.extra = append(c.extra, f)

		return nil
	})
}

// WithLogger sets the diagnostics sink.
func WithLogger(l logging.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logging.OrNop(l)
	})
}

package las

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/format"
	"github.com/arloliu/pointio/internal/options"
	"github.com/arloliu/pointio/logging"
	"github.com/golang/geo/r3"
	"github.com/shopspring/decimal"
)

// Encoder defaults.
const (
	DefaultPointFormat  = format.PointFormat(3)
	DefaultVersionMinor = uint8(3)
	DefaultScale        = 0.01
	DefaultSoftware     = "pointio"
)

// Config holds encoder and decoder settings. Decoders only use the logger.
type Config struct {
	pointFormat  format.PointFormat
	versionMinor uint8
	scale        r3.Vector
	offset       r3.Vector
	autoOffset   bool
	systemID     string
	software     string
	created      time.Time
	logger       logging.Logger
}

// Option configures Encode and Decode.
type Option = options.Option[*Config]

func newConfig() *Config {
	return &Config{
		pointFormat:  DefaultPointFormat,
		versionMinor: DefaultVersionMinor,
		scale:        r3.Vector{X: DefaultScale, Y: DefaultScale, Z: DefaultScale},
		software:     DefaultSoftware,
		logger:       logging.Nop(),
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

// WithPointFormat selects the point data record format, 0 through 10.
func WithPointFormat(pf format.PointFormat) Option {
	return options.New(func(c *Config) error {
		if !pf.Valid() {
			return fmt.Errorf("%w: point format %d", errs.ErrInvalidOption, pf)
		}
		c.pointFormat = pf

		return nil
	})
}

// WithVersion selects the LAS 1.minor version written, 2 through 4.
// Point formats 4 and 5 need 1.3; formats 6 to 10 need 1.4.
func WithVersion(minor uint8) Option {
	return options.New(func(c *Config) error {
		if minor < 2 || minor > 4 {
			return fmt.Errorf("%w: LAS version 1.%d", errs.ErrInvalidOption, minor)
		}
		c.versionMinor = minor

		return nil
	})
}

// WithScale sets the per-axis scale factors. Each must be positive and finite.
func WithScale(x, y, z float64) Option {
	return options.New(func(c *Config) error {
		for _, s := range []float64{x, y, z} {
			if !(s > 0) || math.IsInf(s, 0) {
				return fmt.Errorf("%w: scale %g", errs.ErrInvalidOption, s)
			}
		}
		c.scale = r3.Vector{X: x, Y: y, Z: z}

		return nil
	})
}

// WithOffset sets the per-axis offsets and disables WithAutoOffset.
func WithOffset(x, y, z float64) Option {
	return options.New(func(c *Config) error {
		for _, o := range []float64{x, y, z} {
			if math.IsNaN(o) || math.IsInf(o, 0) {
				return fmt.Errorf("%w: offset %g", errs.ErrInvalidOption, o)
			}
		}
		c.offset = r3.Vector{X: x, Y: y, Z: z}
		c.autoOffset = false

		return nil
	})
}

// WithAutoOffset derives the offsets from the cloud's bounding box minimum,
// snapped down to a multiple of the scale.
//
// Stored integers then start near zero, which keeps clouds far from the
// origin within int32 range at fine scales.
func WithAutoOffset() Option {
	return options.NoError(func(c *Config) {
		c.autoOffset = true
	})
}

// WithSystemIdentifier sets the system identifier, at most 32 bytes.
func WithSystemIdentifier(id string) Option {
	return options.New(func(c *Config) error {
		if len(id) > identifierLength {
			return fmt.Errorf("%w: system identifier longer than %d bytes", errs.ErrInvalidOption, identifierLength)
		}
		c.systemID = id

		return nil
	})
}

// WithGeneratingSoftware sets the generating software name, at most 32 bytes.
func WithGeneratingSoftware(name string) Option {
	return options.New(func(c *Config) error {
		if len(name) > identifierLength {
			return fmt.Errorf("%w: generating software longer than %d bytes", errs.ErrInvalidOption, identifierLength)
		}
		c.software = name

		return nil
	})
}

// WithCreationTime sets the creation day and year. The default is the time of encoding.
func WithCreationTime(t time.Time) Option {
	return options.NoError(func(c *Config) {
		c.created = t
	})
}

// WithLogger sets the diagnostics sink.
func WithLogger(l logging.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logging.OrNop(l)
	})
}

// validate checks settings that depend on each other.
func (c *Config) validate() error {
	if c.pointFormat.MinVersionMinor() > c.versionMinor {
		return fmt.Errorf("%w: point format %d needs LAS 1.%d, have 1.%d",
			errs.ErrInvalidOption, c.pointFormat, c.pointFormat.MinVersionMinor(), c.versionMinor)
	}

	return nil
}

// snapOffset returns the largest multiple of scale not above lo.
//
// The division runs in decimal so that minimums already on the grid, such as
// 12.34 at scale 0.01, are not pushed down one step by binary rounding.
// A non-finite lo snaps to 0.
func snapOffset(lo, scale float64) float64 {
	if math.IsNaN(lo) || math.IsInf(lo, 0) {
		return 0
	}
	s := decimal.NewFromFloat(scale)

	return decimal.NewFromFloat(lo).Div(s).Floor().Mul(s).InexactFloat64()
}

func (c *Config) transform(lo r3.Vector) Transform {
	t := Transform{Scale: c.scale, Offset: c.offset}
	if c.autoOffset {
		t.Offset = r3.Vector{
			X: snapOffset(lo.X, c.scale.X),
			Y: snapOffset(lo.Y, c.scale.Y),
			Z: snapOffset(lo.Z, c.scale.Z),
		}
	}

	return t
}

package las

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/internal/options"
	"github.com/arloliu/pointio/internal/pool"
	"github.com/golang/geo/r3"
)

// Encode serializes c as a LAS file.
//
// Every point is written with NewPointRecord defaults. Points with a
// non-finite coordinate cannot be quantized and are skipped.
//
// Parameters:
//   - c: Cloud to encode
//   - opts: Encoder options
//
// Returns:
//   - []byte: File contents owned by the caller
//   - error: ErrEmptyCloud, ErrInvalidOption or ErrCoordinateOutOfRange
func Encode(c *cloud.Cloud, opts ...Option) ([]byte, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if c == nil || c.Len() == 0 {
		return nil, errs.ErrEmptyCloud
	}

	records := make([]PointRecord, 0, c.Len())
	for _, p := range c.Points {
		if p.IsFinite() {
			records = append(records, NewPointRecord(p))
		}
	}
	if skipped := c.Len() - len(records); skipped > 0 {
		cfg.logger.Warnf("las: skipped %d non-finite points of %d", skipped, c.Len())
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no finite points", errs.ErrEmptyCloud)
	}

	return encodeRecords(records, cfg)
}

// EncodeRecords serializes records as a LAS file, keeping every attribute the
// point format can hold.
func EncodeRecords(records []PointRecord, opts ...Option) ([]byte, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errs.ErrEmptyCloud
	}

	return encodeRecords(records, cfg)
}

func encodeRecords(records []PointRecord, cfg *Config) ([]byte, error) {
	for i := range records {
		r := &records[i]
		if !isFinite(r.X) || !isFinite(r.Y) || !isFinite(r.Z) {
			return nil, fmt.Errorf("point %d: %w: (%g, %g, %g)", i, errs.ErrCoordinateOutOfRange, r.X, r.Y, r.Z)
		}
	}

	h := NewHeader(records, cfg)

	layout, err := NewRecordLayout(h.PointFormat, int(h.PointRecordLength), h.Transform())
	if err != nil {
		return nil, err
	}

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	buf.Grow(int(h.OffsetToPointData) + len(records)*layout.Length())
	_, _ = buf.Write(h.Bytes())

	for i := range records {
		buf.B, err = layout.Append(buf.B, &records[i])
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}

	cfg.logger.Debugf("las: encoded %d points (version %s, format %d, %d bytes)",
		len(records), h.Version(), h.PointFormat, buf.Len())

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// NewHeader returns the header written for records under cfg. A nil cfg
// uses the defaults: format 3, version 1.3, scale 0.01 and offset 0.
//
// The bounding box covers the records, the creation date is the configured
// time or now, and point data starts right after the header.
func NewHeader(records []PointRecord, cfg *Config) Header {
	if cfg == nil {
		cfg = newConfig()
	}

	lo, hi := recordBounds(records)
	size := HeaderSizeFor(cfg.versionMinor)

	created := cfg.created
	if created.IsZero() {
		created = time.Now()
	}

	t := cfg.transform(lo)
	h := Header{
		VersionMajor:       1,
		VersionMinor:       cfg.versionMinor,
		SystemIdentifier:   cfg.systemID,
		GeneratingSoftware: cfg.software,
		CreationDayOfYear:  uint16(created.YearDay()),
		CreationYear:       uint16(created.Year()),
		HeaderSize:         uint16(size),
		OffsetToPointData:  uint32(size),
		PointFormat:        cfg.pointFormat,
		PointRecordLength:  cfg.pointFormat.RecordLength(),
		Scale:              t.Scale,
		Offset:             t.Offset,
		Min:                lo,
		Max:                hi,
	}
	h.SetPointCount(uint64(len(records)))

	return h
}

func recordBounds(records []PointRecord) (r3.Vector, r3.Vector) {
	if len(records) == 0 {
		return r3.Vector{}, r3.Vector{}
	}

	lo := r3.Vector{X: records[0].X, Y: records[0].Y, Z: records[0].Z}
	hi := lo
	for _, r := range records[1:] {
		lo = r3.Vector{X: min(lo.X, r.X), Y: min(lo.Y, r.Y), Z: min(lo.Z, r.Z)}
		hi = r3.Vector{X: max(hi.X, r.X), Y: max(hi.Y, r.Y), Z: max(hi.Z, r.Z)}
	}

	return lo, hi
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

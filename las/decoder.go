package las

import (
	"fmt"

	"github.com/arloliu/pointio/cloud"
	"github.com/arloliu/pointio/errs"
	"github.com/arloliu/pointio/internal/options"
)

// Decode parses a complete LAS file into a cloud.
//
// Coordinates are narrowed to float32. Records with a non-finite coordinate
// are dropped and clear IsDense. Width is the header's point count and Height is 1.
//
// Parameters:
//   - data: File contents
//   - opts: Decoder options (only WithLogger applies)
//
// Returns:
//   - *cloud.Cloud: Decoded points
//   - Header: Parsed header
//   - error: Header error, or ErrTruncatedPayload when the file ends before the last record
func Decode(data []byte, opts ...Option) (*cloud.Cloud, Header, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, Header{}, err
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, h, err
	}

	n, err := checkPayload(data, &h)
	if err != nil {
		return nil, h, err
	}

	c := cloud.New(n)
	c.Width, c.Height = uint32(min(h.PointCount(), uint64(^uint32(0)))), 1

	err = forEachRecord(data, &h, n, func(r *PointRecord) {
		c.PushChecked(r.Point())
	})
	if err != nil {
		return nil, h, err
	}

	if !c.IsDense {
		cfg.logger.Warnf("las: dropped %d non-finite points of %d", n-c.Len(), n)
	}
	cfg.logger.Debugf("las: decoded %d points (version %s, format %d, record %d bytes)",
		c.Len(), h.Version(), h.PointFormat, h.PointRecordLength)

	return c, h, nil
}

// DecodeRecords parses a complete LAS file and returns every record with all
// of its attributes.
func DecodeRecords(data []byte, opts ...Option) ([]PointRecord, Header, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, Header{}, err
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, h, err
	}

	n, err := checkPayload(data, &h)
	if err != nil {
		return nil, h, err
	}

	records := make([]PointRecord, 0, n)
	err = forEachRecord(data, &h, n, func(r *PointRecord) {
		records = append(records, *r)
	})
	if err != nil {
		return nil, h, err
	}

	cfg.logger.Debugf("las: decoded %d records", len(records))

	return records, h, nil
}

// checkPayload verifies that data holds every record the header declares and
// returns the record count.
func checkPayload(data []byte, h *Header) (int, error) {
	count := h.PointCount()
	start := uint64(h.OffsetToPointData)
	stride := uint64(h.PointRecordLength)

	if start > uint64(len(data)) {
		return 0, fmt.Errorf("%w: point data offset %d past end of %d byte file",
			errs.ErrTruncatedPayload, start, len(data))
	}
	if count > (uint64(len(data))-start)/stride {
		return 0, fmt.Errorf("%w: %d records of %d bytes from offset %d, file has %d bytes",
			errs.ErrTruncatedPayload, count, stride, start, len(data))
	}

	return int(count), nil
}

func forEachRecord(data []byte, h *Header, n int, fn func(r *PointRecord)) error {
	layout, err := NewRecordLayout(h.PointFormat, int(h.PointRecordLength), h.Transform())
	if err != nil {
		return err
	}

	stride := layout.Length()
	payload := data[h.OffsetToPointData:]
	for i := range n {
		r, err := layout.Decode(payload[i*stride:])
		if err != nil {
			return err
		}
		fn(&r)
	}

	return nil
}

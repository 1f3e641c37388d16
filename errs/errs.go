// Package errs defines the sentinel errors returned by pointio packages.
//
// Errors are wrapped with additional context via fmt.Errorf("%w: ...") so
// callers should compare with errors.Is.
package errs

import "errors"

// Malformed header errors.
var (
	// ErrMalformedHeader indicates a header that cannot be parsed or fails validation.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrFieldCountMismatch indicates PCD FIELDS/SIZE/TYPE/COUNT lists of different lengths.
	ErrFieldCountMismatch = errors.New("field list length mismatch")
	// ErrMissingCoordinate indicates a schema without one of the x, y, z fields.
	ErrMissingCoordinate = errors.New("missing coordinate field")
	// ErrUnsupportedField indicates a known field declared with an unsupported size or type.
	ErrUnsupportedField = errors.New("unsupported field declaration")
	// ErrInvalidSignature indicates a LAS file without the LASF signature.
	ErrInvalidSignature = errors.New("invalid file signature")
	// ErrUnsupportedVersion indicates a LAS version other than 1.2 or later.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Payload errors.
var (
	ErrTruncatedPayload = errors.New("truncated payload")
	ErrCorruptPayload   = errors.New("corrupt payload")
	ErrSizeMismatch     = errors.New("payload size mismatch")
)

// Unsupported variant errors.
var (
	ErrUnsupportedEncoding    = errors.New("unsupported data encoding")
	ErrUnsupportedPointFormat = errors.New("unsupported point format")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	ErrUnknownFileFormat      = errors.New("unknown file format")
)

// Encoding errors.
var (
	ErrEmptyCloud           = errors.New("point cloud is empty")
	ErrCoordinateOutOfRange = errors.New("coordinate out of range for scale and offset")
	ErrInvalidOption        = errors.New("invalid option")
)

// Package pcd reads and writes PCD point cloud files.
//
// A PCD file is a text header followed by a payload in one of three encodings:
//
//   - ascii: one whitespace separated line per point, columns in FIELDS order
//   - binary: fixed-size little-endian records, fields in FIELDS order
//   - binary_compressed: two u32 sizes and an LZF block holding the records
//     transposed to one contiguous column per field
//
// The header's FIELDS, SIZE, TYPE and COUNT lines form the record schema. A
// Layout resolves the schema once into byte offsets and ascii token indexes for
// the fields this package models (x, y, z and rgb); every other field is kept
// in the record size but not interpreted.
//
// # Decoding
//
//	c, hdr, err := pcd.Decode(data, pcd.WithLogger(logger))
//
// Points with a non-finite coordinate are dropped and the cloud's IsDense flag
// is cleared. Points without an rgb field are white.
//
// # Encoding
//
//	data, err := pcd.Encode(c,
//	    pcd.WithDataEncoding(format.EncodingBinaryCompressed),
//	    pcd.WithExtraField(pcd.Field{Name: "intensity", Size: 4, Type: pcd.TypeFloat, Count: 1}),
//	)
//
// Extra fields are written as zeros.
package pcd

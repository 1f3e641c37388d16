// Package las reads and writes LAS 1.2, 1.3 and 1.4 point cloud files.
//
// A LAS file starts with a fixed binary header. Point records of one numbered
// point data record format (0 through 10) follow at the header's point data
// offset. Coordinates are stored as int32 values that map to real-world
// coordinates through the header's per-axis scale and offset.
//
// Every format starts with the same 20 bytes: X, Y, Z, intensity, the return
// byte (return number in bits 0-3, number of returns in bits 4-7),
// classification, scan angle, user data and point source id. They are
// followed by GPS time, 16-bit RGB and near infrared when the format carries
// them. Any remaining bytes up to the header's record length are skipped.
//
// # Decoding
//
//	c, hdr, err := las.Decode(data)
//	records, hdr, err := las.DecodeRecords(data)
//
// # Encoding
//
//	data, err := las.Encode(c,
//	    las.WithPointFormat(7),
//	    las.WithVersion(4),
//	    las.WithScale(0.001, 0.001, 0.001),
//	    las.WithAutoOffset(),
//	)
//
// Encode writes intensity 0, classification 1 and return 1 of 1 for every
// point. EncodeRecords keeps the attributes of decoded records, except the
// scan direction and edge of flight line flags, which are not part of the
// return byte in this layout.
package las

package compress

import (
	"fmt"

	"github.com/arloliu/pointio/errs"
)

// LZF stream layout.
//
// A control byte below 32 starts a literal run of ctrl+1 bytes. Any other
// control byte starts a back-reference: the top three bits hold the length
// (7 means an extension byte follows and is added), the low five bits are the
// high bits of the distance, and the next byte holds its low eight bits.
// The copied length is length+2 and the distance is the 13-bit value plus one.
const (
	lzfMaxLiteral = 1 << 5      // longest literal run
	lzfMaxOffset  = 1 << 13     // largest back-reference distance
	lzfMaxRef     = 7 + 255 + 2 // longest back-reference copy
	lzfMinMatch   = 3           // shortest back-reference copy
	lzfHashLog    = 14          // hash table size exponent
	lzfHashSize   = 1 << lzfHashLog
)

// LZFCompressor implements the LZF block format used by PCD binary_compressed payloads.
//
// LZF blocks do not carry their decoded size. PCD stores it next to the block,
// so DecompressSize is the method container decoders use. Decompress accepts
// streams of any decoded length and exists to satisfy Codec.
type LZFCompressor struct{}

var _ SizedCodec = (*LZFCompressor)(nil)

// NewLZFCompressor creates a new LZF compressor.
func NewLZFCompressor() LZFCompressor {
	return LZFCompressor{}
}

// Compress compresses the input data with greedy LZF match finding.
func (c LZFCompressor) Compress(data []byte) ([]byte, error) {
	return LZFCompress(data), nil
}

// Decompress decodes an LZF block without an output size limit.
func (c LZFCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := lzfDecode(data, make([]byte, 0, len(data)*2), -1)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DecompressSize decodes an LZF block that must expand to exactly size bytes.
func (c LZFCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	return LZFDecompress(data, size)
}

// LZFDecompress decodes src into a new buffer of exactly expectedLen bytes.
//
// Parameters:
//   - src: LZF block
//   - expectedLen: Decoded size recorded by the container
//
// Returns:
//   - []byte: Decoded bytes, nil on failure
//   - error: ErrCorruptPayload for truncated control sequences, back-references
//     before the start of output or output overflow; ErrSizeMismatch when the
//     block decodes to fewer bytes than expectedLen
func LZFDecompress(src []byte, expectedLen int) ([]byte, error) {
	if expectedLen < 0 {
		return nil, fmt.Errorf("%w: negative decoded size %d", errs.ErrSizeMismatch, expectedLen)
	}

	out, err := lzfDecode(src, make([]byte, 0, expectedLen), expectedLen)
	if err != nil {
		return nil, err
	}

	if len(out) != expectedLen {
		return nil, fmt.Errorf("%w: lzf decoded %d bytes, expected %d", errs.ErrSizeMismatch, len(out), expectedLen)
	}

	return out, nil
}

// lzfDecode appends the decoded block to dst. A negative limit disables the
// output bound. Decoding stops once the output reaches limit.
func lzfDecode(src, dst []byte, limit int) ([]byte, error) {
	ip := 0
	for ip < len(src) {
		if limit >= 0 && len(dst) >= limit {
			break
		}

		ctrl := int(src[ip])
		ip++

		if ctrl < lzfMaxLiteral {
			run := ctrl + 1
			if ip+run > len(src) {
				return nil, fmt.Errorf("%w: lzf literal run of %d bytes at input %d exceeds input", errs.ErrCorruptPayload, run, ip-1)
			}
			if limit >= 0 && len(dst)+run > limit {
				return nil, fmt.Errorf("%w: lzf literal run overflows %d byte output", errs.ErrCorruptPayload, limit)
			}

			dst = append(dst, src[ip:ip+run]...)
			ip += run

			continue
		}

		length := ctrl >> 5
		if length == 7 {
			if ip >= len(src) {
				return nil, fmt.Errorf("%w: lzf missing length extension at input %d", errs.ErrCorruptPayload, ip)
			}
			length += int(src[ip])
			ip++
		}

		if ip >= len(src) {
			return nil, fmt.Errorf("%w: lzf missing distance byte at input %d", errs.ErrCorruptPayload, ip)
		}
		distance := (ctrl&0x1f)<<8 + int(src[ip]) + 1
		ip++

		length += 2
		ref := len(dst) - distance
		if ref < 0 {
			return nil, fmt.Errorf("%w: lzf back-reference distance %d exceeds %d decoded bytes", errs.ErrCorruptPayload, distance, len(dst))
		}
		if limit >= 0 && len(dst)+length > limit {
			return nil, fmt.Errorf("%w: lzf back-reference overflows %d byte output", errs.ErrCorruptPayload, limit)
		}

		// source and destination overlap when distance < length
		for i := range length {
			dst = append(dst, dst[ref+i])
		}
	}

	return dst, nil
}

// LZFCompress encodes src as an LZF block.
//
// The encoder keeps a hash table of the most recent position of every 3-byte
// prefix and greedily extends matches found within the 8 KiB window. Positions
// covered by a match are hashed too so later data can reference them.
// Incompressible input grows by one control byte per 32 literals.
//
// Returns:
//   - []byte: Encoded block (empty for empty input)
func LZFCompress(src []byte) []byte {
	n := len(src)
	out := make([]byte, 0, n+n/lzfMaxLiteral+1)
	if n == 0 {
		return out
	}

	var table [lzfHashSize]int32 // position+1, zero means empty

	litStart := 0
	ip := 0
	for ip+lzfMinMatch <= n {
		h := lzfHash(src[ip], src[ip+1], src[ip+2])
		ref := int(table[h]) - 1
		table[h] = int32(ip + 1)

		if ref < 0 || ip-ref > lzfMaxOffset ||
			src[ref] != src[ip] || src[ref+1] != src[ip+1] || src[ref+2] != src[ip+2] {
			ip++
			continue
		}

		maxLen := min(n-ip, lzfMaxRef)
		length := lzfMinMatch
		for length < maxLen && src[ref+length] == src[ip+length] {
			length++
		}

		out = appendLiterals(out, src[litStart:ip])
		out = appendBackRef(out, ip-ref-1, length)

		end := ip + length
		for k := ip + 1; k < end && k+lzfMinMatch <= n; k++ {
			table[lzfHash(src[k], src[k+1], src[k+2])] = int32(k + 1)
		}

		ip = end
		litStart = ip
	}

	return appendLiterals(out, src[litStart:])
}

func lzfHash(a, b, c byte) uint32 {
	v := uint32(a)<<16 | uint32(b)<<8 | uint32(c)
	return (v * 2654435761) >> (32 - lzfHashLog)
}

// appendLiterals splits lit into runs of at most 32 bytes.
func appendLiterals(out, lit []byte) []byte {
	for len(lit) > 0 {
		run := min(len(lit), lzfMaxLiteral)
		out = append(out, byte(run-1))
		out = append(out, lit[:run]...)
		lit = lit[run:]
	}

	return out
}

// appendBackRef encodes a copy of length bytes from offset+1 bytes back.
func appendBackRef(out []byte, offset, length int) []byte {
	l := length - 2
	if l < 7 {
		return append(out, byte(l<<5|offset>>8), byte(offset))
	}

	return append(out, byte(7<<5|offset>>8), byte(l-7), byte(offset))
}

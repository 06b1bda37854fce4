// Package wire implements the canonical binary encoding spec §6 requires
// wherever peers must agree bit-exactly: length-prefixed sequences of
// fixed-size scalar/point encodings. It generalizes the teacher's
// frost/signer.go group-commitment encoding (there, a fixed-size tuple of
// points) to the variable-length vectors a Message carries.
package wire

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/rlnc-core/rlnc/group"
)

func putUint32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func takeUint32(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("wire: truncated length prefix")
	}
	return binary.BigEndian.Uint32(data[:4]), data[4:], nil
}

// EncodeScalars appends a length-prefixed vector of canonical 32-byte
// scalar encodings to out.
func EncodeScalars(out []byte, scalars []*group.Scalar) []byte {
	out = putUint32(out, uint32(len(scalars)))
	for _, s := range scalars {
		out = append(out, s.Bytes()...)
	}
	return out
}

// DecodeScalars parses a vector produced by EncodeScalars, returning the
// scalars and the remaining, unconsumed tail of data.
func DecodeScalars(data []byte) ([]*group.Scalar, []byte, error) {
	n, data, err := takeUint32(data)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: decoding scalar count: %w", err)
	}
	if uint64(len(data)) < uint64(n)*group.ScalarLen {
		return nil, nil, fmt.Errorf("wire: truncated scalar vector: want %d scalars", n)
	}
	out := make([]*group.Scalar, n)
	for i := uint32(0); i < n; i++ {
		s, err := new(group.Scalar).SetCanonicalBytes(data[:group.ScalarLen])
		if err != nil {
			return nil, nil, fmt.Errorf("wire: scalar %d: %w", i, err)
		}
		out[i] = s
		data = data[group.ScalarLen:]
	}
	return out, data, nil
}

// EncodePoints appends a length-prefixed vector of canonical 32-byte point
// encodings to out.
func EncodePoints(out []byte, points []*group.Point) []byte {
	out = putUint32(out, uint32(len(points)))
	for _, p := range points {
		out = append(out, p.Bytes()...)
	}
	return out
}

// DecodePoints parses a vector produced by EncodePoints.
func DecodePoints(data []byte) ([]*group.Point, []byte, error) {
	n, data, err := takeUint32(data)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: decoding point count: %w", err)
	}
	if uint64(len(data)) < uint64(n)*group.PointLen {
		return nil, nil, fmt.Errorf("wire: truncated point vector: want %d points", n)
	}
	out := make([]*group.Point, n)
	for i := uint32(0); i < n; i++ {
		p, err := new(group.Point).SetCanonicalBytes(data[:group.PointLen])
		if err != nil {
			return nil, nil, fmt.Errorf("wire: point %d: %w", i, err)
		}
		out[i] = p
		data = data[group.PointLen:]
	}
	return out, data, nil
}

// EncodeBytes appends a length-prefixed opaque byte string to out, used for
// the chunk payload itself.
func EncodeBytes(out []byte, b []byte) []byte {
	out = putUint32(out, uint32(len(b)))
	return append(out, b...)
}

// DecodeBytes parses a byte string produced by EncodeBytes.
func DecodeBytes(data []byte) ([]byte, []byte, error) {
	n, data, err := takeUint32(data)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: decoding byte length: %w", err)
	}
	if uint64(len(data)) < uint64(n) {
		return nil, nil, fmt.Errorf("wire: truncated byte string: want %d bytes", n)
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out, data[n:], nil
}

// CommitmentsHash returns the SHA-256 digest of the canonical encoding of
// points, used as the compact commitments-match check Node.Receive performs
// before doing any group arithmetic (spec §4.F, "commitments mismatch is
// checked before anything else").
func CommitmentsHash(points []*group.Point) [32]byte {
	return sha256.Sum256(EncodePoints(nil, points))
}

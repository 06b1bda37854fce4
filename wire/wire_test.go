package wire

import (
	"bytes"
	"testing"

	"github.com/rlnc-core/rlnc/group"
)

func TestScalarsRoundTrip(t *testing.T) {
	scalars := []*group.Scalar{
		group.ScalarFromUint64(1),
		group.ScalarFromUint64(2),
		group.ScalarFromUint64(3),
	}

	encoded := EncodeScalars(nil, scalars)
	decoded, rest, err := DecodeScalars(encoded)
	if err != nil {
		t.Fatalf("DecodeScalars: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("expected no leftover bytes, got %d", len(rest))
	}
	if len(decoded) != len(scalars) {
		t.Fatalf("expected %d scalars, got %d", len(scalars), len(decoded))
	}
	for i := range scalars {
		if !decoded[i].Equal(scalars[i]) {
			t.Errorf("scalar %d mismatch", i)
		}
	}
}

func TestPointsRoundTrip(t *testing.T) {
	points := []*group.Point{group.BasePoint(), group.IdentityPoint()}

	encoded := EncodePoints(nil, points)
	decoded, rest, err := DecodePoints(encoded)
	if err != nil {
		t.Fatalf("DecodePoints: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("expected no leftover bytes, got %d", len(rest))
	}
	for i := range points {
		if !decoded[i].Equal(points[i]) {
			t.Errorf("point %d mismatch", i)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	payload := []byte("some chunk payload")
	encoded := EncodeBytes(nil, payload)
	decoded, rest, err := DecodeBytes(encoded)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("expected no leftover bytes, got %d", len(rest))
	}
	if !bytes.Equal(decoded, payload) {
		t.Errorf("payload mismatch: got %q, want %q", decoded, payload)
	}
}

func TestCommitmentsHashIsStableAndSensitive(t *testing.T) {
	a := []*group.Point{group.BasePoint()}
	b := []*group.Point{group.IdentityPoint()}

	if CommitmentsHash(a) != CommitmentsHash(a) {
		t.Error("CommitmentsHash should be deterministic for the same input")
	}
	if CommitmentsHash(a) == CommitmentsHash(b) {
		t.Error("CommitmentsHash should differ for different commitment vectors")
	}
}

func TestDecodeScalarsTruncated(t *testing.T) {
	encoded := EncodeScalars(nil, []*group.Scalar{group.ScalarFromUint64(1)})
	_, _, err := DecodeScalars(encoded[:len(encoded)-1])
	if err == nil {
		t.Error("expected an error decoding a truncated scalar vector")
	}
}

func TestSequentialEncodingConcatenates(t *testing.T) {
	points := []*group.Point{group.BasePoint()}
	scalars := []*group.Scalar{group.ScalarFromUint64(7)}
	payload := []byte("chunk")

	out := EncodePoints(nil, points)
	out = EncodeScalars(out, scalars)
	out = EncodeBytes(out, payload)

	gotPoints, rest, err := DecodePoints(out)
	if err != nil {
		t.Fatalf("DecodePoints: %v", err)
	}
	gotScalars, rest, err := DecodeScalars(rest)
	if err != nil {
		t.Fatalf("DecodeScalars: %v", err)
	}
	gotPayload, rest, err := DecodeBytes(rest)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("expected no leftover bytes, got %d", len(rest))
	}
	if !gotPoints[0].Equal(points[0]) || !gotScalars[0].Equal(scalars[0]) || !bytes.Equal(gotPayload, payload) {
		t.Error("sequential encode/decode did not round trip")
	}
}

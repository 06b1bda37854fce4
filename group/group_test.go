package group

import "testing"

func TestScalarAddSubRoundTrip(t *testing.T) {
	a := ScalarFromUint64(7)
	b := ScalarFromUint64(11)

	sum := new(Scalar).Add(a, b)
	back := new(Scalar).Sub(sum, b)

	if !back.Equal(a) {
		t.Errorf("(a+b)-b != a: got %x, want %x", back.Bytes(), a.Bytes())
	}
}

func TestScalarMulInvertIsIdentity(t *testing.T) {
	a := ScalarFromUint64(42)
	inv := new(Scalar).Invert(a)
	product := new(Scalar).Mul(a, inv)

	if !product.Equal(OneScalar()) {
		t.Errorf("a * a^-1 != 1: got %x", product.Bytes())
	}
}

func TestScalarIsZero(t *testing.T) {
	if !NewScalar().IsZero() {
		t.Error("NewScalar() should be zero")
	}
	if OneScalar().IsZero() {
		t.Error("OneScalar() should not be zero")
	}
}

func TestScalarCanonicalRoundTrip(t *testing.T) {
	original := ScalarFromUint64(123456789)
	encoded := original.Bytes()

	decoded, err := new(Scalar).SetCanonicalBytes(encoded)
	if err != nil {
		t.Fatalf("SetCanonicalBytes: %v", err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip mismatch: got %x, want %x", decoded.Bytes(), original.Bytes())
	}
}

func TestPointCanonicalRoundTrip(t *testing.T) {
	p := BasePoint()
	encoded := p.Bytes()

	decoded, err := new(Point).SetCanonicalBytes(encoded)
	if err != nil {
		t.Fatalf("SetCanonicalBytes: %v", err)
	}
	if !decoded.Equal(p) {
		t.Error("round trip mismatch for base point")
	}
}

func TestScalarBaseMultMatchesScalarMult(t *testing.T) {
	s := ScalarFromUint64(9)

	viaBase := new(Point).ScalarBaseMult(s)
	viaGeneric := new(Point).ScalarMult(s, BasePoint())

	if !viaBase.Equal(viaGeneric) {
		t.Error("ScalarBaseMult(s) != ScalarMult(s, BasePoint())")
	}
}

func TestMultiscalarMultMatchesSequentialSum(t *testing.T) {
	scalars := []*Scalar{ScalarFromUint64(2), ScalarFromUint64(3), ScalarFromUint64(5)}
	points := []*Point{BasePoint(), BasePoint(), BasePoint()}

	got := MultiscalarMult(scalars, points)

	want := IdentityPoint()
	for i := range scalars {
		term := new(Point).ScalarMult(scalars[i], points[i])
		want = new(Point).Add(want, term)
	}

	if !got.Equal(want) {
		t.Error("MultiscalarMult does not match sequential scalar-mult-and-add")
	}
}

func TestIdentityPointIsAdditiveIdentity(t *testing.T) {
	p := BasePoint()
	sum := new(Point).Add(p, IdentityPoint())
	if !sum.Equal(p) {
		t.Error("p + identity != p")
	}
}

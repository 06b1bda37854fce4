// Package group wraps the prime-order group used by the core: a Ristretto
// scalar field and its group of points, as named by spec §3 ("Ristretto is
// the reference choice"). All arithmetic is delegated to
// github.com/gtank/ristretto255, whose Scalar and Element implementations
// are constant-time; this package never manipulates field bytes directly
// except at the canonical-encoding boundary.
package group

import (
	"fmt"

	"github.com/gtank/ristretto255"
)

// ScalarLen is the canonical encoded length of a Scalar, in bytes.
const ScalarLen = 32

// PointLen is the canonical encoded length of a Point, in bytes.
const PointLen = 32

// Scalar is an element of the Ristretto prime scalar field.
type Scalar struct {
	s *ristretto255.Scalar
}

// NewScalar returns the additive identity (zero).
func NewScalar() *Scalar {
	return &Scalar{s: ristretto255.NewScalar()}
}

// OneScalar returns the multiplicative identity.
func OneScalar() *Scalar {
	return &Scalar{s: ristretto255.NewScalar().One()}
}

// ScalarFromUint64 embeds a small non-negative integer into the field. Used
// for the `u8` re-coding coefficients drawn by Node.Send.
func ScalarFromUint64(v uint64) *Scalar {
	var buf [64]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	out := &Scalar{s: ristretto255.NewScalar()}
	out.s.FromUniformBytes(buf[:])
	return out
}

// SetCanonicalBytes decodes a 32-byte canonical little-endian scalar
// encoding. It does not reduce modulo the field order: per spec §4.B, chunk
// words are pre-masked to 252 bits (packed scheme) or zero-extended 31-byte
// words (simple scheme) specifically so this decode always succeeds.
func (s *Scalar) SetCanonicalBytes(b []byte) (*Scalar, error) {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	if err := s.s.Decode(b); err != nil {
		return nil, fmt.Errorf("group: invalid canonical scalar encoding: %w", err)
	}
	return s, nil
}

// SetUniformBytes reduces a wide (64-byte) buffer modulo the field order.
func (s *Scalar) SetUniformBytes(b []byte) *Scalar {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	s.s.FromUniformBytes(b)
	return s
}

// Bytes returns the canonical 32-byte little-endian encoding.
func (s *Scalar) Bytes() []byte {
	return s.s.Encode(make([]byte, 0, ScalarLen))
}

// Add returns s = x + y.
func (s *Scalar) Add(x, y *Scalar) *Scalar {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	s.s.Add(x.s, y.s)
	return s
}

// Sub returns s = x - y.
func (s *Scalar) Sub(x, y *Scalar) *Scalar {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	s.s.Subtract(x.s, y.s)
	return s
}

// Mul returns s = x * y.
func (s *Scalar) Mul(x, y *Scalar) *Scalar {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	s.s.Multiply(x.s, y.s)
	return s
}

// Invert returns s = x^-1. The caller must ensure x is nonzero; this mirrors
// the precondition on echelon.Inverse's per-diagonal-entry calls.
func (s *Scalar) Invert(x *Scalar) *Scalar {
	if s.s == nil {
		s.s = ristretto255.NewScalar()
	}
	s.s.Invert(x.s)
	return s
}

// IsZero reports whether the scalar is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.Equal(NewScalar())
}

// Equal reports whether two scalars represent the same field element.
func (s *Scalar) Equal(o *Scalar) bool {
	return s.s.Equal(o.s) == 1
}

// Clone returns an independent copy.
func (s *Scalar) Clone() *Scalar {
	out := ristretto255.NewScalar()
	out.Add(out, s.s) // out (zero) + s.s, cheapest allocation-free copy
	return &Scalar{s: out}
}

// Point is an element of the Ristretto group.
type Point struct {
	e *ristretto255.Element
}

// IdentityPoint returns the group identity element.
func IdentityPoint() *Point {
	return &Point{e: ristretto255.NewElement().Zero()}
}

// BasePoint returns the standard Ristretto base point.
func BasePoint() *Point {
	return &Point{e: ristretto255.NewElement().Base()}
}

// SetUniformBytes maps a wide (64-byte) buffer onto the group via Elligator2,
// giving a generator with no known discrete log relative to the base point
// or to any other generator derived this way. Used by Committer generator
// derivation (see NewCommitterFromSeed).
func (p *Point) SetUniformBytes(b []byte) *Point {
	if p.e == nil {
		p.e = ristretto255.NewElement()
	}
	p.e.FromUniformBytes(b)
	return p
}

// SetCanonicalBytes decodes a 32-byte canonical Ristretto point encoding.
func (p *Point) SetCanonicalBytes(b []byte) (*Point, error) {
	if p.e == nil {
		p.e = ristretto255.NewElement()
	}
	if err := p.e.Decode(b); err != nil {
		return nil, fmt.Errorf("group: invalid canonical point encoding: %w", err)
	}
	return p, nil
}

// Bytes returns the canonical 32-byte encoding.
func (p *Point) Bytes() []byte {
	return p.e.Encode(make([]byte, 0, PointLen))
}

// Add returns p = x + y.
func (p *Point) Add(x, y *Point) *Point {
	if p.e == nil {
		p.e = ristretto255.NewElement()
	}
	p.e.Add(x.e, y.e)
	return p
}

// ScalarMult returns p = s * x.
func (p *Point) ScalarMult(s *Scalar, x *Point) *Point {
	if p.e == nil {
		p.e = ristretto255.NewElement()
	}
	p.e.ScalarMult(s.s, x.e)
	return p
}

// ScalarBaseMult returns p = s * BasePoint().
func (p *Point) ScalarBaseMult(s *Scalar) *Point {
	if p.e == nil {
		p.e = ristretto255.NewElement()
	}
	p.e.ScalarBaseMult(s.s)
	return p
}

// Equal reports whether two points represent the same group element.
func (p *Point) Equal(o *Point) bool {
	return p.e.Equal(o.e) == 1
}

// Clone returns an independent copy.
func (p *Point) Clone() *Point {
	out := ristretto255.NewElement()
	out.Add(out.Zero(), p.e)
	return &Point{e: out}
}

// MultiscalarMult computes Σ scalars[i]·points[i] using the underlying
// library's multi-scalar multiplication, satisfying §3's MSM requirement
// for GroupPoint. Panics if the slices differ in length, matching
// ristretto255.Element.MultiscalarMult's own contract.
func MultiscalarMult(scalars []*Scalar, points []*Point) *Point {
	rs := make([]*ristretto255.Scalar, len(scalars))
	for i, s := range scalars {
		rs[i] = s.s
	}
	re := make([]*ristretto255.Element, len(points))
	for i, pt := range points {
		re[i] = pt.e
	}
	out := ristretto255.NewElement()
	out.MultiscalarMult(rs, re)
	return &Point{e: out}
}

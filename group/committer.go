package group

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Committer holds a fixed sequence of independent group generators and
// produces Pedersen-style vector commitments over them, per spec §4.C.
// A Committer is immutable after construction and safe for concurrent use
// by many Nodes in the same session, mirroring the teacher's
// `Ciphersuite`/`Curve` pair: immutable strategy objects shared by every
// protocol participant.
type Committer struct {
	generators []*Point
}

// hkdfInfoGenerator is the domain-separation label used when expanding a
// seed into generators, analogous to the teacher's FROST contextString /
// per-H* domain tags in frost/hash.go.
const hkdfInfoGenerator = "rlnc-core/committer/generator/v1"

// NewCommitterFromSeed derives n independent generators deterministically
// from seed using HKDF-SHA256, then maps each 64-byte HKDF output onto the
// group via Elligator2 (Point.SetUniformBytes). This resolves the Open
// Question spec.md flags in §9 ("Generator derivation is left unspecified...
// production deployments need a deterministic, auditable process"): any two
// callers with the same seed and n derive byte-identical generators, and
// the derivation never touches a discrete log an attacker could exploit
// (unlike the Rust prototype's `basepoint * Scalar::from(rng.gen())`, which
// leaks the discrete log of every generator relative to the base point).
func NewCommitterFromSeed(seed []byte, n int) (*Committer, error) {
	if n < 0 {
		return nil, fmt.Errorf("group: negative generator count %d", n)
	}
	kdf := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfoGenerator))
	generators := make([]*Point, n)
	for i := 0; i < n; i++ {
		wide := make([]byte, 64)
		if _, err := io.ReadFull(kdf, wide); err != nil {
			return nil, fmt.Errorf("group: deriving generator %d: %w", i, err)
		}
		generators[i] = new(Point).SetUniformBytes(wide)
	}
	return &Committer{generators: generators}, nil
}

// NewCommitterFromPoints builds a Committer from an already-derived
// generator vector, e.g. one decoded from a fixed file (spec §4.C: "either
// from a deterministic seed or from a fixed file").
func NewCommitterFromPoints(generators []*Point) *Committer {
	out := make([]*Point, len(generators))
	copy(out, generators)
	return &Committer{generators: out}
}

// Len returns N, the number of generators (the maximum scalar-vector length
// this Committer can commit to).
func (c *Committer) Len() int {
	return len(c.generators)
}

// ErrInputTooLong is returned by Commit when the scalar vector is longer
// than the generator vector.
var ErrInputTooLong = fmt.Errorf("group: input longer than generator vector")

// Commit returns Σ scalars[i]·generators[i] via multi-scalar multiplication.
// Fails with ErrInputTooLong if len(scalars) > c.Len(), per spec §4.C.
func (c *Committer) Commit(scalars []*Scalar) (*Point, error) {
	if len(scalars) > len(c.generators) {
		return nil, fmt.Errorf("group: %d scalars against %d generators: %w",
			len(scalars), len(c.generators), ErrInputTooLong)
	}
	if len(scalars) == 0 {
		return IdentityPoint(), nil
	}
	return MultiscalarMult(scalars, c.generators[:len(scalars)]), nil
}

// Generator returns the i-th generator. Used by tests exercising the
// commitment homomorphism property (P2) directly against known generators.
func (c *Committer) Generator(i int) *Point {
	return c.generators[i]
}

// Equal reports whether two committers carry the same generator vector,
// i.e. whether two nodes are configured for the same session (spec §4.C:
// "equality of two committers is equality of the generator vector").
func (c *Committer) Equal(o *Committer) bool {
	if len(c.generators) != len(o.generators) {
		return false
	}
	for i, g := range c.generators {
		if !g.Equal(o.generators[i]) {
			return false
		}
	}
	return true
}

// MarshalBinary produces the canonical encoding of the Committer: a
// big-endian uint32 generator count followed by each generator's canonical
// 32-byte point encoding, so that peers can agree on a committer out-of-band
// (spec §6, "bit-exact where peers must agree").
func (c *Committer) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4, 4+len(c.generators)*PointLen)
	binary.BigEndian.PutUint32(out, uint32(len(c.generators)))
	for _, g := range c.generators {
		out = append(out, g.Bytes()...)
	}
	return out, nil
}

// UnmarshalBinary parses the encoding produced by MarshalBinary.
func (c *Committer) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("group: committer encoding too short: %d bytes", len(data))
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) != uint64(n)*PointLen {
		return fmt.Errorf("group: committer encoding length mismatch: want %d generators, got %d bytes",
			n, len(data))
	}
	generators := make([]*Point, n)
	for i := uint32(0); i < n; i++ {
		pt, err := new(Point).SetCanonicalBytes(data[i*PointLen : (i+1)*PointLen])
		if err != nil {
			return fmt.Errorf("group: decoding generator %d: %w", i, err)
		}
		generators[i] = pt
	}
	c.generators = generators
	return nil
}

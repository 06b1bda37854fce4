package rlnc

import (
	"github.com/rlnc-core/rlnc/group"
	"github.com/rlnc-core/rlnc/wire"
)

// Message is what one Node sends to another: the full commitments vector
// (one Pedersen commitment per original chunk, unchanged for the life of a
// gossip round), a coding vector of length K, and the chunk bytes that
// coding vector claims to combine to. Grounded on original_source's
// node.rs Message/Chunk pair, flattened into one wire-serializable struct.
type Message struct {
	Commitments  []*group.Point
	Coefficients []*group.Scalar
	Chunk        []byte
}

// CommitmentsHash returns the digest Node.Receive compares against a
// previously-seen commitments vector before doing any group arithmetic
// (spec §4.F, "commitments mismatch is checked before anything else" — by
// far the cheapest of the fail-fast checks).
func (m *Message) CommitmentsHash() [32]byte {
	return wire.CommitmentsHash(m.Commitments)
}

// Verify checks the homomorphic opening: that Chunk, once split into
// scalar words under session's scheme, really is the linear combination
// Coefficients claims of the per-chunk commitments in Commitments. This is
// the same check spec §4.E assigns to Message::verify, expressed as one
// multiscalar multiplication per side:
//
//	Σ coefficients[i]·commitments[i]  ==  commit(wordsOf(chunk))
func (m *Message) Verify(session *Session) error {
	if len(m.Coefficients) != len(m.Commitments) {
		return wrapKind(KindInvalidMessage, "coefficients/commitments length mismatch",
			newError(KindInvalidMessage, "%d coefficients, %d commitments", len(m.Coefficients), len(m.Commitments)))
	}
	words, err := session.chunkToScalars(m.Chunk)
	if err != nil {
		return wrapKind(KindMalformedChunk, "decoding message chunk", err)
	}
	actual, err := session.Committer.Commit(words)
	if err != nil {
		return wrapKind(KindInvalidMessage, "committing message chunk", err)
	}
	expected := group.MultiscalarMult(m.Coefficients, m.Commitments)
	if !expected.Equal(actual) {
		return newError(KindInvalidMessage, "commitment does not open under claimed coefficients")
	}
	return nil
}

// MarshalBinary produces the canonical encoding spec §6 requires: the
// commitments vector, then the coefficients vector, then the length-
// prefixed chunk bytes, each using wire's fixed 32-byte element encodings.
func (m *Message) MarshalBinary() ([]byte, error) {
	out := wire.EncodePoints(nil, m.Commitments)
	out = wire.EncodeScalars(out, m.Coefficients)
	out = wire.EncodeBytes(out, m.Chunk)
	return out, nil
}

// UnmarshalBinary parses the encoding produced by MarshalBinary.
func (m *Message) UnmarshalBinary(data []byte) error {
	commitments, data, err := wire.DecodePoints(data)
	if err != nil {
		return wrapKind(KindInvalidMessage, "decoding commitments", err)
	}
	coefficients, data, err := wire.DecodeScalars(data)
	if err != nil {
		return wrapKind(KindInvalidMessage, "decoding coefficients", err)
	}
	chunk, _, err := wire.DecodeBytes(data)
	if err != nil {
		return wrapKind(KindInvalidMessage, "decoding chunk", err)
	}
	m.Commitments = commitments
	m.Coefficients = coefficients
	m.Chunk = chunk
	return nil
}

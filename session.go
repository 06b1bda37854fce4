package rlnc

import (
	"fmt"

	"github.com/rlnc-core/rlnc/chunkcodec"
	"github.com/rlnc-core/rlnc/group"
)

// Scheme selects which byte-to-scalar codec a Session uses, spec §4.B's
// two named schemes.
type Scheme int

const (
	// SchemePacked is the 63-word-to-64-scalar codec: near-zero overhead,
	// the default for production use.
	SchemePacked Scheme = iota
	// SchemeSimple is the 31-byte-to-1-scalar codec: simpler, one byte in
	// 32 wasted, useful for chunk lengths that aren't a multiple of
	// PackedBlockBytes.
	SchemeSimple
)

func (s Scheme) String() string {
	switch s {
	case SchemePacked:
		return "packed"
	case SchemeSimple:
		return "simple"
	default:
		return "unknown"
	}
}

// Session bundles the parameters every Node in a gossip round must agree
// on out-of-band: how many chunks a block is split into, how large each
// chunk is, which byte/scalar codec to use, and the Committer whose
// generator vector all Pedersen commitments in the round are computed
// against. This is the root package's stand-in for a config struct; there
// is no file or environment-variable loading, since every field here must
// be agreed with peers over the wire already (see Message.MarshalBinary's
// commitments vector), not read from a process environment.
type Session struct {
	K         int
	ChunkLen  int
	Scheme    Scheme
	Committer *group.Committer
}

// NewSession validates and returns a Session. The Committer's generator
// count must be at least the number of scalar words one chunk of ChunkLen
// bytes encodes to under Scheme, since every chunk is committed to
// individually (spec §4.C) and Commit rejects longer vectors.
func NewSession(k, chunkLen int, scheme Scheme, committer *group.Committer) (*Session, error) {
	if k <= 0 {
		return nil, newError(KindInvalidLength, "K must be positive, got %d", k)
	}
	if chunkLen <= 0 {
		return nil, newError(KindInvalidLength, "chunk length must be positive, got %d", chunkLen)
	}
	s := &Session{K: k, ChunkLen: chunkLen, Scheme: scheme, Committer: committer}
	probe := make([]byte, chunkLen)
	words, err := s.chunkToScalars(probe)
	if err != nil {
		return nil, wrapKind(KindInvalidLength, "chunk length incompatible with scheme", err)
	}
	if len(words) > committer.Len() {
		return nil, newError(KindInputTooLong, "chunk encodes to %d words, committer only has %d generators", len(words), committer.Len())
	}
	return s, nil
}

// chunkToScalars dispatches to the codec this Session was configured with.
func (s *Session) chunkToScalars(chunk []byte) ([]*group.Scalar, error) {
	switch s.Scheme {
	case SchemePacked:
		return chunkcodec.ChunkToScalarsPacked(chunk)
	case SchemeSimple:
		return chunkcodec.ChunkToScalarsSimple(chunk)
	default:
		return nil, fmt.Errorf("rlnc: unknown scheme %v", s.Scheme)
	}
}

// scalarsToChunk dispatches to the codec this Session was configured with.
func (s *Session) scalarsToChunk(scalars []*group.Scalar) ([]byte, error) {
	switch s.Scheme {
	case SchemePacked:
		return chunkcodec.ScalarsToChunkPacked(scalars)
	case SchemeSimple:
		return chunkcodec.ScalarsToChunkSimple(scalars)
	default:
		return nil, fmt.Errorf("rlnc: unknown scheme %v", s.Scheme)
	}
}

// BlockToChunks splits block into s.K chunks of s.ChunkLen bytes each
// (spec §4.F, the source node's first step before committing). block must
// be exactly s.K*s.ChunkLen bytes; see chunkcodec.BlockToChunks.
func (s *Session) BlockToChunks(block []byte) ([][]byte, error) {
	return chunkcodec.BlockToChunks(block, s.K, s.ChunkLen)
}

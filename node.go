package rlnc

import (
	"errors"
	"fmt"

	"github.com/rlnc-core/rlnc/chunkcodec"
	"github.com/rlnc-core/rlnc/echelon"
	"github.com/rlnc-core/rlnc/group"
	"github.com/rlnc-core/rlnc/wire"
)

// Option configures a Node at construction time.
type Option func(*Node)

// WithLogger attaches a structured logger; the default is a no-op logger.
func WithLogger(l Logger) Option {
	return func(n *Node) { n.logger = l }
}

// EnableSelfVerify makes Send check its own output against Verify before
// returning it. Go has no debug_assert!, so unlike the Rust prototype
// (which only pays this cost in debug builds) this is an explicit opt-in;
// it is cheap relative to network I/O and worth enabling in tests and in
// any gossip simulator driving many Nodes in one process.
func EnableSelfVerify() Option {
	return func(n *Node) { n.selfVerify = true }
}

// Node is one participant in a gossip round: either the source (which
// starts holding every original chunk) or a relay/receiver (which starts
// holding none and accumulates innovative chunks as Messages arrive).
// Grounded on original_source's node.rs Node, generalized from its fixed
// field layout into the Session-parameterized form spec §3 describes.
type Node struct {
	session     *Session
	commitments []*group.Point
	rows        *echelon.Echelon
	data        [][]byte
	logger      Logger
	selfVerify  bool
}

func newNode(session *Session, opts []Option) *Node {
	n := &Node{
		session: session,
		logger:  nopLogger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewSource splits block into session.K chunks, commits to each, and
// returns a Node that already holds every chunk (its echelon starts at the
// identity, per spec §9: "a source node's echelon is the identity
// matrix").
func NewSource(session *Session, block []byte, opts ...Option) (*Node, error) {
	n := newNode(session, opts)

	chunks, err := session.BlockToChunks(block)
	if err != nil {
		return nil, wrapKind(KindInvalidLength, "splitting block into chunks", err)
	}

	commitments := make([]*group.Point, session.K)
	for i, chunk := range chunks {
		words, err := session.chunkToScalars(chunk)
		if err != nil {
			return nil, wrapKind(KindInvalidLength, fmt.Sprintf("encoding chunk %d", i), err)
		}
		c, err := session.Committer.Commit(words)
		if err != nil {
			return nil, wrapKind(KindInputTooLong, fmt.Sprintf("committing chunk %d", i), err)
		}
		commitments[i] = c
	}

	n.commitments = commitments
	n.rows = echelon.NewIdentity(session.K)
	n.data = chunks
	n.logger.Info().Int("k", session.K).Msg("source node initialized")
	return n, nil
}

// NewReceiver returns a Node with no chunks yet, ready to accept Messages.
// If commitments is non-nil the Node is pinned to that commitments vector
// from the start (e.g. the source broadcast it out-of-band); otherwise the
// Node adopts whatever commitments vector its first accepted Message
// carries.
func NewReceiver(session *Session, commitments []*group.Point, opts ...Option) *Node {
	n := newNode(session, opts)
	n.commitments = commitments
	n.rows = echelon.New(session.K)
	return n
}

// Commitments returns the Node's commitments vector, or nil if it hasn't
// received any Message yet and wasn't constructed with one.
func (n *Node) Commitments() []*group.Point {
	return n.commitments
}

// IsFull reports whether the Node has accepted K independent chunks and
// can Decode.
func (n *Node) IsFull() bool {
	return n.rows.IsFull()
}

// Rank returns the number of independent chunks accepted so far.
func (n *Node) Rank() int {
	return n.rows.Rank()
}

// Chunks returns the raw chunk payloads accepted so far, in receipt order
// (index i corresponds to the i-th row of the node's echelon
// coefficients). Exposed for inspection by simulators and tests, mirroring
// original_source/src/node.rs's `Node::chunks()`.
func (n *Node) Chunks() [][]byte {
	return n.data
}

func randomWeights(n int) ([]*group.Scalar, error) {
	raw, err := chunkcodec.RandomU8Slice(n)
	if err != nil {
		return nil, fmt.Errorf("rlnc: drawing re-coding weights: %w", err)
	}
	out := make([]*group.Scalar, n)
	for i, b := range raw {
		out[i] = group.ScalarFromUint64(uint64(b))
	}
	return out, nil
}

// linearCombChunk decodes each row of data into scalar words, combines them
// with weights, and re-encodes the result: the chunk-bytes half of
// re-coding (spec §4.F's `linear_comb_chunk`).
func (n *Node) linearCombChunk(weights []*group.Scalar, data [][]byte) ([]byte, error) {
	combined, err := n.linearCombWords(weights, data)
	if err != nil {
		return nil, err
	}
	out, err := n.session.scalarsToChunk(combined)
	if err != nil {
		return nil, wrapKind(KindMalformedChunk, "re-encoding combined words", err)
	}
	return out, nil
}

func (n *Node) linearCombWords(weights []*group.Scalar, data [][]byte) ([]*group.Scalar, error) {
	if len(weights) != len(data) {
		return nil, fmt.Errorf("rlnc: %d weights for %d rows", len(weights), len(data))
	}
	var combined []*group.Scalar
	for i, w := range weights {
		words, err := n.session.chunkToScalars(data[i])
		if err != nil {
			return nil, wrapKind(KindMalformedChunk, fmt.Sprintf("decoding stored row %d", i), err)
		}
		if combined == nil {
			combined = make([]*group.Scalar, len(words))
			for c := range combined {
				combined[c] = group.NewScalar()
			}
		}
		term := group.NewScalar()
		for c, word := range words {
			term.Mul(w, word)
			combined[c].Add(combined[c], term)
		}
	}
	return combined, nil
}

// Send draws fresh random re-coding weights over the chunks accepted so
// far and returns the resulting Message. Fails with ErrEmpty if the Node
// has accepted nothing yet (spec §4.F: a Node with no rows has nothing to
// send).
func (n *Node) Send() (*Message, error) {
	rank := n.rows.Rank()
	if rank == 0 {
		return nil, ErrEmpty
	}

	weights, err := randomWeights(rank)
	if err != nil {
		return nil, err
	}
	coefficients, err := n.rows.CompoundScalars(weights)
	if err != nil {
		return nil, wrapKind(KindSingular, "computing compound coefficients", err)
	}
	chunk, err := n.linearCombChunk(weights, n.data)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Commitments:  n.commitments,
		Coefficients: coefficients,
		Chunk:        chunk,
	}

	if n.selfVerify {
		if err := msg.Verify(n.session); err != nil {
			return nil, wrapKind(KindInvalidMessage, "self-verify of outgoing message failed", err)
		}
	}

	n.logger.Debug().Int("rank", rank).Msg("sent message")
	return msg, nil
}

// Receive runs a Message through the fail-fast pipeline spec §4.F
// specifies: commitments mismatch (skipped if this Node hasn't pinned a
// commitments vector yet), then chunk-length mismatch, then cryptographic
// verification, then the rank check AddRow performs. A Message that fails
// any of these leaves the Node's state untouched: the commitments vector
// is only adopted once every check, including AddRow, has succeeded, so a
// forged or dependent first message can never pin a virgin receiver to a
// bogus commitments vector. A Message that fails KindLinearlyDependentChunk
// carried no new information and is expected to be silently dropped by
// most callers; every other error indicates a malformed or dishonest peer.
func (n *Node) Receive(msg *Message) error {
	if n.commitments != nil && msg.CommitmentsHash() != wire.CommitmentsHash(n.commitments) {
		return wrapKind(KindExistingCommitmentsMismatch, "commitments vector disagrees with prior messages",
			fmt.Errorf("node has %d commitments, message has %d", len(n.commitments), len(msg.Commitments)))
	}

	if len(msg.Chunk) != n.session.ChunkLen {
		return wrapKind(KindExistingChunksMismatch, "chunk length disagrees with session",
			fmt.Errorf("want %d bytes, got %d", n.session.ChunkLen, len(msg.Chunk)))
	}

	if err := msg.Verify(n.session); err != nil {
		return err
	}

	if err := n.rows.AddRow(msg.Coefficients); err != nil {
		if errors.Is(err, echelon.ErrLinearlyDependentChunk) {
			return ErrLinearlyDependentChunk
		}
		return wrapKind(KindSingular, "adding row to echelon", err)
	}

	if n.commitments == nil {
		n.commitments = msg.Commitments
	}
	n.data = append(n.data, msg.Chunk)

	n.logger.Debug().Int("rank", n.rows.Rank()).Msg("accepted message")
	return nil
}

// Decode reconstructs the original block once IsFull reports true.
// Fails with ErrUnderdetermined otherwise.
func (n *Node) Decode() ([]byte, error) {
	inv, err := n.rows.Inverse()
	if err != nil {
		if errors.Is(err, echelon.ErrUnderdetermined) {
			return nil, ErrUnderdetermined
		}
		return nil, wrapKind(KindSingular, "inverting echelon", err)
	}

	block := make([]byte, 0, n.session.K*n.session.ChunkLen)
	for i := 0; i < n.session.K; i++ {
		chunk, err := n.linearCombChunk(inv[i], n.data)
		if err != nil {
			return nil, wrapKind(KindMalformedChunk, fmt.Sprintf("reconstructing chunk %d", i), err)
		}
		block = append(block, chunk...)
	}
	return block, nil
}

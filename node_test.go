package rlnc

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/rlnc-core/rlnc/group"
)

func newTestSession(t *testing.T, k, chunkLen int) *Session {
	t.Helper()
	committer, err := group.NewCommitterFromSeed([]byte("node-test-seed"), chunkLen/31+1)
	if err != nil {
		t.Fatalf("NewCommitterFromSeed: %v", err)
	}
	session, err := NewSession(k, chunkLen, SchemeSimple, committer)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

func randomBlock(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestSourceSendSelfVerifies(t *testing.T) {
	session := newTestSession(t, 4, 31)
	block := randomBlock(t, 4*31)

	source, err := NewSource(session, block, EnableSelfVerify())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	if _, err := source.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSendReceiveDecodeRecoversBlock(t *testing.T) {
	session := newTestSession(t, 4, 31)
	block := randomBlock(t, 4*31)

	source, err := NewSource(session, block, EnableSelfVerify())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	receiver := NewReceiver(session, source.Commitments())

	for !receiver.IsFull() {
		msg, err := source.Send()
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if err := receiver.Receive(msg); err != nil && !errors.Is(err, ErrLinearlyDependentChunk) {
			t.Fatalf("Receive: %v", err)
		}
	}

	decoded, err := receiver.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, block) {
		t.Error("decoded block does not match original")
	}
}

func TestRelayRecodesAndForwards(t *testing.T) {
	session := newTestSession(t, 4, 31)
	block := randomBlock(t, 4*31)

	source, err := NewSource(session, block)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	relay := NewReceiver(session, source.Commitments())
	for relay.Rank() < 2 {
		msg, err := source.Send()
		if err != nil {
			t.Fatalf("Send from source: %v", err)
		}
		if err := relay.Receive(msg); err != nil && !errors.Is(err, ErrLinearlyDependentChunk) {
			t.Fatalf("relay Receive: %v", err)
		}
	}

	final := NewReceiver(session, source.Commitments())
	for !final.IsFull() {
		msg, err := relay.Send()
		if err != nil {
			t.Fatalf("Send from relay: %v", err)
		}
		if err := final.Receive(msg); err != nil && !errors.Is(err, ErrLinearlyDependentChunk) {
			t.Fatalf("final Receive: %v", err)
		}
		if relay.Rank() < session.K {
			// Top up the relay too, otherwise it can only ever offer
			// combinations of the two rows it started with.
			msg, err := source.Send()
			if err != nil {
				t.Fatalf("Send from source: %v", err)
			}
			_ = relay.Receive(msg)
		}
	}

	decoded, err := final.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, block) {
		t.Error("decoded block does not match original after a relay hop")
	}
}

func TestReceiveRejectsCommitmentsMismatch(t *testing.T) {
	session := newTestSession(t, 2, 31)
	blockA := randomBlock(t, 2*31)
	blockB := randomBlock(t, 2*31)

	sourceA, err := NewSource(session, blockA)
	if err != nil {
		t.Fatalf("NewSource A: %v", err)
	}
	sourceB, err := NewSource(session, blockB)
	if err != nil {
		t.Fatalf("NewSource B: %v", err)
	}

	receiver := NewReceiver(session, sourceA.Commitments())

	msgB, err := sourceB.Send()
	if err != nil {
		t.Fatalf("Send B: %v", err)
	}

	err = receiver.Receive(msgB)
	if !errors.Is(err, ErrExistingCommitmentsMismatch) {
		t.Errorf("expected ErrExistingCommitmentsMismatch, got %v", err)
	}
}

func TestReceiveRejectsChunkLengthMismatch(t *testing.T) {
	session := newTestSession(t, 3, 31)
	block := randomBlock(t, 3*31)

	source, err := NewSource(session, block)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	receiver := NewReceiver(session, source.Commitments())

	msg, err := source.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg.Chunk = msg.Chunk[:len(msg.Chunk)-1]

	if err := receiver.Receive(msg); !errors.Is(err, ErrExistingChunksMismatch) {
		t.Errorf("expected ErrExistingChunksMismatch, got %v", err)
	}
}

// TestReceiveRejectionDoesNotPinCommitments guards against a virgin
// receiver adopting a forged message's commitments vector before that
// message is actually verified: if it did, every subsequent legitimate
// message would then fail with ErrExistingCommitmentsMismatch.
func TestReceiveRejectionDoesNotPinCommitments(t *testing.T) {
	session := newTestSession(t, 2, 31)
	blockA := randomBlock(t, 2*31)
	blockB := randomBlock(t, 2*31)

	sourceA, err := NewSource(session, blockA)
	if err != nil {
		t.Fatalf("NewSource A: %v", err)
	}
	sourceB, err := NewSource(session, blockB)
	if err != nil {
		t.Fatalf("NewSource B: %v", err)
	}

	receiver := NewReceiver(session, nil)

	forged, err := sourceA.Send()
	if err != nil {
		t.Fatalf("Send A: %v", err)
	}
	forged.Commitments = sourceB.Commitments()

	if err := receiver.Receive(forged); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage for forged commitments, got %v", err)
	}
	if receiver.Commitments() != nil {
		t.Fatal("rejected message must not pin the receiver's commitments vector")
	}

	legit, err := sourceA.Send()
	if err != nil {
		t.Fatalf("Send A (legit): %v", err)
	}
	if err := receiver.Receive(legit); err != nil {
		t.Fatalf("legitimate message rejected after a forged one: %v", err)
	}
}

func TestReceiveRejectsTamperedChunk(t *testing.T) {
	session := newTestSession(t, 2, 31)
	block := randomBlock(t, 2*31)

	source, err := NewSource(session, block)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	receiver := NewReceiver(session, source.Commitments())

	msg, err := source.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg.Chunk[0] ^= 0xFF

	if err := receiver.Receive(msg); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestReceiveLinearlyDependentChunkIsNonFatal(t *testing.T) {
	session := newTestSession(t, 2, 31)
	block := randomBlock(t, 2*31)

	source, err := NewSource(session, block)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	receiver := NewReceiver(session, source.Commitments())

	msg, err := source.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := receiver.Receive(msg); err != nil {
		t.Fatalf("first Receive: %v", err)
	}

	// A fresh Message built from the same encoded bytes is, bit for bit,
	// the same coding vector: still in the span of what was just accepted.
	var replay Message
	encoded, err := msg.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if err := replay.UnmarshalBinary(encoded); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if err := receiver.Receive(&replay); !errors.Is(err, ErrLinearlyDependentChunk) {
		t.Errorf("expected ErrLinearlyDependentChunk, got %v", err)
	}
}

func TestSendOnEmptyNodeReturnsEmpty(t *testing.T) {
	session := newTestSession(t, 2, 31)
	receiver := NewReceiver(session, nil)

	if _, err := receiver.Send(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestDecodeBeforeFullReturnsUnderdetermined(t *testing.T) {
	session := newTestSession(t, 2, 31)
	block := randomBlock(t, 2*31)

	source, err := NewSource(session, block)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	receiver := NewReceiver(session, source.Commitments())

	msg, err := source.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := receiver.Receive(msg); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	if _, err := receiver.Decode(); !errors.Is(err, ErrUnderdetermined) {
		t.Errorf("expected ErrUnderdetermined, got %v", err)
	}
}

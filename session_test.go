package rlnc

import (
	"errors"
	"testing"

	"github.com/rlnc-core/rlnc/chunkcodec"
	"github.com/rlnc-core/rlnc/group"
)

func TestNewSessionRejectsNonPositiveK(t *testing.T) {
	committer, err := group.NewCommitterFromSeed([]byte("s"), 4)
	if err != nil {
		t.Fatalf("NewCommitterFromSeed: %v", err)
	}
	if _, err := NewSession(0, 31, SchemeSimple, committer); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength for K=0, got %v", err)
	}
}

func TestNewSessionRejectsUndersizedCommitter(t *testing.T) {
	committer, err := group.NewCommitterFromSeed([]byte("s"), 1)
	if err != nil {
		t.Fatalf("NewCommitterFromSeed: %v", err)
	}
	// A 2016-byte packed chunk needs 64 generators; this committer has 1.
	if _, err := NewSession(1, chunkcodec.PackedBlockBytes, SchemePacked, committer); !errors.Is(err, ErrInputTooLong) {
		t.Errorf("expected ErrInputTooLong, got %v", err)
	}
}

func TestSchemeString(t *testing.T) {
	if SchemePacked.String() != "packed" {
		t.Errorf("SchemePacked.String() = %q", SchemePacked.String())
	}
	if SchemeSimple.String() != "simple" {
		t.Errorf("SchemeSimple.String() = %q", SchemeSimple.String())
	}
}

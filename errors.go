package rlnc

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into the closed taxonomy spec §7 defines. New
// values are never added silently: every Kind here corresponds to a named
// failure mode a caller is expected to branch on with errors.Is.
type Kind int

const (
	// KindInvalidLength marks a chunk or byte string whose length doesn't
	// match what the session's codec scheme requires.
	KindInvalidLength Kind = iota
	// KindInputTooLong marks a scalar vector longer than a Committer's
	// generator vector.
	KindInputTooLong
	// KindExistingCommitmentsMismatch marks a Message whose commitments
	// vector disagrees with the commitments this Node already holds.
	KindExistingCommitmentsMismatch
	// KindExistingChunksMismatch marks a Message whose chunk data length
	// disagrees with the session's chunk length, guarding the Node's
	// accumulated chunk payloads against heterogeneous lengths.
	KindExistingChunksMismatch
	// KindInvalidMessage marks a Message that fails the commitment-opening
	// check: the claimed chunk data does not open the claimed commitment
	// under the claimed coefficients.
	KindInvalidMessage
	// KindLinearlyDependentChunk marks a Message whose coefficient vector
	// added no new rank to the receiving Node's echelon. Non-fatal; callers
	// ordinarily treat it as "nothing to do" rather than surfacing it.
	KindLinearlyDependentChunk
	// KindUnderdetermined marks a Decode attempt before the Node has
	// accepted K independent chunks.
	KindUnderdetermined
	// KindSingular marks an internal echelon invariant violation: a pivot
	// entry that should be nonzero by construction was found to be zero.
	KindSingular
	// KindMalformedChunk marks a scalar vector that cannot correspond to
	// any byte chunk the codec scheme could have produced.
	KindMalformedChunk
	// KindEmpty marks an operation attempted against a Node with no chunks
	// and no accepted rows, such as Send on a freshly constructed pure
	// receiver.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindInvalidLength:
		return "invalid_length"
	case KindInputTooLong:
		return "input_too_long"
	case KindExistingCommitmentsMismatch:
		return "existing_commitments_mismatch"
	case KindExistingChunksMismatch:
		return "existing_chunks_mismatch"
	case KindInvalidMessage:
		return "invalid_message"
	case KindLinearlyDependentChunk:
		return "linearly_dependent_chunk"
	case KindUnderdetermined:
		return "underdetermined"
	case KindSingular:
		return "singular"
	case KindMalformedChunk:
		return "malformed_chunk"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error is the error type every exported operation in this module returns
// on failure. Kind is meant for programmatic branching (errors.As plus a
// switch on Kind, or errors.Is against one of the sentinel values below);
// the wrapped Err carries the human-readable detail.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rlnc: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is one of the Kind sentinels below with a
// matching Kind, so callers can write errors.Is(err, rlnc.ErrInvalidMessage)
// without caring whether the error was wrapped further upstream.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok {
		return false
	}
	return sentinel.Kind == e.Kind && sentinel.Err == nil
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Sentinel values usable with errors.Is(err, rlnc.ErrInvalidMessage), one
// per Kind. They carry no detail message; compare only the Kind field.
var (
	ErrInvalidLength               = &Error{Kind: KindInvalidLength}
	ErrInputTooLong                = &Error{Kind: KindInputTooLong}
	ErrExistingCommitmentsMismatch = &Error{Kind: KindExistingCommitmentsMismatch}
	ErrExistingChunksMismatch      = &Error{Kind: KindExistingChunksMismatch}
	ErrInvalidMessage              = &Error{Kind: KindInvalidMessage}
	ErrLinearlyDependentChunk      = &Error{Kind: KindLinearlyDependentChunk}
	ErrUnderdetermined             = &Error{Kind: KindUnderdetermined}
	ErrSingular                    = &Error{Kind: KindSingular}
	ErrMalformedChunk              = &Error{Kind: KindMalformedChunk}
	ErrEmpty                       = &Error{Kind: KindEmpty}
)

// wrapKind joins err into a new *Error of the given Kind, preserving err in
// the error chain so errors.Is/errors.As against the original cause (e.g. a
// group or echelon sentinel) still succeeds.
func wrapKind(kind Kind, context string, err error) *Error {
	return &Error{Kind: kind, Err: errors.Join(fmt.Errorf("%s", context), err)}
}

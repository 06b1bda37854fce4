// Package chunkcodec converts raw byte chunks to and from vectors of field
// scalars, since the Pedersen commitment and the echelon matrix both only
// know how to operate on group.Scalar values. It is a direct port of
// original_source's src/blocks.rs, offering the same two schemes: a packed
// 63-word-to-64-scalar scheme that wastes under 0.2% of space, and a simple
// 31-byte-to-1-scalar scheme that is easier to reason about but wastes one
// byte in 32.
package chunkcodec

import (
	"crypto/rand"
	"fmt"

	"github.com/rlnc-core/rlnc/group"
)

// PackedWordsPerBlock is the number of 32-byte words a packed super-block
// holds; their stripped top nibbles are packed into one additional scalar.
const PackedWordsPerBlock = 63

// PackedBlockBytes is the byte size of one packed super-block
// (63 words × 32 bytes).
const PackedBlockBytes = PackedWordsPerBlock * 32

// PackedScalarsPerBlock is the number of scalars one packed super-block
// encodes to: the 63 truncated words plus one tail-bits scalar.
const PackedScalarsPerBlock = PackedWordsPerBlock + 1

// SimpleWordBytes is the byte size of one simple-scheme word.
const SimpleWordBytes = 31

// ErrInvalidLength is returned when an input's length isn't a multiple of
// the scheme's natural block size.
var ErrInvalidLength = fmt.Errorf("chunkcodec: invalid input length")

// ErrMalformedChunk is returned when decoding a scalar vector whose length
// isn't a multiple of the scheme's scalars-per-block. The tail-bits scalar
// is not validated: its nibbles are taken as they are.
var ErrMalformedChunk = fmt.Errorf("chunkcodec: malformed chunk")

// ChunkToScalarsPacked encodes chunk (length must be a multiple of
// PackedBlockBytes) into the packed scheme: for every 63 32-byte words, the
// top 4 bits of each word (which would otherwise push the value past the
// field's ~252-bit range) are stripped and collected into one extra
// "tail-bits" scalar carrying all 63 nibbles (63×4 = 252 bits, itself a
// valid scalar).
func ChunkToScalarsPacked(chunk []byte) ([]*group.Scalar, error) {
	if len(chunk)%PackedBlockBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(chunk), PackedBlockBytes)
	}
	numBlocks := len(chunk) / PackedBlockBytes
	out := make([]*group.Scalar, 0, numBlocks*PackedScalarsPerBlock)

	for b := 0; b < numBlocks; b++ {
		block := chunk[b*PackedBlockBytes : (b+1)*PackedBlockBytes]
		tail := make([]byte, 32)
		for w := 0; w < PackedWordsPerBlock; w++ {
			word := make([]byte, 32)
			copy(word, block[w*32:(w+1)*32])
			nibble := word[31] >> 4
			word[31] &= 0x0F

			s, err := new(group.Scalar).SetCanonicalBytes(word)
			if err != nil {
				return nil, fmt.Errorf("chunkcodec: word %d of block %d: %w", w, b, err)
			}
			out = append(out, s)

			setNibble(tail, w, nibble)
		}
		tailScalar, err := new(group.Scalar).SetCanonicalBytes(tail)
		if err != nil {
			return nil, fmt.Errorf("chunkcodec: tail scalar of block %d: %w", b, err)
		}
		out = append(out, tailScalar)
	}
	return out, nil
}

// ScalarsToChunkPacked reverses ChunkToScalarsPacked.
func ScalarsToChunkPacked(scalars []*group.Scalar) ([]byte, error) {
	if len(scalars)%PackedScalarsPerBlock != 0 {
		return nil, fmt.Errorf("%w: %d scalars is not a multiple of %d", ErrMalformedChunk, len(scalars), PackedScalarsPerBlock)
	}
	numBlocks := len(scalars) / PackedScalarsPerBlock
	out := make([]byte, 0, numBlocks*PackedBlockBytes)

	for b := 0; b < numBlocks; b++ {
		base := b * PackedScalarsPerBlock
		tail := scalars[base+PackedWordsPerBlock].Bytes()
		for w := 0; w < PackedWordsPerBlock; w++ {
			word := scalars[base+w].Bytes()
			if len(word) != 32 {
				return nil, fmt.Errorf("%w: word %d of block %d has length %d", ErrMalformedChunk, w, b, len(word))
			}
			nibble := nibbleAt(tail, w)
			word[31] |= nibble << 4
			out = append(out, word...)
		}
	}
	return out, nil
}

// setNibble packs nibble (the low 4 bits are used) into nibble slot i
// (bits 4i..4i+3) of the 252-bit tail-bits buffer, least-significant nibble
// first.
func setNibble(buf []byte, i int, nibble byte) {
	byteIdx := i / 2
	if i%2 == 0 {
		buf[byteIdx] |= nibble & 0x0F
	} else {
		buf[byteIdx] |= (nibble & 0x0F) << 4
	}
}

func nibbleAt(buf []byte, i int) byte {
	byteIdx := i / 2
	if byteIdx >= len(buf) {
		return 0
	}
	if i%2 == 0 {
		return buf[byteIdx] & 0x0F
	}
	return (buf[byteIdx] >> 4) & 0x0F
}

// ChunkToScalarsSimple encodes chunk (length must be a multiple of
// SimpleWordBytes) into the simple scheme: each 31-byte word is
// zero-extended to 32 bytes, which is always a valid scalar encoding since
// 31 bytes is only 248 bits. Wastes one byte in every 32 but needs no
// tail-bits bookkeeping.
func ChunkToScalarsSimple(chunk []byte) ([]*group.Scalar, error) {
	if len(chunk)%SimpleWordBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(chunk), SimpleWordBytes)
	}
	n := len(chunk) / SimpleWordBytes
	out := make([]*group.Scalar, n)
	for i := 0; i < n; i++ {
		word := make([]byte, 32)
		copy(word, chunk[i*SimpleWordBytes:(i+1)*SimpleWordBytes])
		s, err := new(group.Scalar).SetCanonicalBytes(word)
		if err != nil {
			return nil, fmt.Errorf("chunkcodec: word %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// ScalarsToChunkSimple reverses ChunkToScalarsSimple.
func ScalarsToChunkSimple(scalars []*group.Scalar) ([]byte, error) {
	out := make([]byte, 0, len(scalars)*SimpleWordBytes)
	for i, s := range scalars {
		word := s.Bytes()
		if len(word) != 32 {
			return nil, fmt.Errorf("%w: word %d has length %d", ErrMalformedChunk, i, len(word))
		}
		out = append(out, word[:SimpleWordBytes]...)
	}
	return out, nil
}

// RandomU8Slice draws n cryptographically random bytes, embeddable as field
// scalars one-per-byte via group.ScalarFromUint64. A Node draws one such
// byte per accepted row as its re-coding weight on every Send (spec §4.F),
// mirroring original_source/src/blocks.rs's `random_u8_slice`.
func RandomU8Slice(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("chunkcodec: drawing random bytes: %w", err)
	}
	return buf, nil
}

// BlockToChunks splits block into K equal-size chunks of chunkLen bytes
// each. block must be exactly K*chunkLen bytes; a block of any other length
// fails with ErrInvalidLength naming the offending modulus, matching
// original_source's block_to_chunks rather than silently padding. K and
// chunkLen are the two parameters a source node fixes for a session before
// coding begins (spec §3, Node invariants).
func BlockToChunks(block []byte, k, chunkLen int) ([][]byte, error) {
	if k <= 0 || chunkLen <= 0 {
		return nil, fmt.Errorf("chunkcodec: invalid K=%d or chunkLen=%d", k, chunkLen)
	}
	want := k * chunkLen
	if len(block) != want {
		return nil, fmt.Errorf("%w: block is %d bytes, want exactly %d (K=%d * chunkLen=%d)",
			ErrInvalidLength, len(block), want, k, chunkLen)
	}
	chunks := make([][]byte, k)
	for i := 0; i < k; i++ {
		chunk := make([]byte, chunkLen)
		copy(chunk, block[i*chunkLen:(i+1)*chunkLen])
		chunks[i] = chunk
	}
	return chunks, nil
}

// Package rlnc implements random linear network coding over a prime-order
// group with Pedersen-style homomorphic vector commitments, so that a
// gossiping peer can verify a re-coded chunk came from the original block
// without ever seeing the whole block.
//
// A source Node splits a block into K chunks, commits to each chunk
// (group.Committer), and forwards randomly re-coded combinations
// (Node.Send). Any relay that accepts K independent, verified combinations
// (Node.Receive, Node.IsFull) can recover the original block (Node.Decode),
// and can itself re-code and forward before reaching full rank.
package rlnc

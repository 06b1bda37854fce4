// Package echelon maintains the incremental row-reduced coefficient matrix
// a Node needs to recognize innovative chunks and, once full rank, recover
// the original data. It is the direct Go counterpart of original_source's
// `Eschelon`, grounded on matrix.rs's add_row/compound_scalars/inverse.
package echelon

import (
	"errors"
	"fmt"

	"github.com/rlnc-core/rlnc/group"
)

// ErrLinearlyDependentChunk is returned by AddRow when the offered row adds
// no new information to the matrix. Per spec §7 this is non-fatal and is
// ordinarily swallowed by the caller (the chunk is simply not innovative).
var ErrLinearlyDependentChunk = errors.New("echelon: linearly dependent chunk")

// ErrUnderdetermined is returned by Inverse when fewer than K independent
// rows have been accepted.
var ErrUnderdetermined = errors.New("echelon: underdetermined, fewer than K independent rows")

// ErrSingular is returned by Inverse if a pivot entry is unexpectedly zero.
// This indicates a bug in AddRow's bookkeeping rather than a caller error,
// since AddRow never inserts a row whose pivot entry is zero.
var ErrSingular = errors.New("echelon: singular pivot, internal invariant violated")

// Echelon incrementally row-reduces the coefficient vectors of accepted
// chunks. coefficients holds each accepted row exactly as received, in
// receipt order; echelon[i]/transform[i]/pivots[i] describe the i-th
// accepted row once AddRow has folded it in, such that
//
//	transform[i] · coefficients == echelon[i]
//
// AddRow only ever eliminates a new row against pivots that already exist
// (a forward walk); it never reaches back into previously accepted rows.
// echelon[i] is therefore only guaranteed clear of the pivot columns of
// rows accepted *before* it, not rows accepted after — the matrix is not
// (yet) fully reduced. Rows stay in receipt order: they are not reordered
// by pivot column, so pivots[] is not sorted and the rows form a
// row-echelon matrix only after sorting them by pivot. transform stays a fixed K
// columns wide from the moment a row is accepted, one column per eventual
// coefficients row (zero in columns whose coefficients row hasn't arrived
// yet); it never grows as later rows arrive. The remaining back-
// substitution, and the one division per row, happen lazily in Inverse,
// mirroring original_source's matrix.rs (add_row only forward-reduces;
// inverse does the rest) per spec §4.D/§9's no-unit-diagonal rationale.
type Echelon struct {
	k            int
	coefficients [][]*group.Scalar
	echelon      [][]*group.Scalar
	transform    [][]*group.Scalar
	pivots       []int
}

// New returns an empty K-column echelon, as used by a pure receiver node.
func New(k int) *Echelon {
	return &Echelon{k: k}
}

// NewIdentity returns a K-column echelon already populated with the K×K
// identity, as used by a source node: it holds every original chunk
// directly, with coefficients row i equal to the i-th standard basis
// vector, mirroring the Rust prototype's `Eschelon::new_identity`.
func NewIdentity(k int) *Echelon {
	e := &Echelon{k: k}
	for i := 0; i < k; i++ {
		row := make([]*group.Scalar, k)
		for c := range row {
			if c == i {
				row[c] = group.OneScalar()
			} else {
				row[c] = group.NewScalar()
			}
		}
		coeffRow := cloneRow(row)
		transformRow := make([]*group.Scalar, k)
		for c := range transformRow {
			transformRow[c] = group.NewScalar()
		}
		transformRow[i] = group.OneScalar()

		e.coefficients = append(e.coefficients, coeffRow)
		e.echelon = append(e.echelon, row)
		e.transform = append(e.transform, transformRow)
		e.pivots = append(e.pivots, i)
	}
	return e
}

// K returns the column width (the number of chunks the session was
// configured for).
func (e *Echelon) K() int {
	return e.k
}

// Rank returns the number of independent rows accepted so far.
func (e *Echelon) Rank() int {
	return len(e.echelon)
}

// Coefficients returns the raw accepted rows in receipt order, for
// inspection by tests verifying the witness invariant
// (transform · coefficients == echelon) after each AddRow call.
func (e *Echelon) Coefficients() [][]*group.Scalar {
	return e.coefficients
}

// EchelonRows returns the forward-reduced rows, in receipt order.
func (e *Echelon) EchelonRows() [][]*group.Scalar {
	return e.echelon
}

// Transform returns, for each accepted row, the K-wide combination of
// coefficients rows that produces the corresponding EchelonRows entry.
func (e *Echelon) Transform() [][]*group.Scalar {
	return e.transform
}

// IsFull reports whether enough independent rows have been accepted to
// decode: rank == K.
func (e *Echelon) IsFull() bool {
	return len(e.echelon) == e.k
}

func cloneRow(row []*group.Scalar) []*group.Scalar {
	out := make([]*group.Scalar, len(row))
	for i, s := range row {
		out[i] = s.Clone()
	}
	return out
}

// AddRow offers a new coefficient vector (length K) to the matrix. If row
// is linearly independent of every row accepted so far it is folded into
// coefficients/echelon/transform, appended at the next index, and AddRow
// returns nil; the caller should then store the chunk data alongside it at
// that same (growing) index. If row lies in the span of what's already
// been accepted, AddRow leaves the matrix untouched and returns
// ErrLinearlyDependentChunk.
//
// The new row is only ever eliminated against pivots that already exist
// (a forward walk over previously accepted rows); it is never used to
// clean up those earlier rows in turn. That back-substitution is deferred
// to Inverse.
func (e *Echelon) AddRow(row []*group.Scalar) error {
	if len(row) != e.k {
		return fmt.Errorf("echelon: row has %d columns, want %d", len(row), e.k)
	}

	working := cloneRow(row)
	// workingTransform expresses `working` as a combination of coefficients
	// rows, one column per eventual coefficients row: this prospective row
	// starts as coefficient 1 on itself (at the index it would occupy in
	// coefficients) and 0 everywhere else, before any elimination.
	workingTransform := make([]*group.Scalar, e.k)
	for i := range workingTransform {
		workingTransform[i] = group.NewScalar()
	}
	if len(e.coefficients) < e.k {
		workingTransform[len(e.coefficients)] = group.OneScalar()
	}

	for i, pivotCol := range e.pivots {
		if working[pivotCol].IsZero() {
			continue
		}
		pivotVal := e.echelon[i][pivotCol]
		coeff := working[pivotCol]
		eliminateRow(working, e.echelon[i], pivotVal, coeff)
		eliminateRow(workingTransform, e.transform[i], pivotVal, coeff)
	}

	pivotCol, ok := firstNonzero(working)
	if !ok {
		return ErrLinearlyDependentChunk
	}

	e.coefficients = append(e.coefficients, cloneRow(row))
	e.echelon = append(e.echelon, working)
	e.transform = append(e.transform, workingTransform)
	e.pivots = append(e.pivots, pivotCol)

	return nil
}

// eliminateRow computes dst = pivotVal*dst - coeff*src in place, the
// cross-multiplication used in place of division-then-subtract so that no
// inversion happens until Inverse is called.
func eliminateRow(dst, src []*group.Scalar, pivotVal, coeff *group.Scalar) {
	tmp := group.NewScalar()
	for c := range dst {
		var srcC *group.Scalar
		if c < len(src) {
			srcC = src[c]
		} else {
			srcC = group.NewScalar()
		}
		scaledDst := group.NewScalar().Mul(pivotVal, dst[c])
		tmp.Mul(coeff, srcC)
		dst[c] = group.NewScalar().Sub(scaledDst, tmp)
	}
}

func firstNonzero(row []*group.Scalar) (int, bool) {
	for i, s := range row {
		if !s.IsZero() {
			return i, true
		}
	}
	return 0, false
}

// CompoundScalars returns Σ weights[i]·coefficients[i] over the rows
// accepted so far, the coefficient vector a forwarding node attaches to a
// re-coded outgoing chunk. weights is typically drawn fresh per send (see
// spec §4.F); len(weights) must equal Rank().
func (e *Echelon) CompoundScalars(weights []*group.Scalar) ([]*group.Scalar, error) {
	if len(weights) != len(e.coefficients) {
		return nil, fmt.Errorf("echelon: %d weights for %d accepted rows", len(weights), len(e.coefficients))
	}
	out := make([]*group.Scalar, e.k)
	for c := range out {
		out[c] = group.NewScalar()
	}
	term := group.NewScalar()
	for i, w := range weights {
		row := e.coefficients[i]
		for c := range out {
			term.Mul(w, row[c])
			out[c].Add(out[c], term)
		}
	}
	return out, nil
}

// Inverse returns the K×K matrix M such that M applied to the accepted
// coefficient rows (in receipt order) recovers the original basis: decoding
// a full echelon computes original chunk i as Σ_j M[i][j]·data[j], where
// data[j] is the payload stored alongside coefficients[j]. Requires
// IsFull().
//
// AddRow only ever forward-reduces, so by the time the matrix is full,
// echelon[i] may still hold nonzero entries in the pivot columns of rows
// accepted after it. This back-substitutes those out, walking rows from
// the most recently accepted to the first: row K-1 was eliminated against
// every other pivot already and needs no further work, so it is safe to
// use it to clear its pivot column out of every earlier row, then move on
// to row K-2, and so on. Each row's single division (the deferred
// inversion of its pivot) happens exactly once, at the end.
func (e *Echelon) Inverse() ([][]*group.Scalar, error) {
	if !e.IsFull() {
		return nil, ErrUnderdetermined
	}

	reducedEchelon := make([][]*group.Scalar, e.k)
	reducedTransform := make([][]*group.Scalar, e.k)
	for i := 0; i < e.k; i++ {
		reducedEchelon[i] = cloneRow(e.echelon[i])
		reducedTransform[i] = cloneRow(e.transform[i])
	}

	for i := e.k - 1; i >= 0; i-- {
		pivotCol := e.pivots[i]
		pivotVal := reducedEchelon[i][pivotCol]
		if pivotVal.IsZero() {
			return nil, ErrSingular
		}
		for j := 0; j < i; j++ {
			coeff := reducedEchelon[j][pivotCol]
			if coeff.IsZero() {
				continue
			}
			eliminateRow(reducedEchelon[j], reducedEchelon[i], pivotVal, coeff)
			eliminateRow(reducedTransform[j], reducedTransform[i], pivotVal, coeff)
		}
	}

	out := make([][]*group.Scalar, e.k)
	for i := 0; i < e.k; i++ {
		pivotVal := reducedEchelon[i][e.pivots[i]]
		if pivotVal.IsZero() {
			return nil, ErrSingular
		}
		inv := group.NewScalar().Invert(pivotVal)
		row := make([]*group.Scalar, len(reducedTransform[i]))
		for c, t := range reducedTransform[i] {
			row[c] = group.NewScalar().Mul(inv, t)
		}
		out[e.pivots[i]] = row
	}
	return out, nil
}

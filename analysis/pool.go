package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Reduction selects how a sequence of records is reduced by pairwise pooling.
// Both reductions are algebraically equivalent; they differ only in rounding.
type Reduction string

const (
	// ReduceFold pools left to right: pool(pool(pool(r0, r1), r2), ...).
	ReduceFold Reduction = "fold"
	// ReduceTree pools halves recursively, which keeps operand counts balanced on long inputs.
	ReduceTree Reduction = "tree"
)

var validReductions = map[Reduction]bool{
	ReduceFold: true,
	ReduceTree: true,
}

// IsValidReduction reports whether name is a recognized reduction.
func IsValidReduction(name string) bool {
	return validReductions[Reduction(name)]
}

// moments is the population (biased) form of a record's return statistics.
// It only exists between the entry and exit conversions of a pooling call.
type moments struct {
	mu   []float64
	pvar []float64
	n    []float64
}

// toMoments converts an unbiased record into population moments: σ² = ((n-1)/n)·s².
func toMoments(r Record) (moments, error) {
	m := moments{
		mu:   append([]float64(nil), r.Mu...),
		pvar: make([]float64, r.Len()),
		n:    append([]float64(nil), r.N...),
	}
	for i, n := range r.N {
		if n <= 0 {
			return moments{}, fmt.Errorf("%w: element %d has count %g", ErrDegenerateCount, i, n)
		}
		m.pvar[i] = (n - 1) / n * r.Var[i]
	}
	return m, nil
}

// toSample re-expands population variances into unbiased ones: s² = (N/(N-1))·Σ².
// A pooled count of 1 or less has no unbiased variance.
func (m moments) toSample() (mu, variance, n []float64, err error) {
	variance = make([]float64, len(m.pvar))
	for i, count := range m.n {
		if count <= 1 {
			return nil, nil, nil, fmt.Errorf("%w: pooled count at element %d is %g", ErrDegenerateCount, i, count)
		}
		variance[i] = count / (count - 1) * m.pvar[i]
	}
	return m.mu, variance, m.n, nil
}

// combine pools two population moments elementwise.
//
//	N  = n1 + n2
//	M  = (n1·μ1 + n2·μ2) / N
//	Σ² = [n1·(σ1² + μ1²) + n2·(σ2² + μ2²)] / N − M²
//
// Σ² is evaluated as (n1·σ1² + n2·σ2²)/N + n1·n2·(μ1 − μ2)²/N², which is the
// same quantity without subtracting two large squares.
func combine(a, b moments) moments {
	out := moments{
		mu:   make([]float64, len(a.mu)),
		pvar: make([]float64, len(a.mu)),
		n:    make([]float64, len(a.mu)),
	}
	for i := range a.mu {
		n1, n2 := a.n[i], b.n[i]
		n := n1 + n2
		delta := b.mu[i] - a.mu[i]
		out.n[i] = n
		out.mu[i] = (n1*a.mu[i] + n2*b.mu[i]) / n
		out.pvar[i] = (n1*a.pvar[i]+n2*b.pvar[i])/n + n1*n2*delta*delta/(n*n)
	}
	return out
}

// PoolPair pools exactly two records. The duration of the result is the mean
// of the two durations.
func PoolPair(a, b Record) (Record, error) {
	p, err := PoolWith([]Record{a, b}, ReduceFold)
	if err != nil {
		return Record{}, err
	}
	return p.Record, nil
}

// Pool merges records with a left fold.
func Pool(records []Record) (Pooled, error) {
	return PoolWith(records, ReduceFold)
}

// PoolTree merges records by pooling halves recursively.
func PoolTree(records []Record) (Pooled, error) {
	return PoolWith(records, ReduceTree)
}

// PoolWith merges a nonempty sequence of compatible records using the given reduction.
// A single record is returned unchanged with Stder = sqrt(Var / N). The pooled
// duration is the unweighted mean of the input durations.
func PoolWith(records []Record, reduction Reduction) (Pooled, error) {
	if !IsValidReduction(string(reduction)) {
		return Pooled{}, fmt.Errorf("unknown reduction %q; valid: fold, tree", reduction)
	}
	if err := CheckCompatible(records); err != nil {
		return Pooled{}, err
	}

	ms := make([]moments, len(records))
	for i, r := range records {
		m, err := toMoments(r)
		if err != nil {
			return Pooled{}, fmt.Errorf("record %d: %w", i, err)
		}
		ms[i] = m
	}

	if len(records) == 1 {
		r := records[0].Clone()
		return Pooled{Record: r, Stder: StandardError(r.Var, r.N)}, nil
	}

	var total moments
	switch reduction {
	case ReduceTree:
		total = reduceTree(ms)
	default:
		total = ms[0]
		for _, m := range ms[1:] {
			total = combine(total, m)
		}
	}

	mu, variance, n, err := total.toSample()
	if err != nil {
		return Pooled{}, err
	}
	r := Record{
		Mode: records[0].Mode,
		Mu:   mu,
		Var:  variance,
		N:    n,
		Dur:  meanDuration(records),
	}
	return Pooled{Record: r, Stder: StandardError(r.Var, r.N)}, nil
}

func reduceTree(ms []moments) moments {
	if len(ms) == 1 {
		return ms[0]
	}
	mid := len(ms) / 2
	return combine(reduceTree(ms[:mid]), reduceTree(ms[mid:]))
}

// meanDuration averages the duration series of all records elementwise.
func meanDuration(records []Record) []float64 {
	out := make([]float64, records[0].Len())
	column := make([]float64, len(records))
	for i := range out {
		for j, r := range records {
			column[j] = r.Dur[i]
		}
		out[i] = stat.Mean(column, nil)
	}
	return out
}

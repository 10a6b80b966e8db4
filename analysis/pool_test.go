package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/bapomdp/bares/internal/testutil"
)

const relTol = 1e-9

func mustLearning(t *testing.T, mu, v, n, dur []float64) Record {
	t.Helper()
	r, err := NewLearningRecord(mu, v, n, dur)
	require.NoError(t, err)
	return r
}

func TestPool_IdenticalPlanningRows_DoublesCount(t *testing.T) {
	// GIVEN two identical planning rows with zero variance
	a := NewPlanningRecord(1.0, 0.0, 10, 0.5)
	b := NewPlanningRecord(1.0, 0.0, 10, 0.5)

	// WHEN pooled
	p, err := Pool([]Record{a, b})
	require.NoError(t, err)

	// THEN mean and variance are unchanged and the count doubles
	assert.Equal(t, Planning, p.Mode)
	testutil.AssertSliceEqual(t, "mu", []float64{1.0}, p.Mu, relTol)
	testutil.AssertSliceEqual(t, "var", []float64{0.0}, p.Var, relTol)
	testutil.AssertSliceEqual(t, "n", []float64{20}, p.N, relTol)
	testutil.AssertSliceEqual(t, "stder", []float64{0.0}, p.Stder, relTol)
	testutil.AssertSliceEqual(t, "dur", []float64{0.5}, p.Dur, relTol)
}

func TestPool_DifferentMeansEqualCounts_ParallelAxisVariance(t *testing.T) {
	// GIVEN means 0 and 2, unbiased variance 2, 10 samples each
	a := NewPlanningRecord(0.0, 2.0, 10, 1.0)
	b := NewPlanningRecord(2.0, 2.0, 10, 1.0)

	// WHEN pooled
	p, err := Pool([]Record{a, b})
	require.NoError(t, err)

	// THEN biased σ² = 1.8 each, pooled biased Σ² = (18+58)/20 - 1 = 2.8,
	// unbiased S² = 20/19 · 2.8
	wantVar := 20.0 / 19.0 * 2.8
	testutil.AssertFloat64Equal(t, "mu", 1.0, p.Mu[0], relTol)
	testutil.AssertFloat64Equal(t, "n", 20, p.N[0], relTol)
	testutil.AssertFloat64Equal(t, "var", wantVar, p.Var[0], relTol)
	testutil.AssertFloat64Equal(t, "stder", math.Sqrt(wantVar/20), p.Stder[0], relTol)
	assert.InDelta(t, 2.9474, p.Var[0], 1e-4)
	assert.InDelta(t, 0.3838, p.Stder[0], 1e-4)
}

func TestPool_ParallelAxisForm_MatchesKernel(t *testing.T) {
	// GIVEN two records with different counts
	a := NewPlanningRecord(10, 4, 5, 0)
	b := NewPlanningRecord(20, 9, 15, 0)

	// WHEN pooled
	p, err := Pool([]Record{a, b})
	require.NoError(t, err)

	// THEN the result equals the textbook parallel-axis expression
	s1 := 4.0 * 4 / 5
	s2 := 9.0 * 14 / 15
	n := 20.0
	m := (5*10.0 + 15*20.0) / n
	biased := (5*(s1+10*10)+15*(s2+20*20))/n - m*m
	testutil.AssertFloat64Equal(t, "n", 20, p.N[0], relTol)
	testutil.AssertFloat64Equal(t, "mu", 17.5, p.Mu[0], relTol)
	testutil.AssertFloat64Equal(t, "var", n/(n-1)*biased, p.Var[0], relTol)
}

func TestPool_DifferentCounts_MatchesConcatenatedSamples(t *testing.T) {
	// GIVEN raw samples split into chunks of different sizes
	all := testutil.NormalSamples(7, 5+15, 0, 1)
	chunks := [][]float64{all[:5], all[5:]}
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		mu, v := stat.MeanVariance(c, nil)
		records[i] = NewPlanningRecord(mu, v, float64(len(c)), 0)
	}

	// WHEN the per-chunk statistics are pooled
	p, err := Pool(records)
	require.NoError(t, err)

	// THEN they equal the statistics of the concatenation
	wantMu, wantVar := stat.MeanVariance(all, nil)
	testutil.AssertFloat64Equal(t, "mu", wantMu, p.Mu[0], relTol)
	testutil.AssertFloat64Equal(t, "var", wantVar, p.Var[0], relTol)
	testutil.AssertFloat64Equal(t, "n", 20, p.N[0], relTol)
}

func TestPool_VarianceRecovery_ManyChunks(t *testing.T) {
	// GIVEN samples from one distribution split into uneven chunks
	sizes := []int{2, 3, 17, 40, 101, 8}
	total := 0
	for _, s := range sizes {
		total += s
	}
	all := testutil.NormalSamples(42, total, 3.5, 2.0)

	var records []Record
	offset := 0
	for _, s := range sizes {
		var acc testutil.Accumulator
		for _, v := range all[offset : offset+s] {
			acc.Add(v)
		}
		records = append(records, NewPlanningRecord(acc.Mean(), acc.Var(), float64(acc.Count()), 0))
		offset += s
	}

	wantMu, wantVar := stat.MeanVariance(all, nil)
	for _, red := range []Reduction{ReduceFold, ReduceTree} {
		// WHEN pooled with either reduction
		p, err := PoolWith(records, red)
		require.NoError(t, err)

		// THEN pooled (mu, var, n) equal the concatenated statistics
		testutil.AssertFloat64Equal(t, string(red)+" mu", wantMu, p.Mu[0], relTol)
		testutil.AssertFloat64Equal(t, string(red)+" var", wantVar, p.Var[0], relTol)
		testutil.AssertFloat64Equal(t, string(red)+" n", float64(total), p.N[0], relTol)
	}
}

func TestPool_LearningVectors_Elementwise(t *testing.T) {
	// GIVEN two learning records with two episodes each
	a := mustLearning(t, []float64{0, 1}, []float64{1, 1}, []float64{10, 10}, []float64{0.1, 0.1})
	b := mustLearning(t, []float64{2, 3}, []float64{1, 1}, []float64{10, 10}, []float64{0.1, 0.1})

	// WHEN pooled
	p, err := Pool([]Record{a, b})
	require.NoError(t, err)

	// THEN every episode is pooled independently
	assert.Equal(t, Learning, p.Mode)
	assert.Equal(t, 2, p.Len())
	testutil.AssertSliceEqual(t, "mu", []float64{1, 2}, p.Mu, relTol)
	testutil.AssertSliceEqual(t, "n", []float64{20, 20}, p.N, relTol)
	testutil.AssertSliceEqual(t, "dur", []float64{0.1, 0.1}, p.Dur, relTol)
	for e := 0; e < 2; e++ {
		single, err := Pool([]Record{
			NewPlanningRecord(a.Mu[e], a.Var[e], a.N[e], a.Dur[e]),
			NewPlanningRecord(b.Mu[e], b.Var[e], b.N[e], b.Dur[e]),
		})
		require.NoError(t, err)
		testutil.AssertFloat64Equal(t, "var", single.Var[0], p.Var[e], relTol)
	}
}

func TestPool_SingleRecord_Identity(t *testing.T) {
	// GIVEN one record
	r := NewPlanningRecord(3.2, 1.5, 12, 0.25)

	// WHEN pooled alone
	p, err := Pool([]Record{r})
	require.NoError(t, err)

	// THEN the record is returned unchanged and stder = sqrt(var/n)
	assert.Equal(t, r, p.Record)
	testutil.AssertFloat64Equal(t, "stder", math.Sqrt(1.5/12), p.Stder[0], relTol)
}

func TestPool_DoesNotMutateInputs(t *testing.T) {
	a := mustLearning(t, []float64{1, 2}, []float64{3, 4}, []float64{5, 6}, []float64{7, 8})
	b := mustLearning(t, []float64{2, 3}, []float64{1, 1}, []float64{9, 9}, []float64{1, 1})
	aCopy, bCopy := a.Clone(), b.Clone()

	_, err := Pool([]Record{a, b})
	require.NoError(t, err)

	assert.Equal(t, aCopy, a)
	assert.Equal(t, bCopy, b)
}

func testRecords() []Record {
	return []Record{
		NewPlanningRecord(10, 4, 5, 0.1),
		NewPlanningRecord(20, 9, 15, 0.2),
		NewPlanningRecord(-3, 0.5, 2, 0.3),
		NewPlanningRecord(7.25, 12, 40, 0.4),
	}
}

func TestPool_OrderInvariance(t *testing.T) {
	// GIVEN a multiset of records and one of its permutations
	recs := testRecords()
	perm := []Record{recs[2], recs[0], recs[3], recs[1]}

	// WHEN both orders are pooled
	p1, err := Pool(recs)
	require.NoError(t, err)
	p2, err := Pool(perm)
	require.NoError(t, err)

	// THEN results agree within tolerance
	testutil.AssertSliceEqual(t, "mu", p1.Mu, p2.Mu, relTol)
	testutil.AssertSliceEqual(t, "var", p1.Var, p2.Var, relTol)
	testutil.AssertSliceEqual(t, "n", p1.N, p2.N, relTol)
}

func TestPoolPair_Associativity(t *testing.T) {
	recs := testRecords()
	a, b, c := recs[0], recs[1], recs[2]

	ab, err := PoolPair(a, b)
	require.NoError(t, err)
	left, err := PoolPair(ab, c)
	require.NoError(t, err)

	bc, err := PoolPair(b, c)
	require.NoError(t, err)
	right, err := PoolPair(a, bc)
	require.NoError(t, err)

	testutil.AssertSliceEqual(t, "mu", left.Mu, right.Mu, relTol)
	testutil.AssertSliceEqual(t, "var", left.Var, right.Var, relTol)
	testutil.AssertSliceEqual(t, "n", left.N, right.N, relTol)
}

func TestPool_FoldAndTree_Agree(t *testing.T) {
	recs := testRecords()

	fold, err := Pool(recs)
	require.NoError(t, err)
	tree, err := PoolTree(recs)
	require.NoError(t, err)

	testutil.AssertSliceEqual(t, "mu", fold.Mu, tree.Mu, relTol)
	testutil.AssertSliceEqual(t, "var", fold.Var, tree.Var, relTol)
	testutil.AssertSliceEqual(t, "n", fold.N, tree.N, relTol)
	testutil.AssertSliceEqual(t, "stder", fold.Stder, tree.Stder, relTol)
	testutil.AssertSliceEqual(t, "dur", fold.Dur, tree.Dur, relTol)
}

func TestPool_CountSumAndWeightedMean(t *testing.T) {
	recs := testRecords()
	p, err := Pool(recs)
	require.NoError(t, err)

	var sumN, sumNMu float64
	for _, r := range recs {
		sumN += r.N[0]
		sumNMu += r.N[0] * r.Mu[0]
	}
	testutil.AssertFloat64Equal(t, "n", sumN, p.N[0], relTol)
	testutil.AssertFloat64Equal(t, "mu", sumNMu/sumN, p.Mu[0], relTol)
	assert.GreaterOrEqual(t, p.Var[0], 0.0)
	assert.GreaterOrEqual(t, p.Stder[0], 0.0)
}

func TestPool_Singletons_NonNegativeVariance(t *testing.T) {
	// GIVEN three single-sample records with equal means
	recs := []Record{
		NewPlanningRecord(1e8, 0, 1, 0),
		NewPlanningRecord(1e8, 0, 1, 0),
		NewPlanningRecord(1e8, 0, 1, 0),
	}

	// WHEN pooled
	p, err := Pool(recs)
	require.NoError(t, err)

	// THEN the pooled variance is exactly zero, never negative
	assert.Equal(t, 0.0, p.Var[0])
	assert.Equal(t, 3.0, p.N[0])
}

func TestPool_PooledCountOne_DegenerateCount(t *testing.T) {
	// GIVEN fractional counts that pool to exactly one sample
	a := NewPlanningRecord(1, 0, 0.5, 0)
	b := NewPlanningRecord(2, 0, 0.5, 0)

	_, err := Pool([]Record{a, b})

	assert.True(t, errors.Is(err, ErrDegenerateCount), "got %v", err)
}

func TestPool_ZeroCount_DegenerateCount(t *testing.T) {
	_, err := Pool([]Record{NewPlanningRecord(1, 0, 0, 0), NewPlanningRecord(1, 0, 3, 0)})
	assert.True(t, errors.Is(err, ErrDegenerateCount), "got %v", err)
}

func TestPool_MixedModes_BadShape(t *testing.T) {
	p := NewPlanningRecord(1, 1, 10, 0.1)
	l := mustLearning(t, []float64{1, 2}, []float64{1, 1}, []float64{10, 10}, []float64{0.1, 0.1})

	_, err := Pool([]Record{p, l})

	assert.True(t, errors.Is(err, ErrBadShape), "got %v", err)
}

func TestPool_EpisodeCountMismatch_LengthMismatch(t *testing.T) {
	a := mustLearning(t, []float64{1, 2}, []float64{1, 1}, []float64{10, 10}, []float64{0.1, 0.1})
	b := mustLearning(t, []float64{1, 2, 3}, []float64{1, 1, 1}, []float64{10, 10, 10}, []float64{0.1, 0.1, 0.1})

	_, err := Pool([]Record{a, b})

	assert.True(t, errors.Is(err, ErrLengthMismatch), "got %v", err)
}

func TestPool_Empty_Error(t *testing.T) {
	_, err := Pool(nil)
	assert.Error(t, err)
}

func TestPoolWith_UnknownReduction_Error(t *testing.T) {
	_, err := PoolWith(testRecords(), Reduction("pairwise"))
	assert.Error(t, err)
	assert.False(t, IsValidReduction("pairwise"))
	assert.True(t, IsValidReduction("tree"))
}

func TestNewLearningRecord_UnequalFields_LengthMismatch(t *testing.T) {
	_, err := NewLearningRecord([]float64{1, 2}, []float64{1}, []float64{1, 1}, []float64{1, 1})
	assert.True(t, errors.Is(err, ErrLengthMismatch), "got %v", err)
}

func TestNewLearningRecord_Empty_BadShape(t *testing.T) {
	_, err := NewLearningRecord(nil, nil, nil, nil)
	assert.True(t, errors.Is(err, ErrBadShape), "got %v", err)
}

func TestRecord_Validate_NegativeVariance(t *testing.T) {
	err := NewPlanningRecord(1, -1, 10, 0).Validate()
	assert.True(t, errors.Is(err, ErrBadColumns), "got %v", err)
}

func TestRecord_Validate_CountBelowOne(t *testing.T) {
	err := NewPlanningRecord(1, 0, 0, 0).Validate()
	assert.True(t, errors.Is(err, ErrBadColumns), "got %v", err)
}

func TestNewLearningRecord_FractionalCount_BadColumns(t *testing.T) {
	_, err := NewLearningRecord([]float64{1, 2}, []float64{0, 0}, []float64{10, 2.5}, []float64{0, 0})
	assert.True(t, errors.Is(err, ErrBadColumns), "got %v", err)
	assert.ErrorContains(t, err, "element 1")
}

func TestRecord_LastMean(t *testing.T) {
	l := mustLearning(t, []float64{1, 2, 5}, []float64{0, 0, 0}, []float64{1, 1, 1}, []float64{0, 0, 0})
	assert.Equal(t, 5.0, l.LastMean())
	assert.Equal(t, 4.0, NewPlanningRecord(4, 0, 1, 0).LastMean())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "planning", Planning.String())
	assert.Equal(t, "learning", Learning.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

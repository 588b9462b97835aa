package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"bayopt/internal/space"
	"bayopt/internal/surrogate"
)

func lineSpace(t *testing.T) *space.Product {
	t.Helper()
	sp, err := space.NewProduct([]space.Parameter{
		space.NewContinuous("x", 0, 10),
	})
	require.NoError(t, err)
	return sp
}

func TestUCB(t *testing.T) {
	params := AcquisitionParams{Beta: 2.0}
	require.Equal(t, 1.0-2.0*2.0, UCB(1.0, 4.0, params))
}

func TestExpectedImprovementPrefersLowMean(t *testing.T) {
	params := AcquisitionParams{Xi: 0.0, BestSoFar: 1.0}
	better := ExpectedImprovement(0.2, 0.5, params)
	worse := ExpectedImprovement(0.9, 0.5, params)
	require.Less(t, better, worse)
}

func TestExpectedImprovementZeroVariance(t *testing.T) {
	params := AcquisitionParams{BestSoFar: 1.0}
	require.Equal(t, -0.5, ExpectedImprovement(0.5, 0, params))
	require.Equal(t, 0.0, ExpectedImprovement(2.0, 0, params))
}

func TestProbabilityOfImprovementBounds(t *testing.T) {
	params := AcquisitionParams{BestSoFar: 1.0}
	score := ProbabilityOfImprovement(0.5, 0.25, params)
	require.GreaterOrEqual(t, score, -1.0)
	require.LessOrEqual(t, score, 0.0)
}

func TestAcquisitionFromConfig(t *testing.T) {
	for _, name := range []string{"", "ucb", "ei", "pi", "expected_improvement", "probability_of_improvement"} {
		fn, err := AcquisitionFromConfig(name)
		require.NoError(t, err, "name %q", name)
		require.NotNil(t, fn)
	}
	_, err := AcquisitionFromConfig("thompson")
	require.Error(t, err)
}

func TestRandomRecommender(t *testing.T) {
	sp := lineSpace(t)
	r := NewRandom(42)

	rec, err := r.Recommend(sp, nil, nil, 3)
	require.NoError(t, err)
	require.Equal(t, 3, rec.Len())

	_, err = r.Recommend(sp, nil, nil, 0)
	require.ErrorIs(t, err, ErrInvalidBatchQuantity)
}

func TestBayesianRecommenderRequiresData(t *testing.T) {
	b := NewBayesian(surrogate.NewGaussianProcess(), UCB, 1)
	_, err := b.Recommend(lineSpace(t), nil, nil, 2)
	require.ErrorIs(t, err, ErrNoTrainingData)
}

func TestBayesianRecommenderFindsLowRegion(t *testing.T) {
	sp := lineSpace(t)
	b := NewBayesian(surrogate.NewGaussianProcess(), UCB, 11)
	b.AcqParams.Beta = 0.1
	b.Candidates = 500

	// Observations describe a valley near x=2.
	trainX := [][]float64{{0}, {2}, {4}, {6}, {8}, {10}}
	trainY := []float64{4, 0, 4, 16, 36, 64}

	rec, err := b.Recommend(sp, trainX, trainY, 4)
	require.NoError(t, err)
	require.Equal(t, 4, rec.Len())

	xs, err := rec.Floats("x")
	require.NoError(t, err)
	for _, x := range xs {
		require.Less(t, math.Abs(x-2), 4.0, "recommended point %v is far from the valley", x)
	}
}

type staticStub struct {
	fitCalled bool
}

func (s *staticStub) Static() bool { return true }

func (s *staticStub) Capabilities() surrogate.Capabilities { return surrogate.Capabilities{} }

func (s *staticStub) Fit(_ space.SearchSpace, _ [][]float64, _ []float64) error {
	s.fitCalled = true
	return nil
}

func (s *staticStub) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	mean := make([]float64, len(candidates))
	variance := make([]float64, len(candidates))
	for i, c := range candidates {
		mean[i] = c[0]
		variance[i] = 1
	}
	return mean, variance, nil
}

func TestBayesianRecommenderSkipsStaticRefit(t *testing.T) {
	stub := &staticStub{}
	b := NewBayesian(stub, UCB, 5)

	_, err := b.Recommend(lineSpace(t), [][]float64{{1}}, []float64{1}, 2)
	require.NoError(t, err)
	require.False(t, stub.fitCalled, "static surrogate must not be refitted")
}

func TestTwoPhaseSwitches(t *testing.T) {
	initial := NewRandom(1)
	main := NewBayesian(surrogate.NewGaussianProcess(), UCB, 1)
	m := &TwoPhase{Initial: initial, Main: main, SwitchAfter: 2}

	sp := lineSpace(t)
	got, err := m.Select(sp, nil, nil)
	require.NoError(t, err)
	require.Same(t, Pure(initial), got)

	got, err = m.Select(sp, [][]float64{{1}}, []float64{1})
	require.NoError(t, err)
	require.Same(t, Pure(initial), got)

	got, err = m.Select(sp, [][]float64{{1}, {2}}, []float64{1, 2})
	require.NoError(t, err)
	require.Same(t, Pure(main), got)
}

func TestSequentialReuseLast(t *testing.T) {
	a := NewRandom(1)
	b := NewRandom(2)
	m := &Sequential{Recommenders: []Pure{a, b}, Mode: ReuseLast}
	sp := lineSpace(t)

	sizes := [][][]float64{
		nil,
		{{1}},
		{{1}, {2}},
	}
	want := []Pure{a, b, b}
	for i, trainX := range sizes {
		got, err := m.Select(sp, trainX, nil)
		require.NoError(t, err)
		require.Same(t, want[i], got, "selection %d", i)
	}
}

func TestSequentialRaiseOnExhaustion(t *testing.T) {
	m := &Sequential{Recommenders: []Pure{NewRandom(1)}, Mode: Raise}
	sp := lineSpace(t)

	_, err := m.Select(sp, nil, nil)
	require.NoError(t, err)

	_, err = m.Select(sp, [][]float64{{1}}, nil)
	require.ErrorIs(t, err, ErrRecommendersExhausted)
}

func TestSequentialStaysPutWithoutNewData(t *testing.T) {
	a := NewRandom(1)
	b := NewRandom(2)
	m := &Sequential{Recommenders: []Pure{a, b}, Mode: ReuseLast}
	sp := lineSpace(t)

	for i := 0; i < 3; i++ {
		got, err := m.Select(sp, nil, nil)
		require.NoError(t, err)
		require.Same(t, Pure(a), got)
	}
}

func TestExhaustionModeFromConfig(t *testing.T) {
	mode, err := ExhaustionModeFromConfig("reuse_last")
	require.NoError(t, err)
	require.Equal(t, ReuseLast, mode)

	mode, err = ExhaustionModeFromConfig("raise")
	require.NoError(t, err)
	require.Equal(t, Raise, mode)

	_, err = ExhaustionModeFromConfig("wrap_around")
	require.Error(t, err)
}

func TestStreamingAdvancesAndExhausts(t *testing.T) {
	a := NewRandom(1)
	b := NewRandom(2)
	m := &Streaming{Source: func(yield func(Pure) bool) {
		if !yield(a) {
			return
		}
		yield(b)
	}}
	sp := lineSpace(t)

	got, err := m.Select(sp, nil, nil)
	require.NoError(t, err)
	require.Same(t, Pure(a), got)

	// Same training size: no advance.
	got, err = m.Select(sp, nil, nil)
	require.NoError(t, err)
	require.Same(t, Pure(a), got)

	got, err = m.Select(sp, [][]float64{{1}}, nil)
	require.NoError(t, err)
	require.Same(t, Pure(b), got)

	_, err = m.Select(sp, [][]float64{{1}, {2}}, nil)
	require.ErrorIs(t, err, ErrRecommendersExhausted)
}

func TestStreamingStaysExhausted(t *testing.T) {
	a := NewRandom(1)
	m := &Streaming{Source: func(yield func(Pure) bool) {
		yield(a)
	}}
	sp := lineSpace(t)

	got, err := m.Select(sp, nil, nil)
	require.NoError(t, err)
	require.Same(t, Pure(a), got)

	_, err = m.Select(sp, [][]float64{{1}}, nil)
	require.ErrorIs(t, err, ErrRecommendersExhausted)

	// Retry at the same training size must not re-serve the stale
	// recommender.
	_, err = m.Select(sp, [][]float64{{1}}, nil)
	require.ErrorIs(t, err, ErrRecommendersExhausted)
}

func TestStreamingWithoutSource(t *testing.T) {
	m := &Streaming{}
	_, err := m.Select(lineSpace(t), nil, nil)
	require.ErrorIs(t, err, ErrRecommendersExhausted)
}

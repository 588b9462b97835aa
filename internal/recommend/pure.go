package recommend

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"bayopt/internal/space"
	"bayopt/internal/surrogate"
	"bayopt/internal/table"
)

var (
	ErrInvalidBatchQuantity = errors.New("batch quantity must be at least 1")
	ErrNoTrainingData       = errors.New("recommender needs measured data")
)

// Pure produces one scored candidate batch per call. Implementations hold
// no per-call state beyond their configuration and surrogate.
type Pure interface {
	Name() string
	Recommend(sp space.SearchSpace, trainX [][]float64, trainY []float64, batchQuantity int) (*table.Table, error)
}

// Random draws candidates straight from the search space without consulting
// a model. It is the usual cold-start recommender.
type Random struct {
	Seed int64

	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{Seed: seed}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Recommend(sp space.SearchSpace, _ [][]float64, _ []float64, batchQuantity int) (*table.Table, error) {
	if batchQuantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchQuantity, batchQuantity)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(r.Seed))
	}
	return sp.Sample(batchQuantity, r.rng)
}

// Bayesian fits its surrogate on the accumulated training data, scores a
// pool of sampled candidates with the acquisition function and returns the
// most promising batch. Static surrogates are recognized and not refitted.
type Bayesian struct {
	Surrogate   surrogate.Surrogate
	Acquisition AcquisitionFunc
	AcqParams   AcquisitionParams
	// Candidates is the sampling pool size; it is clamped to at least ten
	// times the batch quantity.
	Candidates int
	Seed       int64

	rng *rand.Rand
}

func NewBayesian(s surrogate.Surrogate, acq AcquisitionFunc, seed int64) *Bayesian {
	return &Bayesian{
		Surrogate:   s,
		Acquisition: acq,
		AcqParams:   AcquisitionParams{Beta: 2.0, Xi: 0.01},
		Candidates:  100,
		Seed:        seed,
	}
}

func (b *Bayesian) Name() string { return "bayesian" }

func (b *Bayesian) Recommend(sp space.SearchSpace, trainX [][]float64, trainY []float64, batchQuantity int) (*table.Table, error) {
	if batchQuantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchQuantity, batchQuantity)
	}
	if len(trainX) == 0 {
		return nil, fmt.Errorf("%w: bayesian recommendation without measurements", ErrNoTrainingData)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(b.Seed))
	}

	if !surrogate.IsStatic(b.Surrogate) {
		if err := b.Surrogate.Fit(sp, trainX, trainY); err != nil {
			return nil, fmt.Errorf("fit surrogate: %w", err)
		}
	}

	pool := b.Candidates
	if min := batchQuantity * 10; pool < min {
		pool = min
	}
	candidates, err := sp.Sample(pool, b.rng)
	if err != nil {
		return nil, err
	}
	comp, err := sp.Transform(candidates)
	if err != nil {
		return nil, err
	}
	matrix, err := comp.Matrix()
	if err != nil {
		return nil, err
	}

	mean, variance, err := b.Surrogate.Posterior(matrix)
	if err != nil {
		return nil, fmt.Errorf("surrogate posterior: %w", err)
	}

	params := b.AcqParams
	params.BestSoFar = bestObserved(trainY)

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(mean))
	for i := range mean {
		scores[i] = scored{idx: i, score: b.Acquisition(mean[i], variance[i], params)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score < scores[j].score })

	take := batchQuantity
	if take > len(scores) {
		take = len(scores)
	}
	indices := make([]int, take)
	for i := 0; i < take; i++ {
		indices[i] = scores[i].idx
	}
	return candidates.Select(indices)
}

func bestObserved(trainY []float64) float64 {
	best := math.MaxFloat64
	for _, v := range trainY {
		if v < best {
			best = v
		}
	}
	return best
}

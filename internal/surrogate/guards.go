package surrogate

import (
	"bayopt/internal/space"
)

// CatchConstantTargets shields a surrogate from degenerate training sets.
// When every training target has the same value, the wrapped model is not
// fitted at all; the posterior becomes deterministic at that value with
// zero variance.
func CatchConstantTargets(inner Surrogate) Surrogate {
	return &constantTargetGuard{inner: inner}
}

type constantTargetGuard struct {
	inner    Surrogate
	constant bool
	value    float64
	fitted   bool
}

func (g *constantTargetGuard) Capabilities() Capabilities {
	return g.inner.Capabilities()
}

func (g *constantTargetGuard) Static() bool {
	return IsStatic(g.inner)
}

func (g *constantTargetGuard) Fit(sp space.SearchSpace, trainX [][]float64, trainY []float64) error {
	if len(trainY) > 0 && allEqual(trainY) {
		g.constant = true
		g.value = trainY[0]
		g.fitted = true
		return nil
	}
	if err := g.inner.Fit(sp, trainX, trainY); err != nil {
		return err
	}
	g.constant = false
	g.fitted = true
	return nil
}

func (g *constantTargetGuard) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	if !g.fitted {
		return nil, nil, ErrNotFitted
	}
	if g.constant {
		mean := make([]float64, len(candidates))
		variance := make([]float64, len(candidates))
		for i := range candidates {
			mean[i] = g.value
		}
		return mean, variance, nil
	}
	return g.inner.Posterior(candidates)
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Batchify adapts a surrogate whose posterior only handles single-point
// evaluation: the batch is evaluated one candidate at a time and the
// results are reassembled into consistently shaped output.
func Batchify(inner Surrogate) Surrogate {
	return &batchified{inner: inner}
}

type batchified struct {
	inner Surrogate
}

func (b *batchified) Capabilities() Capabilities { return b.inner.Capabilities() }

func (b *batchified) Static() bool { return IsStatic(b.inner) }

func (b *batchified) Fit(sp space.SearchSpace, trainX [][]float64, trainY []float64) error {
	return b.inner.Fit(sp, trainX, trainY)
}

func (b *batchified) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	mean := make([]float64, len(candidates))
	variance := make([]float64, len(candidates))
	single := make([][]float64, 1)
	for i, c := range candidates {
		single[0] = c
		m, v, err := b.inner.Posterior(single)
		if err != nil {
			return nil, nil, err
		}
		mean[i] = m[0]
		variance[i] = v[0]
	}
	return mean, variance, nil
}

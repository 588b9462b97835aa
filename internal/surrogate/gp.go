package surrogate

import (
	"fmt"
	"math"

	"bayopt/internal/space"
)

// GaussianProcess is a lightweight Gaussian process regressor with an RBF
// kernel. The posterior mean is a kernel-weighted average of the observed
// targets; the variance shrinks as candidates approach observed points.
type GaussianProcess struct {
	sigma  float64
	x      [][]float64
	y      []float64
	fitted bool
}

func NewGaussianProcess() *GaussianProcess {
	return &GaussianProcess{sigma: 1.0}
}

// SetSigma adjusts the kernel width. Larger values smooth the interpolation.
func (gp *GaussianProcess) SetSigma(sigma float64) error {
	if sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive, got %v", ErrModelParamsNotSupported, sigma)
	}
	gp.sigma = sigma
	return nil
}

func (gp *GaussianProcess) Capabilities() Capabilities {
	return Capabilities{JointPosterior: false, SupportsTransferLearning: false}
}

func (gp *GaussianProcess) Fit(_ space.SearchSpace, trainX [][]float64, trainY []float64) error {
	if len(trainX) == 0 || len(trainX) != len(trainY) {
		return fmt.Errorf("%w: got %d inputs and %d targets", ErrNoTrainingData, len(trainX), len(trainY))
	}
	x := make([][]float64, len(trainX))
	for i, row := range trainX {
		x[i] = append([]float64(nil), row...)
	}
	gp.x = x
	gp.y = append([]float64(nil), trainY...)
	gp.fitted = true
	return nil
}

func (gp *GaussianProcess) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	if !gp.fitted {
		return nil, nil, ErrNotFitted
	}
	mean := make([]float64, len(candidates))
	variance := make([]float64, len(candidates))
	for i, c := range candidates {
		m, v, err := gp.predict(c)
		if err != nil {
			return nil, nil, err
		}
		mean[i] = m
		variance[i] = v
	}
	return mean, variance, nil
}

func (gp *GaussianProcess) predict(x []float64) (float64, float64, error) {
	n := len(gp.x)
	k := make([]float64, n)
	for i := range gp.x {
		kv, err := gp.rbf(x, gp.x[i])
		if err != nil {
			return 0, 0, err
		}
		k[i] = kv
	}

	var sum float64
	for i := range gp.x {
		sum += k[i] * gp.y[i]
	}
	mean := sum / float64(n)

	variance := 1.0
	for i := range gp.x {
		for j := range gp.x {
			variance -= k[i] * k[j] / float64(n)
		}
	}
	if variance < 0 {
		variance = 0
	}
	return mean, variance, nil
}

func (gp *GaussianProcess) rbf(x1, x2 []float64) (float64, error) {
	if len(x1) != len(x2) {
		return 0, fmt.Errorf("candidate has %d features, model was fitted on %d", len(x1), len(x2))
	}
	var sum float64
	for i := range x1 {
		diff := x1[i] - x2[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * gp.sigma * gp.sigma)), nil
}

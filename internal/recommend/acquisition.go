package recommend

import (
	"fmt"
	"math"
)

// AcquisitionParams carries the knobs shared by the acquisition functions.
// All comp targets are oriented so that lower is better, so every function
// returns lower values for more promising points.
type AcquisitionParams struct {
	// Beta is the UCB exploration weight.
	Beta float64
	// Xi is the minimum-improvement margin for PI and EI.
	Xi float64
	// BestSoFar is the lowest comp target observed so far.
	BestSoFar float64
}

// AcquisitionFunc scores a posterior (mean, variance) pair.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// UCB is the (lower) confidence bound: mean minus Beta standard deviations.
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement scores by how unlikely a point is to beat the
// incumbent by at least Xi. Returned negated so lower stays better.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		if mean < params.BestSoFar-params.Xi {
			return -1
		}
		return 0
	}
	z := (params.BestSoFar - params.Xi - mean) / sigma
	return -normalCDF(z)
}

// ExpectedImprovement scores by the expected magnitude of improvement over
// the incumbent. Returned negated so lower stays better.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	improvement := params.BestSoFar - params.Xi - mean
	if sigma == 0 {
		if improvement > 0 {
			return -improvement
		}
		return 0
	}
	z := improvement / sigma
	return -(improvement*normalCDF(z) + sigma*normalPDF(z))
}

// AcquisitionFromConfig resolves an acquisition function by name.
func AcquisitionFromConfig(name string) (AcquisitionFunc, error) {
	switch name {
	case "", "ucb":
		return UCB, nil
	case "ei", "expected_improvement":
		return ExpectedImprovement, nil
	case "pi", "probability_of_improvement":
		return ProbabilityOfImprovement, nil
	default:
		return nil, fmt.Errorf("unsupported acquisition function: %s", name)
	}
}

func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

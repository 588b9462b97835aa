package surrogate

import (
	"fmt"
	"math/rand"

	"bayopt/internal/space"
)

const (
	defaultEstimators = 32
	defaultMaxDepth   = 6
	defaultMinLeaf    = 2
	defaultSubsample  = 0.9
)

// Ensemble is a bagged ensemble of randomized regression trees. Its
// posterior is the mean and variance of the per-tree predictions.
type Ensemble struct {
	estimators int
	maxDepth   int
	minLeaf    int
	subsample  float64
	seed       int64

	trees  []*treeNode
	fitted bool
}

// NewEnsemble builds an ensemble surrogate from a model-parameter map.
// Unknown keys are rejected at construction time.
func NewEnsemble(params map[string]float64) (*Ensemble, error) {
	e := &Ensemble{
		estimators: defaultEstimators,
		maxDepth:   defaultMaxDepth,
		minLeaf:    defaultMinLeaf,
		subsample:  defaultSubsample,
		seed:       1,
	}
	for key, value := range params {
		switch key {
		case "estimators":
			e.estimators = int(value)
		case "max_depth":
			e.maxDepth = int(value)
		case "min_leaf":
			e.minLeaf = int(value)
		case "subsample":
			e.subsample = value
		case "seed":
			e.seed = int64(value)
		default:
			return nil, fmt.Errorf("%w: unknown ensemble parameter %q", ErrModelParamsNotSupported, key)
		}
	}
	if e.estimators < 1 {
		return nil, fmt.Errorf("%w: estimators must be >= 1", ErrModelParamsNotSupported)
	}
	if e.subsample <= 0 || e.subsample > 1 {
		return nil, fmt.Errorf("%w: subsample must be in (0, 1]", ErrModelParamsNotSupported)
	}
	if e.minLeaf < 1 {
		e.minLeaf = 1
	}
	return e, nil
}

func (e *Ensemble) Capabilities() Capabilities {
	return Capabilities{JointPosterior: false, SupportsTransferLearning: false}
}

func (e *Ensemble) Fit(_ space.SearchSpace, trainX [][]float64, trainY []float64) error {
	if len(trainX) == 0 || len(trainX) != len(trainY) {
		return fmt.Errorf("%w: got %d inputs and %d targets", ErrNoTrainingData, len(trainX), len(trainY))
	}
	rng := rand.New(rand.NewSource(e.seed))
	trees := make([]*treeNode, e.estimators)
	sampleSize := int(float64(len(trainX)) * e.subsample)
	if sampleSize < 1 {
		sampleSize = 1
	}
	for t := range trees {
		idx := make([]int, sampleSize)
		for i := range idx {
			idx[i] = rng.Intn(len(trainX))
		}
		trees[t] = e.buildTree(trainX, trainY, idx, 0, rng)
	}
	e.trees = trees
	e.fitted = true
	return nil
}

func (e *Ensemble) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	if !e.fitted {
		return nil, nil, ErrNotFitted
	}
	mean := make([]float64, len(candidates))
	variance := make([]float64, len(candidates))
	preds := make([]float64, len(e.trees))
	for i, c := range candidates {
		for t, tree := range e.trees {
			preds[t] = tree.predict(c)
		}
		var sum float64
		for _, p := range preds {
			sum += p
		}
		m := sum / float64(len(preds))
		var sq float64
		for _, p := range preds {
			d := p - m
			sq += d * d
		}
		mean[i] = m
		variance[i] = sq / float64(len(preds))
	}
	return mean, variance, nil
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if n.feature < len(x) && x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// buildTree grows an extra-trees style node: a random feature with a random
// split threshold between the local feature bounds.
func (e *Ensemble) buildTree(x [][]float64, y []float64, idx []int, depth int, rng *rand.Rand) *treeNode {
	if depth >= e.maxDepth || len(idx) < 2*e.minLeaf {
		return leafNode(y, idx)
	}

	dims := len(x[idx[0]])
	for attempt := 0; attempt < dims; attempt++ {
		feature := rng.Intn(dims)
		lo, hi := x[idx[0]][feature], x[idx[0]][feature]
		for _, i := range idx[1:] {
			v := x[i][feature]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi == lo {
			continue
		}
		threshold := lo + rng.Float64()*(hi-lo)
		var left, right []int
		for _, i := range idx {
			if x[i][feature] <= threshold {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		if len(left) < e.minLeaf || len(right) < e.minLeaf {
			continue
		}
		return &treeNode{
			feature:   feature,
			threshold: threshold,
			left:      e.buildTree(x, y, left, depth+1, rng),
			right:     e.buildTree(x, y, right, depth+1, rng),
		}
	}
	return leafNode(y, idx)
}

func leafNode(y []float64, idx []int) *treeNode {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return &treeNode{leaf: true, value: sum / float64(len(idx))}
}

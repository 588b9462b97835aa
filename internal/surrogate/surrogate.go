package surrogate

import (
	"errors"

	"bayopt/internal/space"
)

var (
	ErrNotFitted               = errors.New("surrogate not fitted")
	ErrNoTrainingData          = errors.New("surrogate needs training data")
	ErrModelParamsNotSupported = errors.New("model parameters not supported")
)

// Capabilities describes what a surrogate variant can do. Explicit fields,
// reported per instance.
type Capabilities struct {
	// JointPosterior indicates the posterior is modeled jointly across a
	// candidate batch rather than independently per point.
	JointPosterior bool
	// SupportsTransferLearning indicates the model can consume auxiliary
	// task data during fitting.
	SupportsTransferLearning bool
}

// Surrogate is the uniform fit/posterior contract. Fit retrains from
// scratch on the full accumulated computational-representation dataset; the
// campaign never calls it with zero rows. Posterior is undefined before the
// first successful Fit and returns ErrNotFitted.
type Surrogate interface {
	Fit(sp space.SearchSpace, trainX [][]float64, trainY []float64) error
	Posterior(candidates [][]float64) (mean, variance []float64, err error)
	Capabilities() Capabilities
}

// IsStatic reports whether a surrogate is a pretrained model whose Fit is a
// deliberate no-op. The recommender layer uses this to skip refitting.
func IsStatic(s Surrogate) bool {
	st, ok := s.(interface{ Static() bool })
	return ok && st.Static()
}

package surrogate

import (
	"errors"
	"fmt"

	"bayopt/internal/space"
)

var (
	ErrIncompatibleParameter = errors.New("parameter incompatible with static surrogate")
	ErrInvalidCompiledModel  = errors.New("invalid compiled model")
)

// CompiledModel is an opaque precompiled predictive model. Run receives a
// named input matrix and must return at least two outputs: per-candidate
// means first, then per-candidate standard deviations.
type CompiledModel interface {
	Run(inputs map[string][][]float64) ([][]float64, error)
}

// CompiledModelLoader decodes a serialized model blob into a runnable
// CompiledModel. The format is owned by the caller.
type CompiledModelLoader func(blob []byte) (CompiledModel, error)

// StaticSurrogate wraps a pretrained, non-retrainable model. Fit is a
// deliberate no-op: the model cannot learn from campaign data, which is a
// surfaced limitation, not a hidden one (see Static).
type StaticSurrogate struct {
	inputName string
	model     CompiledModel
}

// NewStaticSurrogate wraps a compiled model for use against the given
// search space. Parameter compatibility is checked up front.
func NewStaticSurrogate(sp space.SearchSpace, inputName string, model CompiledModel) (*StaticSurrogate, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is nil", ErrInvalidCompiledModel)
	}
	if inputName == "" {
		return nil, fmt.Errorf("%w: input tensor name is required", ErrInvalidCompiledModel)
	}
	if err := ValidateStaticCompatibility(sp); err != nil {
		return nil, err
	}
	return &StaticSurrogate{inputName: inputName, model: model}, nil
}

// LoadStaticSurrogate decodes a serialized model blob and wraps it.
func LoadStaticSurrogate(sp space.SearchSpace, inputName string, blob []byte, loader CompiledModelLoader) (*StaticSurrogate, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: loader is required", ErrInvalidCompiledModel)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty model blob", ErrInvalidCompiledModel)
	}
	model, err := loader(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompiledModel, err)
	}
	return NewStaticSurrogate(sp, inputName, model)
}

// ValidateStaticCompatibility rejects search spaces containing parameters
// whose computational representation is not one-dimensional. Wrong wiring
// of model inputs is hard to detect once a multi-width encoding shifts the
// tensor layout, so the check fails fast and names the parameter.
func ValidateStaticCompatibility(sp space.SearchSpace) error {
	for _, p := range sp.Parameters() {
		if p.CompDim() != 1 {
			return fmt.Errorf(
				"%w: parameter %q of kind %q has a %d-dimensional computational representation",
				ErrIncompatibleParameter, p.Name(), p.Kind(), p.CompDim(),
			)
		}
	}
	return nil
}

func (s *StaticSurrogate) Capabilities() Capabilities {
	return Capabilities{JointPosterior: false, SupportsTransferLearning: false}
}

// Static marks the surrogate as non-retrainable.
func (s *StaticSurrogate) Static() bool { return true }

// Fit does nothing. The wrapped model is precompiled and cannot be
// retrained; recommenders detect this via IsStatic and skip the refit.
func (s *StaticSurrogate) Fit(_ space.SearchSpace, _ [][]float64, _ []float64) error {
	return nil
}

func (s *StaticSurrogate) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	outputs, err := s.model.Run(map[string][][]float64{s.inputName: candidates})
	if err != nil {
		return nil, nil, fmt.Errorf("compiled model run: %w", err)
	}
	if len(outputs) < 2 {
		return nil, nil, fmt.Errorf("%w: expected mean and stddev outputs, got %d", ErrInvalidCompiledModel, len(outputs))
	}
	mean, sd := outputs[0], outputs[1]
	if len(mean) != len(candidates) || len(sd) != len(candidates) {
		return nil, nil, fmt.Errorf("%w: output length mismatch", ErrInvalidCompiledModel)
	}
	variance := make([]float64, len(sd))
	for i, v := range sd {
		variance[i] = v * v
	}
	return mean, variance, nil
}

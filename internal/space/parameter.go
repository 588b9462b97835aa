package space

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/constraints"

	"bayopt/internal/table"
)

// Parameter describes one experimental degree of freedom together with its
// computational encoding.
type Parameter interface {
	Name() string
	// Kind names the parameter family (continuous, discrete, categorical).
	Kind() string
	IsNumeric() bool
	// CompDim is the width of the computational encoding.
	CompDim() int
	// CompColumns names the encoded columns, in order.
	CompColumns() []string
	// Encode maps an experimental cell to its computational representation.
	Encode(cell table.Cell) ([]float64, error)
	Sample(rng *rand.Rand) table.Cell
	// Tolerance is the near-match tolerance used when deciding whether a
	// measured value corresponds to a known point. Zero means exact match.
	Tolerance() float64
}

// Continuous is a bounded numerical parameter with a one-dimensional
// identity encoding.
type Continuous struct {
	ParamName string
	Min       float64
	Max       float64
	Tol       float64
}

func NewContinuous(name string, min, max float64) Continuous {
	return Continuous{ParamName: name, Min: min, Max: max}
}

func (p Continuous) Name() string          { return p.ParamName }
func (p Continuous) Kind() string          { return "continuous" }
func (p Continuous) IsNumeric() bool       { return true }
func (p Continuous) CompDim() int          { return 1 }
func (p Continuous) CompColumns() []string { return []string{p.ParamName} }
func (p Continuous) Tolerance() float64    { return p.Tol }

func (p Continuous) Encode(cell table.Cell) ([]float64, error) {
	v, ok := cell.AsFloat()
	if !ok {
		return nil, fmt.Errorf("parameter %q expects a numeric value", p.ParamName)
	}
	return []float64{v}, nil
}

func (p Continuous) Sample(rng *rand.Rand) table.Cell {
	return table.Float(p.Min + rng.Float64()*(p.Max-p.Min))
}

// Discrete is a numerical parameter restricted to an explicit value set.
type Discrete struct {
	ParamName string
	Values    []float64
	Tol       float64
}

func NewDiscrete(name string, values []float64) Discrete {
	return Discrete{ParamName: name, Values: append([]float64(nil), values...)}
}

func (p Discrete) Name() string          { return p.ParamName }
func (p Discrete) Kind() string          { return "discrete" }
func (p Discrete) IsNumeric() bool       { return true }
func (p Discrete) CompDim() int          { return 1 }
func (p Discrete) CompColumns() []string { return []string{p.ParamName} }
func (p Discrete) Tolerance() float64    { return p.Tol }

func (p Discrete) Encode(cell table.Cell) ([]float64, error) {
	v, ok := cell.AsFloat()
	if !ok {
		return nil, fmt.Errorf("parameter %q expects a numeric value", p.ParamName)
	}
	return []float64{v}, nil
}

func (p Discrete) Sample(rng *rand.Rand) table.Cell {
	if len(p.Values) == 0 {
		return table.Missing()
	}
	return table.Float(p.Values[rng.Intn(len(p.Values))])
}

// Categorical is a label-valued parameter with a one-hot encoding, so its
// computational representation is multi-dimensional.
type Categorical struct {
	ParamName string
	Values    []string
}

func NewCategorical(name string, values []string) Categorical {
	return Categorical{ParamName: name, Values: append([]string(nil), values...)}
}

func (p Categorical) Name() string    { return p.ParamName }
func (p Categorical) Kind() string    { return "categorical" }
func (p Categorical) IsNumeric() bool { return false }
func (p Categorical) CompDim() int    { return len(p.Values) }

func (p Categorical) CompColumns() []string {
	cols := make([]string, len(p.Values))
	for i, v := range p.Values {
		cols[i] = p.ParamName + "_" + v
	}
	return cols
}

func (p Categorical) Tolerance() float64 { return 0 }

func (p Categorical) Encode(cell table.Cell) ([]float64, error) {
	if cell.Kind != table.KindString {
		return nil, fmt.Errorf("parameter %q expects a label value", p.ParamName)
	}
	out := make([]float64, len(p.Values))
	for i, v := range p.Values {
		if v == cell.Str {
			out[i] = 1
			return out, nil
		}
	}
	return nil, fmt.Errorf("parameter %q has no level %q", p.ParamName, cell.Str)
}

func (p Categorical) Sample(rng *rand.Rand) table.Cell {
	if len(p.Values) == 0 {
		return table.Missing()
	}
	return table.Str(p.Values[rng.Intn(len(p.Values))])
}

// Grid builds an inclusive value grid for discrete numerical parameters.
func Grid[T constraints.Integer | constraints.Float](min, max, step T) []float64 {
	if step <= 0 || max < min {
		return nil
	}
	values := make([]float64, 0, 16)
	for v := min; v <= max; v += step {
		values = append(values, float64(v))
	}
	return values
}

package objfn

import (
	"fmt"
	"math"
	"strings"

	"bayopt/internal/space"
	"bayopt/internal/table"
)

// Objective is a synthetic benchmark function together with its natural
// search space. All functions are minimization problems.
type Objective interface {
	Name() string
	Space() (*space.Product, error)
	// Eval scores one parameter assignment keyed by parameter name.
	Eval(values map[string]float64) float64
	// KnownMinimum is the global minimum value, used to judge convergence.
	KnownMinimum() float64
}

// FromConfig resolves a benchmark by name.
func FromConfig(name string) (Objective, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "", "sphere":
		return Sphere{}, nil
	case "branin":
		return Branin{}, nil
	case "rastrigin":
		return Rastrigin{}, nil
	default:
		return nil, fmt.Errorf("unknown objective function: %s", name)
	}
}

// Available lists the benchmark names FromConfig accepts.
func Available() []string {
	return []string{"sphere", "branin", "rastrigin"}
}

// EvalRow scores one row of a sampled parameter table.
func EvalRow(obj Objective, data *table.Table, row int) (float64, error) {
	values := make(map[string]float64)
	for _, name := range data.Columns() {
		cell, err := data.Cell(name, row)
		if err != nil {
			return 0, err
		}
		v, ok := cell.AsFloat()
		if !ok {
			return 0, fmt.Errorf("row %d column %q is not numeric", row, name)
		}
		values[name] = v
	}
	return obj.Eval(values), nil
}

// Sphere is the 2-dimensional quadratic bowl with its minimum at the origin.
type Sphere struct{}

func (Sphere) Name() string          { return "sphere" }
func (Sphere) KnownMinimum() float64 { return 0 }

func (Sphere) Space() (*space.Product, error) {
	return space.NewProduct([]space.Parameter{
		space.NewContinuous("x1", -5, 5),
		space.NewContinuous("x2", -5, 5),
	})
}

func (Sphere) Eval(values map[string]float64) float64 {
	x1, x2 := values["x1"], values["x2"]
	return x1*x1 + x2*x2
}

// Branin is the standard 2-dimensional test function with three global
// minima of value ~0.397887.
type Branin struct{}

func (Branin) Name() string          { return "branin" }
func (Branin) KnownMinimum() float64 { return 0.397887 }

func (Branin) Space() (*space.Product, error) {
	return space.NewProduct([]space.Parameter{
		space.NewContinuous("x1", -5, 10),
		space.NewContinuous("x2", 0, 15),
	})
}

func (Branin) Eval(values map[string]float64) float64 {
	x1, x2 := values["x1"], values["x2"]
	a := 1.0
	b := 5.1 / (4 * math.Pi * math.Pi)
	c := 5 / math.Pi
	r := 6.0
	s := 10.0
	t := 1 / (8 * math.Pi)
	term := x2 - b*x1*x1 + c*x1 - r
	return a*term*term + s*(1-t)*math.Cos(x1) + s
}

// Rastrigin is the highly multimodal 2-dimensional test function with its
// global minimum at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string          { return "rastrigin" }
func (Rastrigin) KnownMinimum() float64 { return 0 }

func (Rastrigin) Space() (*space.Product, error) {
	return space.NewProduct([]space.Parameter{
		space.NewContinuous("x1", -5.12, 5.12),
		space.NewContinuous("x2", -5.12, 5.12),
	})
}

func (Rastrigin) Eval(values map[string]float64) float64 {
	x1, x2 := values["x1"], values["x2"]
	sum := 20.0
	sum += x1*x1 - 10*math.Cos(2*math.Pi*x1)
	sum += x2*x2 - 10*math.Cos(2*math.Pi*x2)
	return sum
}

package space

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"bayopt/internal/table"
)

var (
	ErrNoParameters = errors.New("search space needs at least one parameter")
	ErrSampling     = errors.New("search space sampling failed")
)

// Constraint restricts which parameter combinations are admissible.
type Constraint interface {
	Name() string
	Satisfied(row map[string]table.Cell) bool
}

// SearchSpace is the collaborator contract consumed by the campaign and the
// recommenders. Transform maps experimental rows to their computational
// representation; MarkAsMeasured feeds back which points have real results
// so sampling can avoid re-recommending them.
type SearchSpace interface {
	Parameters() []Parameter
	Constraints() []Constraint
	Transform(data *table.Table) (*table.Table, error)
	MarkAsMeasured(data *table.Table, withinTolerance bool) error
	Sample(n int, rng *rand.Rand) (*table.Table, error)
}

// Product is a product search space over independent parameters.
type Product struct {
	params      []Parameter
	constraints []Constraint
	measured    [][]float64
}

func NewProduct(params []Parameter, constraints ...Constraint) (*Product, error) {
	if len(params) == 0 {
		return nil, ErrNoParameters
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Name()] {
			return nil, fmt.Errorf("duplicate parameter name %q", p.Name())
		}
		seen[p.Name()] = true
	}
	return &Product{
		params:      append([]Parameter(nil), params...),
		constraints: append([]Constraint(nil), constraints...),
	}, nil
}

func (s *Product) Parameters() []Parameter   { return append([]Parameter(nil), s.params...) }
func (s *Product) Constraints() []Constraint { return append([]Constraint(nil), s.constraints...) }

// Transform encodes the parameter columns of data into a fully numeric
// table. Non-parameter columns are dropped.
func (s *Product) Transform(data *table.Table) (*table.Table, error) {
	cols := make([]string, 0, len(s.params))
	for _, p := range s.params {
		cols = append(cols, p.CompColumns()...)
	}
	out := table.New(cols...)
	for i := 0; i < data.Len(); i++ {
		row := make(map[string]table.Cell, len(cols))
		for _, p := range s.params {
			cell, err := data.Cell(p.Name(), i)
			if err != nil {
				return nil, err
			}
			enc, err := p.Encode(cell)
			if err != nil {
				return nil, fmt.Errorf("transform row %d: %w", i, err)
			}
			for j, name := range p.CompColumns() {
				row[name] = table.Float(enc[j])
			}
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarkAsMeasured records the computational representation of every row so
// subsequent sampling avoids near-identical points. With withinTolerance
// set, numerical values within each parameter's tolerance count as matches;
// otherwise matching is exact.
func (s *Product) MarkAsMeasured(data *table.Table, withinTolerance bool) error {
	comp, err := s.Transform(data)
	if err != nil {
		return err
	}
	matrix, err := comp.Matrix()
	if err != nil {
		return err
	}
	_ = withinTolerance // tolerance applies at match time; recorded points are exact
	s.measured = append(s.measured, matrix...)
	return nil
}

func (s *Product) isMeasured(point []float64) bool {
	for _, m := range s.measured {
		if s.nearMatch(m, point) {
			return true
		}
	}
	return false
}

func (s *Product) nearMatch(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	idx := 0
	for _, p := range s.params {
		tol := p.Tolerance()
		for d := 0; d < p.CompDim(); d++ {
			if math.Abs(a[idx]-b[idx]) > tol {
				return false
			}
			idx++
		}
	}
	return true
}

// Sample draws n admissible rows in experimental representation, steering
// clear of already-measured points. If the unmeasured region is exhausted,
// duplicates are allowed rather than failing the campaign.
func (s *Product) Sample(n int, rng *rand.Rand) (*table.Table, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: sample size %d", ErrSampling, n)
	}
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name()
	}
	out := table.New(names...)

	attempts := 0
	maxAttempts := n*50 + 100
	allowMeasured := false
	for out.Len() < n {
		if attempts >= maxAttempts {
			if allowMeasured {
				return nil, fmt.Errorf("%w: constraints too restrictive", ErrSampling)
			}
			allowMeasured = true
			attempts = 0
		}
		attempts++

		row := make(map[string]table.Cell, len(s.params))
		for _, p := range s.params {
			row[p.Name()] = p.Sample(rng)
		}
		if !s.admissible(row) {
			continue
		}
		if !allowMeasured && len(s.measured) > 0 {
			point, err := s.encodeRow(row)
			if err != nil {
				return nil, err
			}
			if s.isMeasured(point) {
				continue
			}
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Product) admissible(row map[string]table.Cell) bool {
	for _, c := range s.constraints {
		if !c.Satisfied(row) {
			return false
		}
	}
	return true
}

func (s *Product) encodeRow(row map[string]table.Cell) ([]float64, error) {
	point := make([]float64, 0, len(s.params))
	for _, p := range s.params {
		enc, err := p.Encode(row[p.Name()])
		if err != nil {
			return nil, err
		}
		point = append(point, enc...)
	}
	return point, nil
}

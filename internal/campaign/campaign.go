package campaign

import (
	"errors"
	"fmt"

	"bayopt/internal/recommend"
	"bayopt/internal/space"
	"bayopt/internal/table"
)

// TargetPlaceholder fills the target columns of recommended batches until
// real experiment results arrive.
const TargetPlaceholder = "<enter value>"

var (
	ErrInvalidBatchQuantity  = errors.New("batch quantity must be at least 1")
	ErrMissingColumn         = errors.New("required column missing")
	ErrMissingTargetValue    = errors.New("target has missing values")
	ErrNonNumericTarget      = errors.New("target has non-numeric entries")
	ErrMissingParameterValue = errors.New("parameter has missing values")
	ErrNonNumericParameter   = errors.New("numerical parameter has non-numeric entries")
)

// Campaign orchestrates one optimization run: it owns the measurement log,
// mediates between the meta-recommender and the search space, and caches
// the last unconsumed recommendation so repeated calls are idempotent.
//
// A Campaign is not safe for concurrent use; callers serialize
// AddMeasurements and Recommend.
type Campaign struct {
	space     space.SearchSpace
	objective space.Objective
	meta      recommend.Meta

	// withinTolerance is forwarded to the search space when marking rows
	// as measured; it enables tolerance-based near-matching for numerical
	// values.
	withinTolerance bool

	measurements *table.Table
	batchNr      []int
	fitNr        []int // 0 = not yet incorporated by a fit
	batchesDone  int
	fitsDone     int

	cached *table.Table
}

type Option func(*Campaign)

// WithMeasurementTolerance controls whether numerical measurements are
// matched against known points within each parameter's tolerance. Enabled
// by default.
func WithMeasurementTolerance(enabled bool) Option {
	return func(c *Campaign) { c.withinTolerance = enabled }
}

func New(sp space.SearchSpace, objective space.Objective, meta recommend.Meta, opts ...Option) (*Campaign, error) {
	if sp == nil {
		return nil, errors.New("search space is required")
	}
	if objective == nil {
		return nil, errors.New("objective is required")
	}
	if meta == nil {
		return nil, errors.New("meta-recommender is required")
	}

	cols := make([]string, 0)
	for _, p := range sp.Parameters() {
		cols = append(cols, p.Name())
	}
	for _, tgt := range objective.Targets() {
		cols = append(cols, tgt.Name)
	}

	c := &Campaign{
		space:           sp,
		objective:       objective,
		meta:            meta,
		withinTolerance: true,
		measurements:    table.New(cols...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Campaign) BatchesDone() int { return c.batchesDone }
func (c *Campaign) FitsDone() int    { return c.fitsDone }

// Measurements returns a copy of the measurement log.
func (c *Campaign) Measurements() *table.Table { return c.measurements.Copy() }

// BatchNumbers returns the per-row batch tags of the measurement log.
func (c *Campaign) BatchNumbers() []int { return append([]int(nil), c.batchNr...) }

// FitNumbers returns the per-row fit tags of the measurement log; zero
// marks rows no fit has incorporated yet.
func (c *Campaign) FitNumbers() []int { return append([]int(nil), c.fitNr...) }

// AddMeasurements appends completed experiment rows to the measurement log.
// Each call counts as one batch. The recommendation cache is invalidated
// before validation so a half-applied update can never re-serve a stale
// answer; all other state is only touched after validation passes.
func (c *Campaign) AddMeasurements(data *table.Table) error {
	c.cached = nil

	for _, tgt := range c.objective.Targets() {
		if !data.HasColumn(tgt.Name) {
			return fmt.Errorf("%w: target %q", ErrMissingColumn, tgt.Name)
		}
		missing, err := data.ColumnHasMissing(tgt.Name)
		if err != nil {
			return err
		}
		if missing {
			return fmt.Errorf("%w: target %q", ErrMissingTargetValue, tgt.Name)
		}
		numeric, err := data.ColumnNumeric(tgt.Name)
		if err != nil {
			return err
		}
		if !numeric {
			return fmt.Errorf("%w: target %q", ErrNonNumericTarget, tgt.Name)
		}
	}

	for _, p := range c.space.Parameters() {
		if !data.HasColumn(p.Name()) {
			return fmt.Errorf("%w: parameter %q", ErrMissingColumn, p.Name())
		}
		missing, err := data.ColumnHasMissing(p.Name())
		if err != nil {
			return err
		}
		if missing {
			return fmt.Errorf("%w: parameter %q", ErrMissingParameterValue, p.Name())
		}
		if p.IsNumeric() {
			numeric, err := data.ColumnNumeric(p.Name())
			if err != nil {
				return err
			}
			if !numeric {
				return fmt.Errorf("%w: parameter %q", ErrNonNumericParameter, p.Name())
			}
		}
	}

	if err := c.space.MarkAsMeasured(data, c.withinTolerance); err != nil {
		return err
	}

	c.batchesDone++
	for i := 0; i < data.Len(); i++ {
		row := make(map[string]table.Cell, len(c.measurements.Columns()))
		for _, name := range c.measurements.Columns() {
			cell, err := data.Cell(name, i)
			if err != nil {
				return err
			}
			row[name] = cell
		}
		if err := c.measurements.AppendRow(row); err != nil {
			return err
		}
		c.batchNr = append(c.batchNr, c.batchesDone)
		c.fitNr = append(c.fitNr, 0)
	}
	return nil
}

// Recommend returns the next batch of experiments to run. A cached batch of
// exactly the requested size is returned unchanged, which keeps repeated
// calls cheap: surrogate fitting is the expensive step and must not be
// repeated for a re-issued identical request.
func (c *Campaign) Recommend(batchQuantity int) (*table.Table, error) {
	if batchQuantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchQuantity, batchQuantity)
	}

	if c.cached != nil && c.cached.Len() == batchQuantity {
		return c.cached.Copy(), nil
	}

	if c.measurements.Len() > 0 {
		c.fitsDone++
		for i, fn := range c.fitNr {
			if fn == 0 {
				c.fitNr[i] = c.fitsDone
			}
		}
	}

	trainX, trainY, err := c.trainingData()
	if err != nil {
		return nil, err
	}

	pure, err := c.meta.Select(c.space, trainX, trainY)
	if err != nil {
		return nil, err
	}

	rec, err := pure.Recommend(c.space, trainX, trainY, batchQuantity)
	if err != nil {
		return nil, err
	}

	for _, tgt := range c.objective.Targets() {
		if rec.HasColumn(tgt.Name) {
			if err := rec.SetColumn(tgt.Name, table.Str(TargetPlaceholder)); err != nil {
				return nil, err
			}
			continue
		}
		if err := rec.AddColumn(tgt.Name, table.Str(TargetPlaceholder)); err != nil {
			return nil, err
		}
	}

	// The cache holds its own copy; callers fill target values into the
	// returned batch before feeding it back, and that must not disturb
	// the cached placeholders.
	c.cached = rec.Copy()
	return rec, nil
}

// MeasurementsParametersComp is the computational representation of the
// measured parameters. Empty tables are returned as-is rather than pushed
// through the transform.
func (c *Campaign) MeasurementsParametersComp() (*table.Table, error) {
	if c.measurements.Len() < 1 {
		return table.New(), nil
	}
	return c.space.Transform(c.measurements)
}

// MeasurementsTargetsComp is the computational representation of the
// measured targets.
func (c *Campaign) MeasurementsTargetsComp() (*table.Table, error) {
	if c.measurements.Len() < 1 {
		return table.New(), nil
	}
	return c.objective.Transform(c.measurements)
}

// trainingData derives the surrogate training set from the measurement
// log. Multiple comp targets are scalarized by summation; each target has
// already been oriented by the objective so that lower is better.
func (c *Campaign) trainingData() ([][]float64, []float64, error) {
	compX, err := c.MeasurementsParametersComp()
	if err != nil {
		return nil, nil, err
	}
	compY, err := c.MeasurementsTargetsComp()
	if err != nil {
		return nil, nil, err
	}

	trainX, err := compX.Matrix()
	if err != nil {
		return nil, nil, err
	}
	yMatrix, err := compY.Matrix()
	if err != nil {
		return nil, nil, err
	}
	trainY := make([]float64, len(yMatrix))
	for i, row := range yMatrix {
		var sum float64
		for _, v := range row {
			sum += v
		}
		trainY[i] = sum
	}
	return trainX, trainY, nil
}

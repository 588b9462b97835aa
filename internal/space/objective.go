package space

import (
	"errors"
	"fmt"

	"bayopt/internal/table"
)

// TargetMode declares the optimization direction of a target.
type TargetMode int

const (
	Minimize TargetMode = iota
	Maximize
)

// Target describes one measured outcome column.
type Target struct {
	Name string
	Mode TargetMode
}

// Objective is the collaborator contract mapping measured target columns to
// their computational representation. The transform orients every target so
// that lower is better, which is the convention the recommenders assume.
type Objective interface {
	Targets() []Target
	Transform(data *table.Table) (*table.Table, error)
}

var ErrNoTargets = errors.New("objective needs at least one target")

// DesirabilityObjective is a plain per-target objective: each target maps to
// one comp column, negated for maximization targets.
type DesirabilityObjective struct {
	targets []Target
}

func NewObjective(targets ...Target) (*DesirabilityObjective, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return &DesirabilityObjective{targets: append([]Target(nil), targets...)}, nil
}

func (o *DesirabilityObjective) Targets() []Target {
	return append([]Target(nil), o.targets...)
}

func (o *DesirabilityObjective) Transform(data *table.Table) (*table.Table, error) {
	cols := make([]string, len(o.targets))
	for i, tgt := range o.targets {
		cols[i] = tgt.Name
	}
	out := table.New(cols...)
	for i := 0; i < data.Len(); i++ {
		row := make(map[string]table.Cell, len(cols))
		for _, tgt := range o.targets {
			cell, err := data.Cell(tgt.Name, i)
			if err != nil {
				return nil, err
			}
			v, ok := cell.AsFloat()
			if !ok {
				return nil, fmt.Errorf("target %q row %d is not numeric", tgt.Name, i)
			}
			if tgt.Mode == Maximize {
				v = -v
			}
			row[tgt.Name] = table.Float(v)
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

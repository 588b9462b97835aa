package recommend

import (
	"errors"
	"fmt"
	"iter"

	"bayopt/internal/space"
)

var ErrRecommendersExhausted = errors.New("recommender sequence exhausted")

// Meta selects which pure recommender governs the current campaign
// iteration. Selection is deterministic given the same call sequence, but
// sequential variants advance internal state and must not be shared across
// campaigns.
type Meta interface {
	Name() string
	Select(sp space.SearchSpace, trainX [][]float64, trainY []float64) (Pure, error)
}

// TwoPhase switches from the initial to the main recommender exactly once,
// as soon as the training set reaches SwitchAfter rows.
type TwoPhase struct {
	Initial Pure
	Main    Pure
	// SwitchAfter is the training-set size that triggers the switch. Zero
	// means switch on the first measured row.
	SwitchAfter int
}

func (m *TwoPhase) Name() string { return "two_phase" }

func (m *TwoPhase) Select(_ space.SearchSpace, trainX [][]float64, _ []float64) (Pure, error) {
	threshold := m.SwitchAfter
	if threshold < 1 {
		threshold = 1
	}
	if len(trainX) >= threshold {
		return m.Main, nil
	}
	return m.Initial, nil
}

// ExhaustionMode controls what a sequential meta-recommender does once its
// recommender list runs out.
type ExhaustionMode int

const (
	// ReuseLast keeps returning the final recommender indefinitely.
	ReuseLast ExhaustionMode = iota
	// Raise fails selection with ErrRecommendersExhausted.
	Raise
)

func ExhaustionModeFromConfig(name string) (ExhaustionMode, error) {
	switch name {
	case "", "reuse_last":
		return ReuseLast, nil
	case "raise":
		return Raise, nil
	default:
		return 0, fmt.Errorf("unsupported exhaustion mode: %s", name)
	}
}

// Sequential consumes an ordered recommender list, advancing one position
// every time the training set grows.
type Sequential struct {
	Recommenders []Pure
	Mode         ExhaustionMode

	pos         int
	lastSize    int
	initialized bool
}

func (m *Sequential) Name() string { return "sequential" }

func (m *Sequential) Select(_ space.SearchSpace, trainX [][]float64, _ []float64) (Pure, error) {
	if len(m.Recommenders) == 0 {
		return nil, fmt.Errorf("%w: no recommenders configured", ErrRecommendersExhausted)
	}
	n := len(trainX)
	if m.initialized && n > m.lastSize {
		m.pos++
	}
	m.initialized = true
	m.lastSize = n

	if m.pos >= len(m.Recommenders) {
		if m.Mode == ReuseLast {
			return m.Recommenders[len(m.Recommenders)-1], nil
		}
		return nil, fmt.Errorf("%w: consumed all %d recommenders", ErrRecommendersExhausted, len(m.Recommenders))
	}
	return m.Recommenders[m.pos], nil
}

// Streaming has the same sequencing semantics as Sequential but draws
// recommenders from a lazily produced, potentially unbounded sequence.
// Consumption is forward-only and non-restartable; exhaustion always fails
// since an unbounded source has no meaningful "last" element to reuse.
type Streaming struct {
	Source iter.Seq[Pure]

	next        func() (Pure, bool)
	stop        func()
	current     Pure
	haveCurrent bool
	drained     bool
	lastSize    int
	initialized bool
}

func (m *Streaming) Name() string { return "streaming" }

func (m *Streaming) Select(_ space.SearchSpace, trainX [][]float64, _ []float64) (Pure, error) {
	if m.drained {
		return nil, fmt.Errorf("%w: streaming source drained", ErrRecommendersExhausted)
	}
	if m.next == nil {
		if m.Source == nil {
			return nil, fmt.Errorf("%w: no recommender source configured", ErrRecommendersExhausted)
		}
		m.next, m.stop = iter.Pull(m.Source)
	}

	n := len(trainX)
	advance := !m.haveCurrent || (m.initialized && n > m.lastSize)
	m.initialized = true
	m.lastSize = n

	if advance {
		rec, ok := m.next()
		if !ok {
			m.stop()
			m.drained = true
			return nil, fmt.Errorf("%w: streaming source drained", ErrRecommendersExhausted)
		}
		m.current = rec
		m.haveCurrent = true
	}
	return m.current, nil
}

package surrogate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"bayopt/internal/space"
)

var (
	ErrArchitectureExists   = errors.New("architecture already registered")
	ErrArchitectureNotFound = errors.New("architecture not found")
	ErrBackendContract      = errors.New("backend contract violation")
)

// ModelBackend is the structural contract a custom model architecture must
// satisfy to be wrapped into a Surrogate. The method signatures mirror the
// Surrogate fit/posterior contract exactly; satisfying this interface is
// checked by the compiler, so signature mismatches surface at build time
// rather than at call time.
type ModelBackend interface {
	Fit(sp space.SearchSpace, trainX [][]float64, trainY []float64) error
	Posterior(candidates [][]float64) (mean, variance []float64, err error)
}

// CompatibilityFn lets an architecture restrict which search spaces it
// accepts.
type CompatibilityFn func(sp space.SearchSpace) error

// ArchitectureSpec configures how a custom backend is wrapped.
type ArchitectureSpec struct {
	Name    string
	Backend ModelBackend
	// JointPosterior marks the backend as producing a joint posterior
	// across the candidate batch.
	JointPosterior bool
	// CatchConstantTargets applies the degenerate-target guard.
	CatchConstantTargets bool
	// BatchifyPosterior wraps a single-point-only posterior.
	BatchifyPosterior bool
	Compatible        CompatibilityFn
}

type registeredArchitecture struct {
	backend              ModelBackend
	jointPosterior       bool
	catchConstantTargets bool
	batchifyPosterior    bool
	compatible           CompatibilityFn
}

var architectureRegistry = struct {
	mu sync.RWMutex
	m  map[string]registeredArchitecture
}{
	m: make(map[string]registeredArchitecture),
}

// RegisterArchitecture validates and records a custom model architecture.
// Contract violations are reported here, not deferred to first use.
func RegisterArchitecture(spec ArchitectureSpec) error {
	if spec.Name == "" {
		return errors.New("architecture name is required")
	}
	if err := validateBackend(spec.Backend); err != nil {
		return err
	}

	architectureRegistry.mu.Lock()
	defer architectureRegistry.mu.Unlock()

	if _, exists := architectureRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrArchitectureExists, spec.Name)
	}

	architectureRegistry.m[spec.Name] = registeredArchitecture{
		backend:              spec.Backend,
		jointPosterior:       spec.JointPosterior,
		catchConstantTargets: spec.CatchConstantTargets,
		batchifyPosterior:    spec.BatchifyPosterior,
		compatible:           spec.Compatible,
	}
	return nil
}

func validateBackend(backend ModelBackend) error {
	if backend == nil {
		return fmt.Errorf("%w: backend must implement Fit and Posterior, got nil", ErrBackendContract)
	}
	v := reflect.ValueOf(backend)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func:
		if v.IsNil() {
			return fmt.Errorf("%w: backend %T is a nil value", ErrBackendContract, backend)
		}
	}
	return nil
}

// ResolveArchitecture constructs a Surrogate for a registered architecture,
// applying the configured guards. Each call yields a fresh adapter around
// the registered backend. The search space is checked against the
// architecture's compatibility function, if any.
func ResolveArchitecture(name string, sp space.SearchSpace) (Surrogate, error) {
	architectureRegistry.mu.RLock()
	entry, ok := architectureRegistry.m[name]
	architectureRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArchitectureNotFound, name)
	}
	if entry.compatible != nil {
		if err := entry.compatible(sp); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBackendContract, name, err)
		}
	}

	var s Surrogate = &Architecture{
		name:    name,
		backend: entry.backend,
		caps: Capabilities{
			JointPosterior:           entry.jointPosterior,
			SupportsTransferLearning: false,
		},
	}
	if entry.catchConstantTargets {
		s = CatchConstantTargets(s)
	}
	if entry.batchifyPosterior {
		s = Batchify(s)
	}
	return s, nil
}

// ListArchitectures returns the registered architecture names in lexical
// order.
func ListArchitectures() []string {
	architectureRegistry.mu.RLock()
	defer architectureRegistry.mu.RUnlock()

	names := make([]string, 0, len(architectureRegistry.m))
	for name := range architectureRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetArchitectureRegistryForTests() {
	architectureRegistry.mu.Lock()
	defer architectureRegistry.mu.Unlock()
	architectureRegistry.m = make(map[string]registeredArchitecture)
}

// Architecture adapts a registered backend to the Surrogate contract. The
// delegate is an explicit owned field; callers needing model-specific
// members reach them through Backend.
type Architecture struct {
	name    string
	backend ModelBackend
	caps    Capabilities
}

func (a *Architecture) Name() string { return a.name }

// Backend exposes the wrapped model instance.
func (a *Architecture) Backend() ModelBackend { return a.backend }

func (a *Architecture) Capabilities() Capabilities { return a.caps }

func (a *Architecture) Fit(sp space.SearchSpace, trainX [][]float64, trainY []float64) error {
	return a.backend.Fit(sp, trainX, trainY)
}

func (a *Architecture) Posterior(candidates [][]float64) ([]float64, []float64, error) {
	return a.backend.Posterior(candidates)
}

package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Integrator runs one combination strategy.
type Integrator interface {
	// Name returns the display name of the strategy.
	Name() string
	// Strategy returns the strategy this integrator runs.
	Strategy() Strategy
	// Integrate runs spec on up to workers workers.
	Integrate(ctx context.Context, spec Spec, workers int, opts ...Option) (Result, error)
}

type strategyIntegrator struct {
	strategy Strategy
}

// NewIntegrator returns an Integrator bound to s.
func NewIntegrator(s Strategy) Integrator {
	return strategyIntegrator{strategy: s}
}

func (i strategyIntegrator) Name() string       { return i.strategy.DisplayName() }
func (i strategyIntegrator) Strategy() Strategy { return i.strategy }

func (i strategyIntegrator) Integrate(ctx context.Context, spec Spec, workers int, opts ...Option) (Result, error) {
	return Integrate(ctx, spec, workers, i.strategy, opts...)
}

// Factory is a registry of integrators keyed by short name.
type Factory interface {
	// List returns the registered keys in sorted order.
	List() []string
	// Get returns the integrator registered under name.
	Get(name string) (Integrator, error)
	// MustGet is Get that panics on unknown names.
	MustGet(name string) Integrator
	// GetAll returns a copy of the registry.
	GetAll() map[string]Integrator
	// Register adds or replaces an integrator.
	Register(name string, integrator Integrator) error
}

// DefaultFactory is the standard Factory implementation. It is safe for
// concurrent use.
type DefaultFactory struct {
	mu          sync.RWMutex
	integrators map[string]Integrator
}

// NewDefaultFactory returns a factory with every built-in strategy registered
// under its short key.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{integrators: make(map[string]Integrator)}
	for _, s := range Strategies() {
		f.integrators[s.String()] = NewIntegrator(s)
	}
	return f
}

func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.integrators))
	for k := range f.integrators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *DefaultFactory) Get(name string) (Integrator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i, ok := f.integrators[name]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("unknown integrator %q", name)
}

func (f *DefaultFactory) MustGet(name string) Integrator {
	i, err := f.Get(name)
	if err != nil {
		panic(err)
	}
	return i
}

func (f *DefaultFactory) GetAll() map[string]Integrator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]Integrator, len(f.integrators))
	for k, v := range f.integrators {
		out[k] = v
	}
	return out
}

func (f *DefaultFactory) Register(name string, integrator Integrator) error {
	if name == "" {
		return fmt.Errorf("integrator name must not be empty")
	}
	if integrator == nil {
		return fmt.Errorf("integrator %q is nil", name)
	}
	f.mu.Lock()
	f.integrators[name] = integrator
	f.mu.Unlock()
	return nil
}

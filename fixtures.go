package scenario

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FixtureFunc builds a named fixture value. It runs once per generated test
// execution so every test sees a fresh value.
type FixtureFunc func() (any, error)

// FixtureRef is a scope value that names a registered fixture instead of
// carrying the value itself. The reference is resolved through the builder's
// FixtureRegistry when the generated test runs.
type FixtureRef struct {
	Name string
}

// Fixture returns a reference to a registered fixture.
func Fixture(name string) FixtureRef {
	return FixtureRef{Name: name}
}

func (f FixtureRef) String() string {
	return f.Name
}

// FixtureRegistry stores fixture factories keyed by name.
type FixtureRegistry struct {
	mu       sync.RWMutex
	fixtures map[string]FixtureFunc
}

// NewFixtureRegistry constructs an empty registry.
func NewFixtureRegistry() *FixtureRegistry {
	return &FixtureRegistry{
		fixtures: make(map[string]FixtureFunc),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FixtureRegistry) Register(name string, fn FixtureFunc) error {
	if fn == nil {
		return fmt.Errorf("scenario: fixture %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("scenario: fixture name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fixtures == nil {
		r.fixtures = make(map[string]FixtureFunc)
	}
	key := strings.ToLower(name)
	if _, exists := r.fixtures[key]; exists {
		return fmt.Errorf("scenario: fixture %q already registered", name)
	}
	r.fixtures[key] = fn
	return nil
}

// Has reports whether a fixture is registered under name.
func (r *FixtureRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fixtures[strings.ToLower(name)]
	return ok
}

// Resolve invokes the fixture factory registered for name.
func (r *FixtureRegistry) Resolve(name string) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("scenario: fixture registry is nil")
	}
	r.mu.RLock()
	fn := r.fixtures[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("scenario: fixture %q not registered", name)
	}
	return fn()
}

// Clone returns a shallow copy of the registry.
func (r *FixtureRegistry) Clone() *FixtureRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FixtureRegistry{
		fixtures: make(map[string]FixtureFunc, len(r.fixtures)),
	}
	for name, fn := range r.fixtures {
		clone.fixtures[name] = fn
	}
	return clone
}

// Names returns registered fixture names sorted alphabetically.
func (r *FixtureRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fixtures))
	for name := range r.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFixtureRegistry configures a Builder to resolve fixture references
// through registry.
func WithFixtureRegistry(registry *FixtureRegistry) Option {
	return func(cfg *builderConfig) {
		if registry == nil {
			return
		}
		cfg.fixtures = registry.Clone()
	}
}

// WithFixture registers fn under name on the Builder's registry.
func WithFixture(name string, fn FixtureFunc) Option {
	return func(cfg *builderConfig) {
		if cfg.fixtures == nil {
			cfg.fixtures = NewFixtureRegistry()
		}
		_ = cfg.fixtures.Register(name, fn)
	}
}

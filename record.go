package scenario

import (
	"github.com/google/uuid"
)

// Record is the immutable registration captured when Test is declared: the
// canonical name, a detached snapshot of the scope in effect at declaration
// time, and the body to run. Records are created once, read when the
// generated test executes, and never mutated.
type Record struct {
	id          string
	name        string
	description string
	scope       map[string]any
	origins     []Origin
	body        TestFunc
}

func newRecord(name, description string, scope map[string]any, origins map[string]Origin, body TestFunc) *Record {
	return &Record{
		id:          uuid.NewString(),
		name:        name,
		description: description,
		scope:       cloneScope(scope),
		origins:     sortedOrigins(origins),
		body:        body,
	}
}

// ID returns the snapshot identifier assigned at declaration time.
func (r *Record) ID() string {
	return r.id
}

// Name returns the canonical name.
func (r *Record) Name() string {
	return r.name
}

// TestName returns the name the generated test is registered under.
func (r *Record) TestName() string {
	return TestNamePrefix + r.name
}

// Description returns the human-readable description, possibly empty.
func (r *Record) Description() string {
	return r.description
}

// Scope returns a detached copy of the full stored scope, including the
// reserved post key.
func (r *Record) Scope() map[string]any {
	return cloneScope(r.scope)
}

// PreScope returns a detached copy of the stored scope with the reserved
// post key stripped. Fixture references are returned unresolved; the runner
// resolves them per execution.
func (r *Record) PreScope() map[string]any {
	out := make(map[string]any, len(r.scope))
	for key, value := range r.scope {
		if key == ReservedPostKey {
			continue
		}
		if sub, ok := value.(map[string]any); ok {
			out[key] = cloneOpts(sub)
			continue
		}
		out[key] = value
	}
	return out
}

// PostOpts returns the sub-mapping stored under the reserved post key, or an
// empty mapping when absent.
func (r *Record) PostOpts() map[string]any {
	if value, ok := r.scope[ReservedPostKey]; ok {
		if sub, ok := value.(map[string]any); ok {
			return cloneOpts(sub)
		}
	}
	return map[string]any{}
}

// Trace returns the per-key provenance captured at declaration time.
func (r *Record) Trace() Trace {
	origins := make([]Origin, len(r.origins))
	copy(origins, r.origins)
	return Trace{
		Name:    r.name,
		Origins: origins,
	}
}

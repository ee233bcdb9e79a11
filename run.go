package scenario

import "testing"

// Run registers every record in b's registry as a subtest of t, sorted by
// canonical name. Each generated test looks up its own record, resolves any
// fixture references, and executes pre-processing, the body, and
// post-processing in order. Post-processing is installed with defer before
// the body runs, so it executes even when the body fails, mirroring the scope
// stack's restore discipline.
func Run(t *testing.T, b *Builder, hooks Hooks) {
	t.Helper()
	if hooks == nil {
		hooks = NopHooks{}
	}
	fixtures := b.cfg.fixtures
	for _, record := range b.Registry().Records() {
		record := record
		t.Run(record.TestName(), func(t *testing.T) {
			runRecord(t, record, fixtures, hooks)
		})
	}
}

func runRecord(t *testing.T, record *Record, fixtures *FixtureRegistry, hooks Hooks) {
	t.Helper()
	scope, err := resolveScope(record.PreScope(), fixtures)
	if err != nil {
		t.Fatalf("resolve scope for %s: %v", record.Name(), err)
	}
	defer hooks.PostProcess(t, record.PostOpts())
	hooks.PreProcess(t, scope)
	record.body(t)
}

// resolveScope replaces fixture references with freshly built fixture values.
// References were validated at declaration time, so a failure here means the
// factory itself failed.
func resolveScope(scope map[string]any, fixtures *FixtureRegistry) (map[string]any, error) {
	for key, value := range scope {
		ref, ok := fixtureRef(value)
		if !ok {
			continue
		}
		resolved, err := fixtures.Resolve(ref.Name)
		if err != nil {
			return nil, err
		}
		scope[key] = resolved
	}
	return scope, nil
}

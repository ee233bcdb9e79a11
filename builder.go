package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-scenario/pkg/activity"
)

// Builder threads the live scenario scope through nested declaration blocks
// and owns the registry the generated tests are read from. Declaration is a
// build phase: it is expected to run on a single goroutine to completion
// before any generated test executes. The registry itself is safe for
// concurrent reads afterwards.
type Builder struct {
	cfg      builderConfig
	current  map[string]any
	origins  map[string]Origin
	depth    int
	registry *Registry
	emitter  *activity.Emitter
}

// New constructs a Builder with an empty scope and registry.
func New(opts ...Option) *Builder {
	cfg := applyOptions(opts)
	b := &Builder{
		cfg:      cfg,
		current:  map[string]any{},
		origins:  map[string]Origin{},
		registry: NewRegistry(),
	}
	b.emitter = activity.NewEmitter(cfg.hooks, activity.Config{
		Enabled: cfg.hooks.Enabled(),
	})
	return b
}

// Suite returns the suite name configured via WithSuiteName.
func (b *Builder) Suite() string {
	return b.cfg.suite
}

// Registry returns the process-lifetime record registry.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Fixtures returns the fixture registry, creating one on first use.
func (b *Builder) Fixtures() *FixtureRegistry {
	if b.cfg.fixtures == nil {
		b.cfg.fixtures = NewFixtureRegistry()
	}
	return b.cfg.fixtures
}

// Scope returns a detached copy of the scope currently in effect. Mostly
// useful for debugging declaration trees.
func (b *Builder) Scope() map[string]any {
	return cloneScope(b.current)
}

// Scenario merges options into the live scope for the duration of body. The
// prior scope is restored on every exit path, including a panic inside body.
// Colliding keys take the incoming value for the sub-scope only.
func (b *Builder) Scenario(options map[string]any, body func()) error {
	return b.declare("", options, body)
}

// ScenarioWhen behaves like Scenario when guard evaluates to true against the
// ambient scope, and silently skips the whole subtree when it evaluates to
// false. Guard failures surface as declaration errors.
func (b *Builder) ScenarioWhen(guard string, options map[string]any, body func()) error {
	if strings.TrimSpace(guard) == "" {
		err := invalidDeclaration("guard expression must not be empty")
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindScenario, Keys: sortedKeys(options), Err: err})
		return err
	}
	return b.declare(guard, options, body)
}

func (b *Builder) declare(guard string, options map[string]any, body func()) error {
	keys := sortedKeys(options)
	if err := validateOptions(options); err != nil {
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindScenario, Keys: keys, Err: err})
		return err
	}
	if body == nil {
		err := invalidDeclaration("scenario body must not be nil")
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindScenario, Keys: keys, Err: err})
		return err
	}

	if guard != "" {
		ok, err := b.evalGuard(guard)
		if err != nil {
			b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindScenario, Keys: keys, Err: err})
			return err
		}
		if !ok {
			b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindSkipped, Keys: keys})
			return nil
		}
	}

	snapshot := cloneScope(b.current)
	snapOrigins := cloneOrigins(b.origins)
	b.depth++
	for key, value := range options {
		_, overridden := b.current[key]
		b.origins[key] = Origin{
			Key:        key,
			Value:      value,
			Depth:      b.depth,
			Overridden: overridden,
		}
	}
	mergeScope(b.current, options)

	defer func() {
		b.current = snapshot
		b.origins = snapOrigins
		b.depth--
	}()

	b.emit(activity.BuildScenarioDeclaredEvent(activity.EventInput{
		Suite: b.cfg.suite,
		Keys:  keys,
	}))
	b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindScenario, Keys: keys})

	body()
	return nil
}

// Test captures the scope currently in effect, derives the canonical name,
// and stores the record under it. A later declaration that canonicalizes to
// the same name silently overwrites the earlier record; the overwrite is
// logged and emitted as an activity event but is never fatal.
func (b *Builder) Test(description string, body TestFunc) error {
	if body == nil {
		err := invalidDeclaration("test body must not be nil")
		err.Description = description
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindTest, Err: err})
		return err
	}

	name, err := CanonicalName(description, b.current)
	if err != nil {
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindTest, Err: err})
		return err
	}

	if err := b.validateFixtureRefs(description); err != nil {
		b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindTest, Name: name, Err: err})
		return err
	}

	record := newRecord(name, strings.TrimSpace(description), b.current, b.origins, body)
	prev := b.registry.put(record)
	collision := prev != nil

	input := activity.EventInput{
		Suite: b.cfg.suite,
		Name:  name,
		Keys:  sortedKeys(record.scope),
	}
	if collision {
		input.Metadata = map[string]any{"displaced_id": prev.ID()}
		b.emit(activity.BuildTestOverwrittenEvent(input))
	} else {
		b.emit(activity.BuildTestRegisteredEvent(input))
	}
	b.logDeclaration(DeclarationLogEvent{Kind: DeclarationKindTest, Name: name, Collision: collision})
	return nil
}

// validateFixtureRefs fails fast when the scope references fixtures that are
// not registered, so a missing fixture surfaces at declaration time rather
// than when the generated test runs.
func (b *Builder) validateFixtureRefs(description string) error {
	for key, value := range b.current {
		if key == ReservedPostKey {
			continue
		}
		ref, ok := fixtureRef(value)
		if !ok {
			continue
		}
		if !b.cfg.fixtures.Has(ref.Name) {
			err := &DeclarationError{
				Reason:      fmt.Sprintf("fixture %q not registered", ref.Name),
				Description: description,
				Key:         key,
			}
			return err
		}
	}
	return nil
}

func fixtureRef(value any) (FixtureRef, bool) {
	switch typed := value.(type) {
	case FixtureRef:
		return typed, true
	case *FixtureRef:
		if typed == nil {
			return FixtureRef{}, false
		}
		return *typed, true
	default:
		return FixtureRef{}, false
	}
}

func (b *Builder) evalGuard(expr string) (bool, error) {
	evaluator := b.resolveEvaluator()
	ctx := GuardContext{Scope: cloneScope(b.current)}.withDefaultNow().withDefaultMaps()
	value, err := evaluator.Evaluate(ctx, expr)
	if err != nil {
		return false, wrapGuardError(evaluatorEngineName(evaluator), expr, err)
	}
	ok, isBool := value.(bool)
	if !isBool {
		return false, &GuardError{
			Engine: evaluatorEngineName(evaluator),
			Expr:   expr,
			Err:    fmt.Errorf("guard must evaluate to a boolean, got %T", value),
		}
	}
	return ok, nil
}

func (b *Builder) resolveEvaluator() Evaluator {
	if b.cfg.evaluator != nil {
		return b.cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if cache := b.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := b.cfg.fixtures; registry != nil {
		exprOpts = append(exprOpts, ExprWithFixtureRegistry(registry))
	}
	b.cfg.evaluator = NewExprEvaluator(exprOpts...)
	return b.cfg.evaluator
}

func (b *Builder) logDeclaration(event DeclarationLogEvent) {
	if b.cfg.logger != nil {
		b.cfg.logger.LogDeclaration(event)
		return
	}
	noopDeclarationLogger{}.LogDeclaration(event)
}

func (b *Builder) emit(event activity.Event) {
	if !b.emitter.Enabled() {
		return
	}
	// Emission is best-effort; a failing hook never fails a declaration.
	_ = b.emitter.Emit(context.Background(), event)
}

func sortedKeys(options map[string]any) []string {
	if len(options) == 0 {
		return nil
	}
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*scenario.exprEvaluator":
		return "expr"
	case "*scenario.celEvaluator":
		return "cel"
	case "*scenario.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

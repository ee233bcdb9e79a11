package scenario

import (
	"testing"
	"time"

	"github.com/goliatone/go-scenario/pkg/activity"
)

// ReservedPostKey is the scope key whose value is consumed exclusively by
// post-processing. It is stripped from the scope handed to pre-processing and
// to the test body, and it never contributes canonical-name tokens.
const ReservedPostKey = "post"

// TestFunc is the core of a registered test: the assertions that run between
// the pre- and post-processing hooks.
type TestFunc func(tb testing.TB)

// Hooks is the extension point the host test suite implements to translate
// scenario options into concrete setup and teardown. PreProcess receives the
// scope with the reserved post key stripped and fixture references resolved;
// PostProcess receives the sub-mapping stored under the reserved post key.
type Hooks interface {
	PreProcess(tb testing.TB, scope map[string]any)
	PostProcess(tb testing.TB, opts map[string]any)
}

// NopHooks is the default Hooks implementation. Both hooks do nothing.
type NopHooks struct{}

func (NopHooks) PreProcess(testing.TB, map[string]any)  {}
func (NopHooks) PostProcess(testing.TB, map[string]any) {}

// HookFuncs adapts plain functions to Hooks. Nil functions are no-ops.
type HookFuncs struct {
	Pre  func(tb testing.TB, scope map[string]any)
	Post func(tb testing.TB, opts map[string]any)
}

func (h HookFuncs) PreProcess(tb testing.TB, scope map[string]any) {
	if h.Pre != nil {
		h.Pre(tb, scope)
	}
}

func (h HookFuncs) PostProcess(tb testing.TB, opts map[string]any) {
	if h.Post != nil {
		h.Post(tb, opts)
	}
}

// GuardContext carries inputs needed when evaluating a guard expression.
type GuardContext struct {
	Scope map[string]any
	Now   *time.Time
	Args  map[string]any
}

func (ctx GuardContext) withDefaultNow() GuardContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx GuardContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx GuardContext) withDefaultMaps() GuardContext {
	if ctx.Scope == nil {
		ctx.Scope = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

// Evaluator executes guard expressions against a guard context.
type Evaluator interface {
	Evaluate(ctx GuardContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledGuard, error)
}

// CompiledGuard represents a reusable guard program.
type CompiledGuard interface {
	Evaluate(ctx GuardContext) (any, error)
}

// CompileOption configures guard compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Builder.
type Option func(*builderConfig)

type builderConfig struct {
	suite        string
	evaluator    Evaluator
	programCache ProgramCache
	fixtures     *FixtureRegistry
	logger       DeclarationLogger
	manifest     ManifestGenerator
	hooks        activity.Hooks
}

func applyOptions(opts []Option) builderConfig {
	cfg := builderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSuiteName labels the builder for manifests and activity events.
func WithSuiteName(name string) Option {
	return func(cfg *builderConfig) {
		cfg.suite = name
	}
}

// WithEvaluator configures the guard evaluator used by ScenarioWhen.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *builderConfig) {
		cfg.evaluator = e
	}
}

package scenario

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL guard evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFixtureRegistry exposes registered fixtures to guard expressions
// through a fixture(name) function.
func CELWithFixtureRegistry(registry *FixtureRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.fixtures = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	fixtures *FixtureRegistry
}

// NewCELEvaluator constructs a guard Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx GuardContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapGuardError("cel", expression, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	scope := guardScopeBinding(ctx.Scope)
	program, err := e.loadOrCompile(expression, scope)
	if err != nil {
		return nil, wrapGuardError("cel", expression, err)
	}
	out, _, err := program.program.Eval(e.activation(ctx, scope))
	if err != nil {
		return nil, wrapGuardError("cel", expression, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledGuard, error) {
	if expression == "" {
		return nil, wrapGuardError("cel", expression, fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledGuard{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, scope map[string]any) (*celProgram, error) {
	if scope == nil {
		scope = map[string]any{}
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(scope)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(scope map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("scope", celgo.DynType),
	}
	if e.fixtures != nil {
		opts = append(opts, celgo.Function("fixture", celgo.Overload(
			"fixture_dyn",
			[]*celgo.Type{celgo.StringType},
			celgo.DynType,
			celgo.FunctionBinding(e.fixtureBinding()),
		)))
	}
	for key := range scope {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx GuardContext, scope map[string]any) map[string]any {
	activation := map[string]any{
		"now":   ctx.timestamp(),
		"args":  ctx.Args,
		"scope": scope,
	}
	for key, value := range scope {
		activation[key] = value
	}
	return activation
}

type celCompiledGuard struct {
	evaluator  *celEvaluator
	expression string
}

func (g *celCompiledGuard) Evaluate(ctx GuardContext) (any, error) {
	if g.evaluator == nil {
		return nil, wrapGuardError("cel", g.expression, fmt.Errorf("compiled guard missing evaluator"))
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	scope := guardScopeBinding(ctx.Scope)
	program, err := g.evaluator.loadOrCompile(g.expression, scope)
	if err != nil {
		return nil, wrapGuardError("cel", g.expression, err)
	}
	out, _, err := program.program.Eval(g.evaluator.activation(ctx, scope))
	if err != nil {
		return nil, wrapGuardError("cel", g.expression, err)
	}
	return out.Value(), nil
}

// guardScopeBinding renders fixture references as their names so guard
// engines see plain strings rather than package-private structs.
func guardScopeBinding(scope map[string]any) map[string]any {
	if scope == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(scope))
	for key, value := range scope {
		if ref, ok := fixtureRef(value); ok {
			out[key] = ref.Name
			continue
		}
		out[key] = value
	}
	return out
}

func (e *celEvaluator) fixtureBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.fixtures == nil {
			return types.NewErr("scenario: fixture registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("scenario: fixture requires a name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("scenario: fixture name must be string")
		}
		result, err := e.fixtures.Resolve(name)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

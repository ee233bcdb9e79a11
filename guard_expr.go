package scenario

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFixtureRegistry exposes registered fixtures to guard expressions
// through a fixture(name) helper.
func ExprWithFixtureRegistry(registry *FixtureRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.fixtures = registry.Clone()
	}
}

// exprEvaluator executes guard expressions using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	fixtures *FixtureRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. It is
// the default guard engine.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles and runs expression against ctx.Scope.
func (e *exprEvaluator) Evaluate(ctx GuardContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapGuardError("expr", expression, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	env := e.environment(ctx)
	if e.cache == nil {
		result, err := exprlang.Eval(expression, env)
		if err != nil {
			return nil, wrapGuardError("expr", expression, err)
		}
		return result, nil
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapGuardError("expr", expression, err)
	}
	return result, nil
}

// Compile returns a compiled guard that evaluates expression per invocation.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledGuard, error) {
	if expression == "" {
		return nil, wrapGuardError("expr", expression, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledGuard{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapGuardError("expr", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

type exprCompiledGuard struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (g *exprCompiledGuard) Evaluate(ctx GuardContext) (any, error) {
	if g.evaluator == nil {
		return nil, wrapGuardError("expr", g.expression, fmt.Errorf("compiled guard missing evaluator"))
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	if g.program == nil {
		return g.evaluator.Evaluate(ctx, g.expression)
	}
	env := g.evaluator.environment(ctx)
	result, err := exprlang.Run(g.program, env)
	if err != nil {
		return nil, wrapGuardError("expr", g.expression, err)
	}
	return result, nil
}

// environment binds the ambient scope's keys directly as variables alongside
// the scope mapping itself, the declaration timestamp, and caller args.
func (e *exprEvaluator) environment(ctx GuardContext) map[string]any {
	env := map[string]any{
		"now":   ctx.timestamp(),
		"args":  ctx.Args,
		"scope": ctx.Scope,
	}
	for key, value := range ctx.Scope {
		if ref, ok := fixtureRef(value); ok {
			env[key] = ref.Name
			continue
		}
		env[key] = value
	}
	if e.fixtures != nil {
		env["fixture"] = func(name string) (any, error) {
			return e.fixtures.Resolve(name)
		}
	}
	return env
}

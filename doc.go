// Package scenario lets test suites declare nested scenarios (named
// conditions) and register concrete test cases inside the innermost scope.
// Each registered case becomes a full test, named by canonically joining the
// active scenario options, and wrapped with host-supplied pre- and
// post-processing hooks parameterized by the captured scope.
//
// Declaration is a build phase: a Builder threads the live scope through
// nested Scenario blocks on a single goroutine, and Test captures an
// immutable snapshot into the registry. The generated tests are handed to
// go test through Run, which registers one subtest per record:
//
//	b := scenario.New()
//	_ = b.Scenario(map[string]any{"logged_in": true}, func() {
//		_ = b.Test("sees the cart", func(tb testing.TB) { ... })
//	})
//	scenario.Run(t, b, suiteHooks)
//
// Scope data flow:
//
//	Scenario (push/merge) -> Test (snapshot + canonical name) -> Registry
//	Run -> PreProcess(pre scope) -> body -> PostProcess(post opts)
//
// The scope entry stored under ReservedPostKey is not a scenario condition;
// it is handed to post-processing only and never reaches pre-processing, the
// body, or the canonical name.
package scenario

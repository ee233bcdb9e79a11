package scenariofile

import (
	"fmt"

	scenario "github.com/goliatone/go-scenario"
)

// Bodies binds document test entries to Go test bodies by name.
type Bodies map[string]scenario.TestFunc

// Apply declares every scenario in the document against b, registering each
// test entry with the body bound under its key. Declaration stops at the
// first error, matching the fail-fast semantics of direct declarations.
func Apply(b *scenario.Builder, doc Document, bodies Bodies) error {
	for _, node := range doc.Scenarios {
		if err := applyNode(b, node, bodies); err != nil {
			return err
		}
	}
	return nil
}

func applyNode(b *scenario.Builder, node Node, bodies Bodies) error {
	options := normalizeOptions(node.Options)

	var inner error
	body := func() {
		for _, test := range node.Tests {
			fn, ok := bodies[test.bodyKey()]
			if !ok {
				inner = fmt.Errorf("scenariofile: no body bound for %q", test.bodyKey())
				return
			}
			if err := b.Test(test.Description, fn); err != nil {
				inner = err
				return
			}
		}
		for _, child := range node.Scenarios {
			if err := applyNode(b, child, bodies); err != nil {
				inner = err
				return
			}
		}
	}

	var err error
	if node.When != "" {
		err = b.ScenarioWhen(node.When, options, body)
	} else {
		err = b.Scenario(options, body)
	}
	if err != nil {
		return err
	}
	return inner
}

// normalizeOptions converts single-key {fixture: name} mappings into fixture
// references so documents can point scope values at registered fixtures.
func normalizeOptions(options map[string]any) map[string]any {
	if options == nil {
		return nil
	}
	out := make(map[string]any, len(options))
	for key, value := range options {
		if sub, ok := value.(map[string]any); ok && len(sub) == 1 {
			if name, ok := sub["fixture"].(string); ok {
				out[key] = scenario.Fixture(name)
				continue
			}
		}
		out[key] = value
	}
	return out
}

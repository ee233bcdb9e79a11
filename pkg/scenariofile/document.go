// Package scenariofile loads declarative scenario tables from YAML or JSON
// documents and applies them to a scenario.Builder. Bodies stay in Go code
// and are bound by name; the document only describes the declaration tree.
package scenariofile

// Document is the root of a scenario table.
type Document struct {
	Suite     string `yaml:"suite,omitempty" json:"suite,omitempty"`
	Scenarios []Node `yaml:"scenarios" json:"scenarios"`
}

// Node is one scenario declaration: its options, an optional guard
// expression, nested scenario declarations, and the tests registered in its
// scope.
type Node struct {
	Options   map[string]any `yaml:"options" json:"options"`
	When      string         `yaml:"when,omitempty" json:"when,omitempty"`
	Scenarios []Node         `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	Tests     []TestEntry    `yaml:"tests,omitempty" json:"tests,omitempty"`
}

// TestEntry registers one test in the enclosing scope. Body names the entry
// in the bodies map supplied to Apply; when empty, the description is used as
// the lookup key.
type TestEntry struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Body        string `yaml:"body,omitempty" json:"body,omitempty"`
}

func (t TestEntry) bodyKey() string {
	if t.Body != "" {
		return t.Body
	}
	return t.Description
}

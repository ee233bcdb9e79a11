package scenariofile

import (
	"errors"
	"strings"
	"testing"

	scenario "github.com/goliatone/go-scenario"
)

const sampleTable = `
suite: storefront
scenarios:
  - options:
      logged_in: true
    tests:
      - description: sees the cart
        body: cart
    scenarios:
      - options:
          role: admin
          post:
            cleanup: true
        tests:
          - description: sees the dashboard
            body: dashboard
`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Suite != "storefront" {
		t.Fatalf("expected suite storefront, got %q", doc.Suite)
	}
	if len(doc.Scenarios) != 1 {
		t.Fatalf("expected 1 top-level scenario, got %d", len(doc.Scenarios))
	}
	root := doc.Scenarios[0]
	if root.Options["logged_in"] != true {
		t.Fatalf("unexpected root options %v", root.Options)
	}
	if len(root.Tests) != 1 || root.Tests[0].Body != "cart" {
		t.Fatalf("unexpected root tests %+v", root.Tests)
	}
	if len(root.Scenarios) != 1 {
		t.Fatalf("expected nested scenario, got %d", len(root.Scenarios))
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	payload := `{"suite":"storefront","scenarios":[{"options":{"logged_in":true},"tests":[{"description":"sees the cart","body":"cart"}]}]}`
	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Suite != "storefront" || len(doc.Scenarios) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestParseRejectsEmptyPayload(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatalf("expected empty payload to fail")
	}
	if _, err := Parse([]byte("[broken")); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}

func TestDecoderHooks(t *testing.T) {
	var preSeen bool
	decoder := NewDecoder(
		WithPreHook(func(raw map[string]any) (map[string]any, error) {
			preSeen = true
			raw["suite"] = "renamed"
			return raw, nil
		}),
		WithPostHook(func(doc *Document) error {
			if doc.Suite != "renamed" {
				return errors.New("pre-hook mutation lost")
			}
			return nil
		}),
	)

	doc, err := decoder.Decode([]byte(sampleTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !preSeen {
		t.Fatalf("expected pre-hook to run")
	}
	if doc.Suite != "renamed" {
		t.Fatalf("expected suite renamed, got %q", doc.Suite)
	}
}

func TestDecoderKnownFieldsRejectsUnknown(t *testing.T) {
	payload := `
scenarios:
  - options:
      x: 1
    unexpected: true
`
	if _, err := NewDecoder(WithKnownFields()).Decode([]byte(payload)); err == nil {
		t.Fatalf("expected unknown field rejection")
	}
}

func TestApplyDeclaresScenarios(t *testing.T) {
	doc, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := scenario.New(scenario.WithSuiteName(doc.Suite))
	bodies := Bodies{
		"cart":      func(testing.TB) {},
		"dashboard": func(testing.TB) {},
	}
	if err := Apply(b, doc, bodies); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.Registry().Len(); got != 2 {
		t.Fatalf("expected 2 registered tests, got %d", got)
	}
	record, ok := b.Registry().Lookup("sees_the_dashboard_logged_in_true_and_role_admin")
	if !ok {
		t.Fatalf("nested record missing")
	}
	if got := record.PostOpts()["cleanup"]; got != true {
		t.Fatalf("expected post opts carried through, got %v", got)
	}
}

func TestApplyFailsOnUnboundBody(t *testing.T) {
	doc, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := scenario.New()
	err = Apply(b, doc, Bodies{"cart": func(testing.TB) {}})
	if err == nil || !strings.Contains(err.Error(), "dashboard") {
		t.Fatalf("expected unbound body error, got %v", err)
	}
}

func TestApplyNormalizesFixtureValues(t *testing.T) {
	payload := `
scenarios:
  - options:
      viewer:
        fixture: buyer
    tests:
      - description: sees the cart
        body: cart
`
	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := scenario.New(scenario.WithFixture("buyer", func() (any, error) {
		return "buyer-1", nil
	}))
	if err := Apply(b, doc, Bodies{"cart": func(testing.TB) {}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := b.Registry().Lookup("sees_the_cart_viewer_buyer"); !ok {
		t.Fatalf("expected fixture-valued scope to register under the fixture name")
	}
}

func TestApplyHonoursGuards(t *testing.T) {
	payload := `
scenarios:
  - options:
      logged_in: true
    scenarios:
      - options:
          role: admin
        when: 'logged_in == true'
        tests:
          - description: allowed
            body: allowed
      - options:
          role: ghost
        when: 'logged_in == false'
        tests:
          - description: hidden
            body: hidden
`
	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := scenario.New()
	bodies := Bodies{
		"allowed": func(testing.TB) {},
		"hidden":  func(testing.TB) {},
	}
	if err := Apply(b, doc, bodies); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.Registry().Len(); got != 1 {
		t.Fatalf("expected only the guarded-in test, got %d", got)
	}
	if _, ok := b.Registry().Lookup("allowed_logged_in_true_and_role_admin"); !ok {
		t.Fatalf("expected allowed test registered")
	}
}

func TestBodyKeyFallsBackToDescription(t *testing.T) {
	entry := TestEntry{Description: "sees the cart"}
	if got := entry.bodyKey(); got != "sees the cart" {
		t.Fatalf("expected description fallback, got %q", got)
	}
	entry.Body = "cart"
	if got := entry.bodyKey(); got != "cart" {
		t.Fatalf("expected explicit body key, got %q", got)
	}
}

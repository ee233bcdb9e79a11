package scenario

import "encoding/json"

// TestDescriptor describes a single registered test within a manifest.
type TestDescriptor struct {
	Name        string         `json:"name"`
	TestName    string         `json:"test_name"`
	Description string         `json:"description,omitempty"`
	Scope       map[string]any `json:"scope,omitempty"`
	SnapshotID  string         `json:"snapshot_id,omitempty"`
}

// Manifest is the machine-readable inventory of a builder's registered
// tests. CI tooling filters generated tests by name pattern, so the manifest
// is the stable surface for discovering what a suite declares.
type Manifest struct {
	Suite string           `json:"suite,omitempty"`
	Tests []TestDescriptor `json:"tests"`
}

// ToJSON serialises the manifest.
func (m Manifest) ToJSON() ([]byte, error) {
	type alias Manifest
	return json.Marshal(alias(m))
}

// ManifestGenerator transforms registry records into a manifest document.
// Implementations must handle empty record sets by returning an empty
// manifest.
type ManifestGenerator interface {
	Generate(suite string, records []*Record) (Manifest, error)
}

// WithManifestGenerator configures a custom manifest generator.
func WithManifestGenerator(generator ManifestGenerator) Option {
	return func(cfg *builderConfig) {
		cfg.manifest = generator
	}
}

// DefaultManifestGenerator returns the built-in descriptor generator.
func DefaultManifestGenerator() ManifestGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(suite string, records []*Record) (Manifest, error) {
	tests := make([]TestDescriptor, 0, len(records))
	for _, record := range records {
		tests = append(tests, TestDescriptor{
			Name:        record.Name(),
			TestName:    record.TestName(),
			Description: record.Description(),
			Scope:       manifestScope(record.Scope()),
			SnapshotID:  record.ID(),
		})
	}
	return Manifest{
		Suite: suite,
		Tests: tests,
	}, nil
}

// manifestScope renders fixture references as their names so the document
// stays JSON-serialisable and diffable.
func manifestScope(scope map[string]any) map[string]any {
	if len(scope) == 0 {
		return nil
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

// Manifest generates the manifest for every record currently registered,
// sorted by canonical name.
func (b *Builder) Manifest() (Manifest, error) {
	generator := b.cfg.manifest
	if generator == nil {
		generator = DefaultManifestGenerator()
	}
	return generator.Generate(b.cfg.suite, b.registry.Records())
}

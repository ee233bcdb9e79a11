package scenario

// ProgramCache stores compiled guard programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache for guard compilation on the
// Builder.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *builderConfig) {
		cfg.programCache = cache
	}
}

package scenario

import "github.com/goliatone/go-scenario/pkg/activity"

// WithActivityHooks attaches declaration lifecycle hooks to the Builder.
// Hooks are cloned and nil entries dropped to preserve immutability.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *builderConfig) {
		cfg.hooks = normalized
	}
}

// ActivityHooks returns a cloned slice of the activity hooks configured on
// the builder. The returned slice can be safely mutated by the caller.
func (b *Builder) ActivityHooks() activity.Hooks {
	if b == nil {
		return nil
	}
	return cloneActivityHooks(b.cfg.hooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

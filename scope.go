package scenario

// cloneScope returns a detached copy of a scope mapping. Values stored under
// the reserved post key are themselves mappings and are copied one level deep;
// every other value is opaque to this package and copied by reference.
func cloneScope(scope map[string]any) map[string]any {
	if scope == nil {
		return nil
	}
	out := make(map[string]any, len(scope))
	for key, value := range scope {
		if sub, ok := value.(map[string]any); ok {
			out[key] = cloneOpts(sub)
			continue
		}
		out[key] = value
	}
	return out
}

// cloneOpts copies a flat option mapping.
func cloneOpts(opts map[string]any) map[string]any {
	if opts == nil {
		return nil
	}
	out := make(map[string]any, len(opts))
	for key, value := range opts {
		out[key] = value
	}
	return out
}

// mergeScope overlays options onto base. New keys are added, colliding keys
// take the incoming value. base is mutated in place; callers snapshot first.
func mergeScope(base, options map[string]any) {
	for key, value := range options {
		if sub, ok := value.(map[string]any); ok {
			base[key] = cloneOpts(sub)
			continue
		}
		base[key] = value
	}
}

func validateOptions(options map[string]any) error {
	if len(options) == 0 {
		return invalidDeclaration("options must be a non-empty mapping")
	}
	for key, value := range options {
		if key == "" {
			return invalidDeclaration("option keys must not be empty")
		}
		if key == ReservedPostKey {
			if _, ok := value.(map[string]any); !ok {
				err := invalidDeclaration("reserved post option must hold a mapping")
				err.Key = key
				return err
			}
		}
	}
	return nil
}

package scenario

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	tokenSeparator  = "_"
	nameConjunction = "_and_"

	// TestNamePrefix is prepended to every canonical name when registering
	// with the host framework. Tooling filters generated tests by this
	// pattern, so it is part of the external contract.
	TestNamePrefix = "test_"
)

// CanonicalName derives the deterministic identifier for a description and a
// scope: the whitespace-normalized description, followed by the scope's
// key-value tokens sorted lexicographically by key and joined with "_and_",
// the whole lower-cased and sanitized to a legal test identifier. The
// reserved post key contributes no tokens. An empty result is rejected with
// ErrInvalidDeclaration.
func CanonicalName(description string, scope map[string]any) (string, error) {
	var parts []string
	if desc := normalizeDescription(description); desc != "" {
		parts = append(parts, desc)
	}

	keys := make([]string, 0, len(scope))
	for key := range scope {
		if key == ReservedPostKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		tokens := make([]string, len(keys))
		for i, key := range keys {
			tokens[i] = key + tokenSeparator + valueToken(scope[key])
		}
		parts = append(parts, strings.Join(tokens, nameConjunction))
	}

	name := sanitizeName(strings.ToLower(strings.Join(parts, tokenSeparator)))
	if name == "" {
		err := invalidDeclaration("canonical name is empty; provide a description or a non-empty scope")
		err.Description = description
		return "", err
	}
	return name, nil
}

func normalizeDescription(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, tokenSeparator)
}

// valueToken renders a scope value for naming. Fixture references render as
// the fixture name so names stay stable across fixture re-registration.
func valueToken(value any) string {
	switch typed := value.(type) {
	case nil:
		return "nil"
	case FixtureRef:
		return typed.Name
	case *FixtureRef:
		if typed == nil {
			return "nil"
		}
		return typed.Name
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// sanitizeName maps every run of characters outside [a-z0-9] to a single
// underscore and trims leading/trailing underscores. Input is lower-cased by
// the caller.
func sanitizeName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	pendingSep := false
	for _, r := range name {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !valid {
			pendingSep = sb.Len() > 0
			continue
		}
		if pendingSep {
			sb.WriteByte('_')
			pendingSep = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

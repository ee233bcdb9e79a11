package activity

import (
	"strings"
	"time"
)

// Declaration lifecycle verbs.
const (
	VerbScenarioDeclared = "scenario.declared"
	VerbTestRegistered   = "test.registered"
	VerbTestOverwritten  = "test.overwritten"
)

// EventInput describes the common fields for declaration lifecycle events.
type EventInput struct {
	Suite      string
	Name       string
	Keys       []string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildScenarioDeclaredEvent constructs an event describing a scenario
// opening a scope.
func BuildScenarioDeclaredEvent(input EventInput) Event {
	return buildEvent(VerbScenarioDeclared, "scenario", input)
}

// BuildTestRegisteredEvent constructs an event describing a fresh test
// registration.
func BuildTestRegisteredEvent(input EventInput) Event {
	return buildEvent(VerbTestRegistered, "test", input)
}

// BuildTestOverwrittenEvent constructs an event describing a registration
// that displaced an earlier record under the same canonical name.
func BuildTestOverwrittenEvent(input EventInput) Event {
	return buildEvent(VerbTestOverwritten, "test", input)
}

func buildEvent(verb, objectType string, input EventInput) Event {
	objectID := strings.TrimSpace(input.Name)
	if objectID == "" {
		objectID = strings.Join(input.Keys, ",")
	}
	return Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Suite:      input.Suite,
		Channel:    input.Channel,
		Keys:       input.Keys,
		Metadata:   input.Metadata,
		OccurredAt: input.OccurredAt,
	}
}

package scenario

import (
	"encoding/json"
	"sort"
)

// Origin records which declaration depth contributed the effective value for
// a single scope key, and whether that assignment overrode an outer one.
type Origin struct {
	Key        string `json:"key"`
	Value      any    `json:"value,omitempty"`
	Depth      int    `json:"depth"`
	Overridden bool   `json:"overridden"`
}

// Trace captures the provenance of every key in a registered record's scope,
// useful when two declarations collide on a canonical name.
type Trace struct {
	Name    string   `json:"name"`
	Origins []Origin `json:"origins"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func cloneOrigins(origins map[string]Origin) map[string]Origin {
	if origins == nil {
		return nil
	}
	out := make(map[string]Origin, len(origins))
	for key, origin := range origins {
		out[key] = origin
	}
	return out
}

func sortedOrigins(origins map[string]Origin) []Origin {
	if len(origins) == 0 {
		return nil
	}
	out := make([]Origin, 0, len(origins))
	for _, origin := range origins {
		out = append(out, origin)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

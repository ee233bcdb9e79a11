package scenariofile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PreHook lets callers mutate or normalise the raw payload before decoding.
type PreHook func(map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the document after decoding.
type PostHook func(*Document) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts YAML or JSON payloads into scenario table documents.
type Decoder struct {
	preHooks  []PreHook
	postHooks []PostHook
	strict    bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithKnownFields rejects document fields this package does not define.
func WithKnownFields() DecoderOption {
	return func(d *Decoder) {
		d.strict = true
	}
}

// NewDecoder constructs a Decoder with the supplied configuration.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into a Document, applying configured hooks. YAML is
// a superset of JSON, so both formats are accepted.
func (d *Decoder) Decode(payload []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return Document{}, fmt.Errorf("scenariofile: parse payload: %w", err)
	}
	if raw == nil {
		return Document{}, fmt.Errorf("scenariofile: payload is empty")
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(raw)
		if err != nil {
			return Document{}, fmt.Errorf("scenariofile: pre-hook failed: %w", err)
		}
		if next != nil {
			raw = next
		}
	}

	buffer, err := yaml.Marshal(raw)
	if err != nil {
		return Document{}, fmt.Errorf("scenariofile: marshal payload: %w", err)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(buffer))
	dec.KnownFields(d.strict)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("scenariofile: decode document: %w", err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(&doc); err != nil {
			return Document{}, fmt.Errorf("scenariofile: post-hook failed: %w", err)
		}
	}
	return doc, nil
}

// Parse decodes payload with a default Decoder.
func Parse(payload []byte) (Document, error) {
	return NewDecoder().Decode(payload)
}

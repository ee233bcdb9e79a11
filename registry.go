package scenario

import (
	"sort"
	"sync"
)

// Registry stores records keyed by canonical name for the lifetime of the
// process. Writes happen during the single-threaded declaration phase;
// lookups are guarded so already-registered tests can execute in parallel.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: map[string]*Record{}}
}

// Lookup returns the record stored under name.
func (r *Registry) Lookup(name string) (*Record, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	record, ok := r.records[name]
	r.mu.RUnlock()
	return record, ok
}

// Records returns all stored records sorted by canonical name.
func (r *Registry) Records() []*Record {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].name < out[j].name
	})
	return out
}

// Len returns the number of stored records.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// put stores record under its canonical name, returning the record it
// displaced when the name was already taken. Last write wins.
func (r *Registry) put(record *Record) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = map[string]*Record{}
	}
	prev := r.records[record.name]
	r.records[record.name] = record
	return prev
}

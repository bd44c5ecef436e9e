package cache

import (
	"sync"

	"github.com/pkg/errors"
)

// NormalizedCache stores records keyed by object identity. Implementations
// must be safe for use under the Store's publish discipline; the Store never
// issues overlapping writes.
type NormalizedCache interface {
	// LoadRecords returns the subset of records present for keys. Missing
	// keys are omitted from the result, not errors.
	LoadRecords(keys []Key) (RecordSet, error)

	// MergeRecords folds records into the cache field by field and returns
	// the keys whose canonical content changed.
	MergeRecords(records RecordSet) (KeySet, error)

	// RemoveRecord deletes a single record.
	RemoveRecord(key Key) error

	// Clear drops every record.
	Clear() error
}

// InMemoryNormalizedCache keeps records in a map. It is the default backend
// for the Store.
type InMemoryNormalizedCache struct {
	mu      sync.RWMutex
	records RecordSet
}

var _ NormalizedCache = (*InMemoryNormalizedCache)(nil)

func NewInMemoryNormalizedCache() *InMemoryNormalizedCache {
	return &InMemoryNormalizedCache{records: make(RecordSet)}
}

// NewInMemoryNormalizedCacheWithRecords seeds the cache, mainly for tests.
func NewInMemoryNormalizedCacheWithRecords(records RecordSet) *InMemoryNormalizedCache {
	c := NewInMemoryNormalizedCache()
	c.records.Merge(records)
	return c
}

func (c *InMemoryNormalizedCache) LoadRecords(keys []Key) (RecordSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(RecordSet, len(keys))
	for _, key := range keys {
		if rec, ok := c.records[key]; ok {
			out[key] = rec.Clone()
		}
	}
	return out, nil
}

func (c *InMemoryNormalizedCache) MergeRecords(records RecordSet) (KeySet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := make(KeySet)
	for key, incoming := range records {
		existing, ok := c.records[key]
		if !ok {
			c.records[key] = incoming.Clone()
			changed.Add(key)
			continue
		}

		before, err := fingerprint(existing)
		if err != nil {
			return nil, errors.Wrapf(err, "fingerprinting record %q", key)
		}

		merged := existing.Clone()
		for field, value := range incoming {
			merged[field] = value
		}

		after, err := fingerprint(merged)
		if err != nil {
			return nil, errors.Wrapf(err, "fingerprinting record %q", key)
		}

		c.records[key] = merged
		if string(before) != string(after) {
			changed.Add(key)
		}
	}
	return changed, nil
}

func (c *InMemoryNormalizedCache) RemoveRecord(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, key)
	return nil
}

func (c *InMemoryNormalizedCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(RecordSet)
	return nil
}

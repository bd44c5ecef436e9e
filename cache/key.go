package cache

import (
	"fmt"
	"sort"
)

// Key identifies a normalized record. Keys compare by string equality.
type Key string

// QueryRootKey is the canonical key of the query root record.
const QueryRootKey Key = "QUERY_ROOT"

// MutationRootKey is the canonical key of the mutation root record.
const MutationRootKey Key = "MUTATION_ROOT"

// Append produces a path-based child key, e.g. "QUERY_ROOT.allAnimals.0".
func (k Key) Append(component string) Key {
	return Key(string(k) + "." + component)
}

// Reference is a field value pointing at another record.
type Reference struct {
	Key Key
}

// Record maps field keys to scalars, References, or lists thereof.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FieldKeys returns the record's field keys in sorted order.
func (r Record) FieldKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordSet maps cache keys to records.
type RecordSet map[Key]Record

// Merge folds other into the set, field by field, last write wins.
func (rs RecordSet) Merge(other RecordSet) {
	for key, rec := range other {
		existing, ok := rs[key]
		if !ok {
			rs[key] = rec.Clone()
			continue
		}
		for field, value := range rec {
			existing[field] = value
		}
	}
}

// Keys returns every cache key in the set, unordered.
func (rs RecordSet) Keys() []Key {
	keys := make([]Key, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	return keys
}

// DataDict is the type-erased payload backing generated selection set
// accessors. Its shape mirrors the selections that produced it.
type DataDict map[string]interface{}

// KeySet is the set type carried through change notifications.
type KeySet map[Key]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Add(k Key) { s[k] = struct{}{} }

func (s KeySet) Contains(k Key) bool {
	_, ok := s[k]
	return ok
}

// Intersects reports whether the two sets share at least one key.
func (s KeySet) Intersects(other KeySet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

// Union folds other into s.
func (s KeySet) Union(other KeySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

func (s KeySet) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return fmt.Sprintf("%v", keys)
}

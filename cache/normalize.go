package cache

import (
	"fmt"
	"strconv"
)

// CacheKeyPolicy decides the cache key for a response object, or "" to fall
// back to a path-based key under the parent. The default policy keys on
// `__typename:id`.
type CacheKeyPolicy func(object map[string]interface{}) Key

// DefaultCacheKeyPolicy keys objects carrying both __typename and id.
func DefaultCacheKeyPolicy(object map[string]interface{}) Key {
	typename, ok := object["__typename"].(string)
	if !ok || typename == "" {
		return ""
	}
	switch id := object["id"].(type) {
	case string:
		return Key(typename + ":" + id)
	case float64:
		return Key(typename + ":" + strconv.FormatFloat(id, 'f', -1, 64))
	case nil:
		return ""
	default:
		return Key(fmt.Sprintf("%s:%v", typename, id))
	}
}

// Normalizer flattens denormalized response payloads into records.
type Normalizer struct {
	Policy CacheKeyPolicy
}

// Normalize walks data as the payload of the record at rootKey and returns
// the record set to publish. Nested identifiable objects become their own
// records, replaced in the parent by References; everything else keys off
// the parent's path.
func (n Normalizer) Normalize(rootKey Key, data map[string]interface{}) RecordSet {
	policy := n.Policy
	if policy == nil {
		policy = DefaultCacheKeyPolicy
	}

	records := make(RecordSet)
	normalizeObject(records, policy, rootKey, data)
	return records
}

func normalizeObject(records RecordSet, policy CacheKeyPolicy, key Key, object map[string]interface{}) {
	record := make(Record, len(object))
	for field, value := range object {
		record[field] = normalizeValue(records, policy, key.Append(field), value)
	}

	if existing, ok := records[key]; ok {
		for field, value := range record {
			existing[field] = value
		}
		return
	}
	records[key] = record
}

func normalizeValue(records RecordSet, policy CacheKeyPolicy, pathKey Key, value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		key := policy(v)
		if key == "" {
			key = pathKey
		}
		normalizeObject(records, policy, key, v)
		return Reference{Key: key}
	case DataDict:
		return normalizeValue(records, policy, pathKey, map[string]interface{}(v))
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeValue(records, policy, pathKey.Append(strconv.Itoa(i)), item)
		}
		return out
	default:
		return v
	}
}

package cache

import (
	"strconv"

	"github.com/pkg/errors"
)

// ExecutionResult is the outcome of running a selection set against the
// store: the denormalized payload plus every cache key the traversal
// touched. DependentKeys drive query watcher invalidation.
type ExecutionResult struct {
	Data          DataDict
	DependentKeys KeySet
}

type recordLoader interface {
	LoadRecords(keys []Key) (RecordSet, error)
}

// ExecuteSelectionSet resolves selectionSet rooted at rootKey against the
// store. Every field must resolve; a missing field or a dangling reference
// fails with a MissError naming the path it died at.
func (s *Store) ExecuteSelectionSet(selectionSet SelectionSet, rootKey Key) (*ExecutionResult, error) {
	return executeSelectionSet(s.cache, selectionSet, rootKey)
}

func executeSelectionSet(loader recordLoader, selectionSet SelectionSet, rootKey Key) (*ExecutionResult, error) {
	exec := &executor{
		loader:        loader,
		dependentKeys: NewKeySet(),
	}
	data, err := exec.object(selectionSet.Selections, rootKey, []string{string(rootKey)})
	if err != nil {
		return nil, err
	}
	return &ExecutionResult{Data: data, DependentKeys: exec.dependentKeys}, nil
}

type executor struct {
	loader        recordLoader
	dependentKeys KeySet
}

func childPath(path []string, component string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = component
	return p
}

func (e *executor) object(selections []Selection, key Key, path []string) (DataDict, error) {
	e.dependentKeys.Add(key)

	records, err := e.loader.LoadRecords([]Key{key})
	if err != nil {
		return nil, errors.Wrapf(err, "loading record %q", key)
	}
	record, ok := records[key]
	if !ok {
		return nil, missAt(path)
	}

	data := make(DataDict, len(selections))
	for _, sel := range selections {
		fieldPath := childPath(path, sel.ResponseKey())
		value, ok := record[sel.StorageKey()]
		if !ok {
			return nil, missAt(fieldPath)
		}

		resolved, err := e.value(sel, value, fieldPath)
		if err != nil {
			return nil, err
		}
		data[sel.ResponseKey()] = resolved
	}
	return data, nil
}

func (e *executor) value(sel Selection, value interface{}, path []string) (interface{}, error) {
	switch v := value.(type) {
	case Reference:
		if sel.Selections == nil {
			// A reference behind a scalar selection is a shape mismatch;
			// surface it the same way a missing field would be.
			return nil, missAt(path)
		}
		return e.object(sel.Selections, v.Key, path)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := e.value(sel, item, childPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		if sel.Selections != nil && v != nil {
			return nil, missAt(path)
		}
		return v, nil
	}
}

package cache

import "github.com/pkg/errors"

// ErrReadOnlyTransaction is returned when a write reaches a read-only view.
var ErrReadOnlyTransaction = errors.New("cache: write inside read-only transaction")

// Transaction is the view handed to transaction bodies. Reads see committed
// records overlaid with the transaction's own staged writes; writes stage
// into the transaction and publish atomically on commit.
type Transaction struct {
	store    *Store
	staged   RecordSet
	writable bool
}

// LoadRecords reads records through the transaction's overlay.
func (tx *Transaction) LoadRecords(keys []Key) (RecordSet, error) {
	out, err := tx.store.cache.LoadRecords(keys)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		staged, ok := tx.staged[key]
		if !ok {
			continue
		}
		rec, ok := out[key]
		if !ok {
			rec = make(Record, len(staged))
			out[key] = rec
		}
		for field, value := range staged {
			rec[field] = value
		}
	}
	return out, nil
}

// Execute runs a selection set against the transaction's view.
func (tx *Transaction) Execute(selectionSet SelectionSet, rootKey Key) (*ExecutionResult, error) {
	return executeSelectionSet(tx, selectionSet, rootKey)
}

// Write stages whole records for the commit.
func (tx *Transaction) Write(records RecordSet) error {
	if !tx.writable {
		return ErrReadOnlyTransaction
	}
	tx.staged.Merge(records)
	return nil
}

// UpdateField stages a single field write on key.
func (tx *Transaction) UpdateField(key Key, field string, value interface{}) error {
	if !tx.writable {
		return ErrReadOnlyTransaction
	}
	rec, ok := tx.staged[key]
	if !ok {
		rec = make(Record)
		tx.staged[key] = rec
	}
	rec[field] = value
	return nil
}

// WriteData normalizes a denormalized payload rooted at rootKey and stages
// the resulting records. Local cache mutations commit through this path.
func (tx *Transaction) WriteData(rootKey Key, data DataDict) error {
	if !tx.writable {
		return ErrReadOnlyTransaction
	}
	records := Normalizer{}.Normalize(rootKey, data)
	tx.staged.Merge(records)
	return nil
}

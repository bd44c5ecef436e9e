package client

import (
	"context"
	"sync"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/google/uuid"
)

// QueryWatcher keeps one operation live against the store. After the
// initial fetch it subscribes to store changes; whenever a publish touches
// a key the last result depended on, it refetches and delivers a fresh
// result. Writes the watcher itself triggered are recognized by their
// context identifier and ignored.
type QueryWatcher struct {
	client    *Client
	operation Operation
	handler   ResultHandler

	// refetchPolicy is the cache policy used for store-triggered refetches.
	refetchPolicy CachePolicy

	mu            sync.Mutex
	cancelled     bool
	token         cache.SubscriptionToken
	dependentKeys cache.KeySet
	inFlight      Cancellable
	ownContexts   map[uuid.UUID]struct{}
}

var _ cache.Subscriber = (*QueryWatcher)(nil)
var _ Cancellable = (*QueryWatcher)(nil)

func newQueryWatcher(c *Client, operation Operation, handler ResultHandler) *QueryWatcher {
	w := &QueryWatcher{
		client:        c,
		operation:     operation,
		handler:       handler,
		refetchPolicy: ReturnCacheDataElseFetch,
		ownContexts:   make(map[uuid.UUID]struct{}),
	}
	w.token = c.store.Subscribe(w)
	return w
}

// SetRefetchPolicy changes the policy used for store-triggered refetches.
func (w *QueryWatcher) SetRefetchPolicy(policy CachePolicy) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refetchPolicy = policy
}

func (w *QueryWatcher) fetch(ctx context.Context, policy CachePolicy) {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return
	}
	contextID := uuid.New()
	w.ownContexts[contextID] = struct{}{}
	handler := w.handler
	w.mu.Unlock()

	cancellable := w.client.transport.Send(ctx, w.operation, policy, &contextID, func(result *Result, err error) {
		w.mu.Lock()
		if w.cancelled {
			w.mu.Unlock()
			return
		}
		if result != nil && result.DependentKeys != nil {
			w.dependentKeys = result.DependentKeys
		}
		w.mu.Unlock()

		handler(result, err)
	})

	w.mu.Lock()
	w.inFlight = cancellable
	w.mu.Unlock()
}

// StoreDidChange implements cache.Subscriber.
func (w *QueryWatcher) StoreDidChange(_ *cache.Store, changedKeys cache.KeySet, contextIdentifier *uuid.UUID) {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return
	}

	if contextIdentifier != nil {
		if _, mine := w.ownContexts[*contextIdentifier]; mine {
			delete(w.ownContexts, *contextIdentifier)
			w.mu.Unlock()
			return
		}
	}

	if w.dependentKeys == nil || !w.dependentKeys.Intersects(changedKeys) {
		w.mu.Unlock()
		return
	}
	policy := w.refetchPolicy
	w.mu.Unlock()

	w.fetch(context.Background(), policy)
}

// Cancel detaches the store subscription, cancels any in-flight chain, and
// releases the handler. Idempotent.
func (w *QueryWatcher) Cancel() {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return
	}
	w.cancelled = true
	inFlight := w.inFlight
	w.inFlight = nil
	w.handler = nil
	token := w.token
	w.mu.Unlock()

	w.client.store.Unsubscribe(token)
	if inFlight != nil {
		inFlight.Cancel()
	}
}

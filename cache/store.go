package cache

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subscriber receives change notifications after each publish. Notifications
// arrive on the store's dispatch goroutine, one at a time, in publish order.
type Subscriber interface {
	StoreDidChange(store *Store, changedKeys KeySet, contextIdentifier *uuid.UUID)
}

// SubscriptionToken identifies one subscription. Tokens are never reused.
type SubscriptionToken int64

type subscription struct {
	token      SubscriptionToken
	subscriber Subscriber
	released   atomic.Bool
}

type notification struct {
	changedKeys KeySet
	contextID   *uuid.UUID
	targets     []*subscription
}

// Store owns the normalized record cache and fans out change notifications.
// Publishes are serialized; subscribers observe them in total order.
type Store struct {
	cache NormalizedCache
	log   logrus.FieldLogger

	publishMu sync.Mutex

	subMu     sync.Mutex
	subs      []*subscription
	nextToken int64

	queue    chan notification
	shutdown chan struct{}
	done     chan struct{}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger overrides the store's logger.
func WithStoreLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore builds a store over the given cache backend. Passing nil uses a
// fresh in-memory cache.
func NewStore(cache NormalizedCache, opts ...StoreOption) *Store {
	if cache == nil {
		cache = NewInMemoryNormalizedCache()
	}
	s := &Store{
		cache:    cache,
		log:      logrus.StandardLogger(),
		queue:    make(chan notification, 256),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.dispatchLoop()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the dispatch goroutine after draining queued notifications.
func (s *Store) Close() {
	close(s.shutdown)
	<-s.done
}

func (s *Store) dispatchLoop() {
	defer close(s.done)
	for {
		select {
		case n := <-s.queue:
			s.deliver(n)
		case <-s.shutdown:
			for {
				select {
				case n := <-s.queue:
					s.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) deliver(n notification) {
	for _, sub := range n.targets {
		if sub.released.Load() {
			continue
		}
		sub.subscriber.StoreDidChange(s, n.changedKeys, n.contextID)
	}
}

// LoadRecords returns the records present for keys; missing keys are omitted.
func (s *Store) LoadRecords(keys []Key) (RecordSet, error) {
	return s.cache.LoadRecords(keys)
}

// Publish merges records into the store and notifies subscribers of every
// key whose content changed. The contextIdentifier is forwarded verbatim so
// writers can recognize their own publishes.
func (s *Store) Publish(records RecordSet, contextIdentifier *uuid.UUID) (KeySet, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	changed, err := s.cache.MergeRecords(records)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"records": len(records),
		"changed": len(changed),
	}).Debug("store: published records")

	if len(changed) > 0 {
		s.enqueue(changed, contextIdentifier)
	}
	return changed, nil
}

func (s *Store) enqueue(changed KeySet, contextID *uuid.UUID) {
	s.subMu.Lock()
	targets := make([]*subscription, 0, len(s.subs))
	compacted := s.subs[:0]
	for _, sub := range s.subs {
		if sub.released.Load() {
			continue
		}
		compacted = append(compacted, sub)
		targets = append(targets, sub)
	}
	s.subs = compacted
	s.subMu.Unlock()

	if len(targets) == 0 {
		return
	}
	s.queue <- notification{changedKeys: changed, contextID: contextID, targets: targets}
}

// Clear drops every record. Subscribers are not notified.
func (s *Store) Clear() error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.cache.Clear()
}

// Subscribe registers a subscriber and returns its token.
func (s *Store) Subscribe(sub Subscriber) SubscriptionToken {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextToken++
	entry := &subscription{
		token:      SubscriptionToken(s.nextToken),
		subscriber: sub,
	}
	s.subs = append(s.subs, entry)
	return entry.token
}

// Unsubscribe releases the subscription for token. Releasing an unknown
// token is a no-op. A released subscriber receives no further
// notifications, including ones already queued.
func (s *Store) Unsubscribe(token SubscriptionToken) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		if sub.token == token {
			sub.released.Store(true)
			return
		}
	}
}

// ReadTransaction runs body over a point-in-time view of the store. Reads
// inside the body observe no concurrent publishes.
func (s *Store) ReadTransaction(body func(*Transaction) error) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	tx := &Transaction{store: s, staged: make(RecordSet)}
	return body(tx)
}

// WithinReadWriteTransaction runs body with mutable access to records. All
// writes staged in the body publish atomically when the body returns nil.
func (s *Store) WithinReadWriteTransaction(body func(*Transaction) error, contextIdentifier *uuid.UUID) error {
	s.publishMu.Lock()

	tx := &Transaction{store: s, staged: make(RecordSet), writable: true}
	if err := body(tx); err != nil {
		s.publishMu.Unlock()
		return err
	}

	changed, err := s.cache.MergeRecords(tx.staged)
	if err != nil {
		s.publishMu.Unlock()
		return err
	}
	if len(changed) > 0 {
		s.enqueue(changed, contextIdentifier)
	}
	s.publishMu.Unlock()
	return nil
}

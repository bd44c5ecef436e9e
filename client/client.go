package client

import (
	"context"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client pairs a network transport with a normalized store. It is safe for
// concurrent use; every operation runs on its own request chain.
type Client struct {
	transport NetworkTransport
	store     *cache.Store
	log       logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithLogger overrides the client's logger.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) error {
		if log == nil {
			return errors.New("client: nil logger")
		}
		c.log = log
		return nil
	}
}

// NewClient wires a transport and a store together.
func NewClient(transport NetworkTransport, store *cache.Store, opts ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, errors.New("client: transport is required")
	}
	if store == nil {
		return nil, errors.New("client: store is required")
	}
	c := &Client{
		transport: transport,
		store:     store,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Store exposes the client's normalized store.
func (c *Client) Store() *cache.Store { return c.store }

// Fetch runs a query under cachePolicy.
func (c *Client) Fetch(ctx context.Context, operation Operation, cachePolicy CachePolicy, handler ResultHandler) Cancellable {
	return c.transport.Send(ctx, operation, cachePolicy, nil, handler)
}

// Perform runs a mutation. Mutations always hit the network.
func (c *Client) Perform(ctx context.Context, operation Operation, handler ResultHandler) Cancellable {
	return c.transport.Send(ctx, operation, FetchIgnoringCacheData, nil, handler)
}

// Subscribe opens a subscription. handler fires once per payload until the
// stream ends or the returned handle is cancelled.
func (c *Client) Subscribe(ctx context.Context, operation Operation, handler ResultHandler) Cancellable {
	return c.transport.Send(ctx, operation, FetchIgnoringCacheData, nil, handler)
}

// Upload runs an operation with attached files.
func (c *Client) Upload(ctx context.Context, operation Operation, files []UploadFile, handler ResultHandler) Cancellable {
	return c.transport.Upload(ctx, operation, files, handler)
}

// Watch fetches the operation and keeps watching the store: whenever a
// publish touches one of the result's dependent keys, the watcher refetches
// and delivers a fresh result through handler.
func (c *Client) Watch(ctx context.Context, operation Operation, cachePolicy CachePolicy, handler ResultHandler) *QueryWatcher {
	w := newQueryWatcher(c, operation, handler)
	w.fetch(ctx, cachePolicy)
	return w
}

// ClearCache drops every record from the store.
func (c *Client) ClearCache() error {
	return c.store.Clear()
}

// PublishRecords merges records into the store, tagging the publish with
// contextIdentifier.
func (c *Client) PublishRecords(records cache.RecordSet, contextIdentifier *uuid.UUID) (cache.KeySet, error) {
	return c.store.Publish(records, contextIdentifier)
}

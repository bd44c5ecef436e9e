// Package apollograph is a GraphQL client with a normalized cache, a query
// watcher layer, and an interceptor-based request pipeline.
package apollograph

import (
	"net/http"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
	"github.com/borderlesshq/apollograph/client/interceptors"
)

type ClientOption = client.ClientOption

// WithLogger overrides the client's logger.
var WithLogger = client.WithLogger

// Client is the operation-level API: Fetch, Perform, Subscribe, Upload,
// Watch.
type Client = client.Client

// Store owns the normalized record cache.
type Store = cache.Store

// NewStore builds a store over an in-memory normalized cache.
func NewStore() *Store {
	return cache.NewStore(cache.NewInMemoryNormalizedCache())
}

// Options configures NewClient.
type Options struct {
	HTTPClient         client.HTTPClient
	AdditionalHeaders  http.Header
	AutoPersistQueries bool
	ClientName         string
	ClientVersion      string
}

// NewClient wires the default interceptor pipeline against endpointURL and
// store. Pass a zero Options for the defaults.
func NewClient(endpointURL string, store *Store, options Options, opts ...ClientOption) (*Client, error) {
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	transport := &client.RequestChainNetworkTransport{
		Provider:           interceptors.NewDefaultInterceptorProvider(httpClient, store),
		EndpointURL:        endpointURL,
		AdditionalHeaders:  options.AdditionalHeaders,
		AutoPersistQueries: options.AutoPersistQueries,
		ClientName:         options.ClientName,
		ClientVersion:      options.ClientVersion,
	}
	return client.NewClient(transport, store, opts...)
}

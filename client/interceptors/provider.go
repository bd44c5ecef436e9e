// Package interceptors carries the standard request chain stages and the
// default provider that assembles them.
package interceptors

import (
	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
)

// DefaultMaxRetries is the retry cap the default provider configures.
const DefaultMaxRetries = 3

// DefaultInterceptorProvider assembles the standard pipeline. Interceptors
// are constructed fresh per operation; stateful stages (retry counters,
// in-flight handles) never leak across chains.
type DefaultInterceptorProvider struct {
	HTTPClient client.HTTPClient
	Store      *cache.Store
	MaxRetries int
}

var _ client.InterceptorProvider = (*DefaultInterceptorProvider)(nil)

// NewDefaultInterceptorProvider builds a provider over an HTTP client and a
// store with the default retry cap.
func NewDefaultInterceptorProvider(httpClient client.HTTPClient, store *cache.Store) *DefaultInterceptorProvider {
	return &DefaultInterceptorProvider{
		HTTPClient: httpClient,
		Store:      store,
		MaxRetries: DefaultMaxRetries,
	}
}

func (p *DefaultInterceptorProvider) Interceptors(operation client.Operation) []client.Interceptor {
	return []client.Interceptor{
		NewMaxRetryInterceptor(p.MaxRetries),
		NewCacheReadInterceptor(p.Store),
		NewNetworkFetchInterceptor(p.HTTPClient),
		NewResponseCodeInterceptor(),
		NewMultipartResponseParsingInterceptor(),
		NewJSONResponseParsingInterceptor(),
		NewAutomaticPersistedQueryInterceptor(),
		NewCacheWriteInterceptor(p.Store),
	}
}

func (p *DefaultInterceptorProvider) AdditionalErrorInterceptor(operation client.Operation) client.ErrorInterceptor {
	return nil
}

// InterceptorFactory builds interceptors for one operation.
type InterceptorFactory func(operation client.Operation) []client.Interceptor

// DecoratedInterceptorProvider layers custom interceptors around a base
// provider's list without subclassing it.
type DecoratedInterceptorProvider struct {
	Base    client.InterceptorProvider
	Prepend InterceptorFactory
	Append  InterceptorFactory

	// ErrorInterceptorFactory overrides the base error interceptor when
	// non-nil.
	ErrorInterceptorFactory func(operation client.Operation) client.ErrorInterceptor
}

var _ client.InterceptorProvider = (*DecoratedInterceptorProvider)(nil)

func (p *DecoratedInterceptorProvider) Interceptors(operation client.Operation) []client.Interceptor {
	var out []client.Interceptor
	if p.Prepend != nil {
		out = append(out, p.Prepend(operation)...)
	}
	if p.Base != nil {
		out = append(out, p.Base.Interceptors(operation)...)
	}
	if p.Append != nil {
		out = append(out, p.Append(operation)...)
	}
	return out
}

func (p *DecoratedInterceptorProvider) AdditionalErrorInterceptor(operation client.Operation) client.ErrorInterceptor {
	if p.ErrorInterceptorFactory != nil {
		return p.ErrorInterceptorFactory(operation)
	}
	if p.Base != nil {
		return p.Base.AdditionalErrorInterceptor(operation)
	}
	return nil
}

package interceptors

import (
	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
)

// CacheWriteInterceptor normalizes server results into records and
// publishes them, tagged with the request's context identifier so watchers
// can tell their own writes apart.
type CacheWriteInterceptor struct {
	store *cache.Store
}

var _ client.Interceptor = (*CacheWriteInterceptor)(nil)

func NewCacheWriteInterceptor(store *cache.Store) *CacheWriteInterceptor {
	return &CacheWriteInterceptor{store: store}
}

func (i *CacheWriteInterceptor) ID() string { return "CacheWrite" }

func (i *CacheWriteInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	if response == nil || response.ParsedResult == nil {
		chain.HandleError(client.ErrNoParsedResponse, request, response)
		return
	}

	result := response.ParsedResult
	if result.Source == client.SourceServer && result.Data != nil && request.CachePolicy.WritesToCache() {
		rootKey := client.RootCacheKey(request.Operation)
		records := cache.Normalizer{}.Normalize(rootKey, result.Data)

		if _, err := i.store.Publish(records, request.ContextIdentifier); err != nil {
			chain.HandleError(err, request, response)
			return
		}

		dependent := cache.NewKeySet(records.Keys()...)
		result.DependentKeys = dependent
	}

	chain.Proceed(request, response, i)
}

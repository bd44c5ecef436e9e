package interceptors

import (
	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
)

// CacheReadInterceptor answers cache-consulting policies from the store
// before any network work happens.
type CacheReadInterceptor struct {
	store *cache.Store
}

var _ client.Interceptor = (*CacheReadInterceptor)(nil)

func NewCacheReadInterceptor(store *cache.Store) *CacheReadInterceptor {
	return &CacheReadInterceptor{store: store}
}

func (i *CacheReadInterceptor) ID() string { return "CacheRead" }

func (i *CacheReadInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	// A non-nil response means the network has already answered; the cache
	// already had its chance. A retry re-enters with a nil response and reads
	// the cache again.
	if response != nil || !request.CachePolicy.ReadsFromCache() {
		chain.Proceed(request, response, i)
		return
	}

	operation := request.Operation
	execution, err := i.store.ExecuteSelectionSet(operation.RootSelectionSet(), client.RootCacheKey(operation))
	if err != nil {
		if request.CachePolicy == client.ReturnCacheDataDontFetch {
			chain.HandleError(err, request, response)
			return
		}
		chain.Proceed(request, response, i)
		return
	}

	result := &client.Result{
		Data:          execution.Data,
		Source:        client.SourceCache,
		DependentKeys: execution.DependentKeys,
	}

	if request.CachePolicy == client.ReturnCacheDataAndFetch {
		chain.ReturnEarlyResult(result)
		chain.Proceed(request, response, i)
		return
	}
	chain.ReturnResult(request, response, result)
}

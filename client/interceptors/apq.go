package interceptors

import (
	"github.com/borderlesshq/apollograph/client"
)

const persistedQueryNotFoundCode = "PERSISTED_QUERY_NOT_FOUND"
const persistedQueryNotFoundMessage = "PersistedQueryNotFound"

// AutomaticPersistedQueryInterceptor inspects parsed results for the
// server's persisted-query-not-found signal and restarts the chain with
// the full document. It sits after the parsing interceptors.
type AutomaticPersistedQueryInterceptor struct{}

var _ client.Interceptor = (*AutomaticPersistedQueryInterceptor)(nil)

func NewAutomaticPersistedQueryInterceptor() *AutomaticPersistedQueryInterceptor {
	return &AutomaticPersistedQueryInterceptor{}
}

func (i *AutomaticPersistedQueryInterceptor) ID() string { return "AutomaticPersistedQuery" }

func (i *AutomaticPersistedQueryInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	if !request.AutoPersistQueries {
		chain.Proceed(request, response, i)
		return
	}

	if response == nil || response.ParsedResult == nil {
		chain.HandleError(client.ErrNoParsedResponse, request, response)
		return
	}

	if !persistedQueryNotFound(response.ParsedResult) {
		chain.Proceed(request, response, i)
		return
	}

	if request.IsPersistedQueryRetry {
		// The server rejected the hash even alongside the full document;
		// nothing left to retry with.
		chain.HandleError(client.ErrPersistedQueryNotFound, request, response)
		return
	}

	request.IsPersistedQueryRetry = true
	chain.Retry(request)
}

func persistedQueryNotFound(result *client.Result) bool {
	for _, gqlErr := range result.Errors {
		if gqlErr == nil {
			continue
		}
		if gqlErr.Message == persistedQueryNotFoundMessage {
			return true
		}
		if code, ok := gqlErr.Extensions["code"]; ok && code == persistedQueryNotFoundCode {
			return true
		}
	}
	return false
}

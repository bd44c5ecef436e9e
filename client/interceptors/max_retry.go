package interceptors

import (
	"sync"
	"time"

	"github.com/borderlesshq/apollograph/client"
	"github.com/cenkalti/backoff/v5"
)

// MaxRetryInterceptor caps how many times a chain may restart. It counts
// its own entries: the initial pass plus up to maxRetries retry passes go
// through, the one after that fails with TooManyRetriesError. An optional
// backoff paces the retry passes.
type MaxRetryInterceptor struct {
	maxRetries int
	pacing     backoff.BackOff

	mu       sync.Mutex
	hitCount int
}

var _ client.Interceptor = (*MaxRetryInterceptor)(nil)

func NewMaxRetryInterceptor(maxRetries int) *MaxRetryInterceptor {
	return &MaxRetryInterceptor{maxRetries: maxRetries}
}

// WithPacing enables a delay before each retry pass. An exponential backoff
// from backoff.NewExponentialBackOff is the intended value.
func (i *MaxRetryInterceptor) WithPacing(b backoff.BackOff) *MaxRetryInterceptor {
	i.pacing = b
	return i
}

func (i *MaxRetryInterceptor) ID() string { return "MaxRetry" }

func (i *MaxRetryInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	i.mu.Lock()
	if i.hitCount > i.maxRetries {
		i.mu.Unlock()
		chain.HandleError(&client.TooManyRetriesError{Max: i.maxRetries}, request, response)
		return
	}
	i.hitCount++
	retryPass := i.hitCount > 1
	pacing := i.pacing
	i.mu.Unlock()

	if retryPass && pacing != nil {
		if delay := pacing.NextBackOff(); delay > 0 && delay != backoff.Stop {
			time.Sleep(delay)
		}
	}

	chain.Proceed(request, response, i)
}

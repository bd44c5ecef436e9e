package interceptors

import (
	"testing"
	"time"

	"github.com/borderlesshq/apollograph/client"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxRetryCapsRetries(t *testing.T) {
	alwaysRetry := interceptorStub{fn: func(chain *client.RequestChain, request *client.Request, response *client.Response) {
		chain.Retry(request)
	}}

	chain := client.NewRequestChain([]client.Interceptor{
		NewMaxRetryInterceptor(3),
		alwaysRetry,
	}, nil)

	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		gotErr = err
	})

	var tooMany *client.TooManyRetriesError
	require.ErrorAs(t, gotErr, &tooMany)
	assert.Equal(t, 3, tooMany.Max)
	assert.Equal(t, 4, chain.RetryCount(), "initial pass plus three retries, failing on the fourth")
}

func TestMaxRetryAllowsPassesUnderThreshold(t *testing.T) {
	passes := 0
	retryTwice := interceptorStub{fn: func(chain *client.RequestChain, request *client.Request, response *client.Response) {
		passes++
		if passes < 3 {
			chain.Retry(request)
			return
		}
		chain.ReturnResult(request, response, &client.Result{Source: client.SourceServer})
	}}

	chain := client.NewRequestChain([]client.Interceptor{
		NewMaxRetryInterceptor(3),
		retryTwice,
	}, nil)

	var gotResult *client.Result
	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		gotResult, gotErr = result, err
	})

	require.NoError(t, gotErr)
	assert.NotNil(t, gotResult)
	assert.Equal(t, 3, passes)
}

func TestMaxRetryPacingDelaysRetryPasses(t *testing.T) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.RandomizationFactor = 0

	passes := 0
	retryOnce := interceptorStub{fn: func(chain *client.RequestChain, request *client.Request, response *client.Response) {
		passes++
		if passes == 1 {
			chain.Retry(request)
			return
		}
		chain.ReturnResult(request, response, &client.Result{Source: client.SourceServer})
	}}

	chain := client.NewRequestChain([]client.Interceptor{
		NewMaxRetryInterceptor(2).WithPacing(bo),
		retryOnce,
	}, nil)

	start := time.Now()
	done := false
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		done = true
	})

	assert.True(t, done)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

package interceptors

import (
	"testing"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// apqServerStub stands in for the fetch+parse stages: it answers the first
// pass with the persisted-query miss and later passes with data, recording
// the body of every pass.
type apqServerStub struct {
	passes int
	bodies []client.OperationRequest
}

func (i *apqServerStub) ID() string { return "apqServerStub" }

func (i *apqServerStub) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	i.passes++
	i.bodies = append(i.bodies, request.Body())

	result := &client.Result{Source: client.SourceServer}
	if i.passes == 1 {
		result.Errors = gqlerror.List{{
			Message:    "PersistedQueryNotFound",
			Extensions: map[string]interface{}{"code": "PERSISTED_QUERY_NOT_FOUND"},
		}}
	} else {
		result.Data = cache.DataDict{"hero": "R2-D2"}
	}
	chain.Proceed(request, &client.Response{StatusCode: 200, ParsedResult: result}, i)
}

func TestAPQRetriesWithFullDocument(t *testing.T) {
	stub := &apqServerStub{}
	chain := client.NewRequestChain([]client.Interceptor{
		stub,
		NewAutomaticPersistedQueryInterceptor(),
	}, nil)

	request := &client.Request{
		Operation:          mockQuery(),
		AutoPersistQueries: true,
	}

	var gotResult *client.Result
	var gotErr error
	chain.Kickoff(request, func(result *client.Result, err error) {
		gotResult, gotErr = result, err
	})

	require.NoError(t, gotErr)
	require.NotNil(t, gotResult)
	assert.Equal(t, "R2-D2", gotResult.Data["hero"])

	require.Len(t, stub.bodies, 2)
	// First pass ships the hash only.
	assert.Empty(t, stub.bodies[0].Query)
	require.Contains(t, stub.bodies[0].Extensions, "persistedQuery")
	// The retry pass restores the document alongside the hash.
	assert.Equal(t, mockQuery().Document(), stub.bodies[1].Query)
	require.Contains(t, stub.bodies[1].Extensions, "persistedQuery")

	assert.Equal(t, 1, chain.RetryCount())
}

func TestAPQGivesUpAfterRetryPass(t *testing.T) {
	// A server that never recognizes the query, even with the document.
	alwaysMissing := interceptorStub{fn: func(chain *client.RequestChain, request *client.Request, response *client.Response) {
		chain.Proceed(request, &client.Response{
			StatusCode: 200,
			ParsedResult: &client.Result{
				Source: client.SourceServer,
				Errors: gqlerror.List{{Message: "PersistedQueryNotFound"}},
			},
		}, nil)
	}}

	chain := client.NewRequestChain([]client.Interceptor{
		alwaysMissing,
		NewAutomaticPersistedQueryInterceptor(),
	}, nil)

	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery(), AutoPersistQueries: true}, func(result *client.Result, err error) {
		gotErr = err
	})
	assert.ErrorIs(t, gotErr, client.ErrPersistedQueryNotFound)
}

func TestAPQPassesThroughWhenDisabled(t *testing.T) {
	stub := &apqServerStub{}
	chain := client.NewRequestChain([]client.Interceptor{
		stub,
		NewAutomaticPersistedQueryInterceptor(),
	}, nil)

	var gotResult *client.Result
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		gotResult = result
	})

	// Without APQ the first pass's errors deliver as-is; no retry happens.
	require.NotNil(t, gotResult)
	require.Len(t, gotResult.Errors, 1)
	assert.Equal(t, 1, stub.passes)
	assert.Equal(t, mockQuery().Document(), stub.bodies[0].Query)
}

func TestAPQWithoutParsedResponseFails(t *testing.T) {
	noResponse := interceptorStub{fn: func(chain *client.RequestChain, request *client.Request, response *client.Response) {
		chain.Proceed(request, nil, nil)
	}}

	chain := client.NewRequestChain([]client.Interceptor{
		noResponse,
		NewAutomaticPersistedQueryInterceptor(),
	}, nil)

	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery(), AutoPersistQueries: true}, func(result *client.Result, err error) {
		gotErr = err
	})
	assert.ErrorIs(t, gotErr, client.ErrNoParsedResponse)
}

type interceptorStub struct {
	fn func(chain *client.RequestChain, request *client.Request, response *client.Response)
}

func (i interceptorStub) ID() string { return "stub" }
func (i interceptorStub) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	i.fn(chain, request, response)
}

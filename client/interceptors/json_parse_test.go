package interceptors

import (
	"testing"

	"github.com/borderlesshq/apollograph/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runParseChain(t *testing.T, response *client.Response) (*client.Result, error) {
	t.Helper()
	chain := client.NewRequestChain([]client.Interceptor{
		&seedResponse{response: response},
		NewJSONResponseParsingInterceptor(),
	}, nil)

	var gotResult *client.Result
	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		gotResult, gotErr = result, err
	})
	return gotResult, gotErr
}

func TestParseEnvelopeWithData(t *testing.T) {
	result, err := runParseChain(t, &client.Response{
		StatusCode: 200,
		RawBody:    []byte(`{"data":{"hero":{"name":"R2-D2"}},"extensions":{"traceId":"abc"}}`),
	})
	require.NoError(t, err)

	assert.Equal(t, client.SourceServer, result.Source)
	hero := result.Data["hero"].(map[string]interface{})
	assert.Equal(t, "R2-D2", hero["name"])
	assert.Equal(t, "abc", result.Extensions["traceId"])
}

func TestGraphQLErrorsWithoutDataAreStillASuccess(t *testing.T) {
	result, err := runParseChain(t, &client.Response{
		StatusCode: 200,
		RawBody:    []byte(`{"errors":[{"message":"Bad request, could not start execution!"}]}`),
	})
	require.NoError(t, err)

	assert.Nil(t, result.Data)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Bad request, could not start execution!", result.Errors[0].Message)
}

func TestEmptyBodyIsNoParsedResponse(t *testing.T) {
	_, err := runParseChain(t, &client.Response{StatusCode: 200})
	assert.ErrorIs(t, err, client.ErrNoParsedResponse)
}

func TestMalformedBodyFailsChain(t *testing.T) {
	_, err := runParseChain(t, &client.Response{
		StatusCode: 200,
		RawBody:    []byte("<html>not graphql</html>"),
	})
	assert.Error(t, err)
}

func TestUnknownContentTypeStillParses(t *testing.T) {
	result, err := runParseChain(t, &client.Response{
		StatusCode: 200,
		RawBody:    []byte(`{"data":{"hero":{"name":"R2-D2"}}}`),
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Data)
}

func TestResponseCodeInterceptorRejectsNon2xx(t *testing.T) {
	chain := client.NewRequestChain([]client.Interceptor{
		&seedResponse{response: &client.Response{StatusCode: 500, RawBody: []byte("boom")}},
		NewResponseCodeInterceptor(),
		NewJSONResponseParsingInterceptor(),
	}, nil)

	var gotErr error
	chain.Kickoff(&client.Request{Operation: mockQuery()}, func(result *client.Result, err error) {
		gotErr = err
	})

	var invalid *client.InvalidResponseCodeError
	require.ErrorAs(t, gotErr, &invalid)
	assert.Equal(t, 500, invalid.StatusCode)
	assert.Equal(t, []byte("boom"), invalid.Body)
}

package interceptors

import (
	"encoding/json"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/borderlesshq/apollograph/client"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// responseEnvelope is the GraphQL over-HTTP response shape.
type responseEnvelope struct {
	Data       map[string]interface{} `json:"data,omitempty"`
	Errors     gqlerror.List          `json:"errors,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// JSONResponseParsingInterceptor decodes the raw body into a server-sourced
// result. A response that carries only errors still parses as a success;
// whether to elevate GraphQL errors is the error interceptor's call.
//
// Bodies with unexpected Content-Type are decoded all the same; the server
// is trusted over its header here.
type JSONResponseParsingInterceptor struct{}

var _ client.Interceptor = (*JSONResponseParsingInterceptor)(nil)

func NewJSONResponseParsingInterceptor() *JSONResponseParsingInterceptor {
	return &JSONResponseParsingInterceptor{}
}

func (i *JSONResponseParsingInterceptor) ID() string { return "JSONResponseParsing" }

func (i *JSONResponseParsingInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	if response == nil || len(response.RawBody) == 0 {
		chain.HandleError(client.ErrNoParsedResponse, request, response)
		return
	}
	if response.ParsedResult != nil {
		chain.Proceed(request, response, i)
		return
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(response.RawBody, &envelope); err != nil {
		chain.HandleError(errors.Wrap(err, "decoding response body"), request, response)
		return
	}

	response.ParsedResult = &client.Result{
		Data:       cache.DataDict(envelope.Data),
		Errors:     envelope.Errors,
		Extensions: envelope.Extensions,
		Source:     client.SourceServer,
	}
	chain.Proceed(request, response, i)
}

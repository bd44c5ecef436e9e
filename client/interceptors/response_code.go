package interceptors

import (
	"github.com/borderlesshq/apollograph/client"
)

// ResponseCodeInterceptor fails the chain on non-2xx HTTP statuses, carrying
// the raw body for diagnostics.
type ResponseCodeInterceptor struct{}

var _ client.Interceptor = (*ResponseCodeInterceptor)(nil)

func NewResponseCodeInterceptor() *ResponseCodeInterceptor {
	return &ResponseCodeInterceptor{}
}

func (i *ResponseCodeInterceptor) ID() string { return "ResponseCode" }

func (i *ResponseCodeInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	if response != nil && (response.StatusCode < 200 || response.StatusCode > 299) {
		chain.HandleError(&client.InvalidResponseCodeError{
			StatusCode: response.StatusCode,
			Body:       response.RawBody,
		}, request, response)
		return
	}
	chain.Proceed(request, response, i)
}

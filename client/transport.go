package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HTTPClient is the URL session abstraction the network interceptor issues
// requests through. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NetworkTransport sends operations and returns a handle the caller can
// cancel.
type NetworkTransport interface {
	Send(ctx context.Context, operation Operation, cachePolicy CachePolicy, contextIdentifier *uuid.UUID, handler ResultHandler) Cancellable

	Upload(ctx context.Context, operation Operation, files []UploadFile, handler ResultHandler) Cancellable
}

// InterceptorProvider assembles the interceptor pipeline for an operation.
// Providers compose: wrap one to layer extra interceptors on top of the
// default list.
type InterceptorProvider interface {
	Interceptors(operation Operation) []Interceptor

	// AdditionalErrorInterceptor may return nil.
	AdditionalErrorInterceptor(operation Operation) ErrorInterceptor
}

// RequestChainNetworkTransport runs every operation through a fresh request
// chain built from its provider.
type RequestChainNetworkTransport struct {
	Provider          InterceptorProvider
	EndpointURL       string
	AdditionalHeaders http.Header
	AutoPersistQueries bool
	ClientName        string
	ClientVersion     string

	Logger logrus.FieldLogger
}

var _ NetworkTransport = (*RequestChainNetworkTransport)(nil)

func (t *RequestChainNetworkTransport) Send(ctx context.Context, operation Operation, cachePolicy CachePolicy, contextIdentifier *uuid.UUID, handler ResultHandler) Cancellable {
	request := t.newRequest(ctx, operation, cachePolicy, contextIdentifier)
	return t.kickoff(operation, request, handler)
}

func (t *RequestChainNetworkTransport) Upload(ctx context.Context, operation Operation, files []UploadFile, handler ResultHandler) Cancellable {
	request := t.newRequest(ctx, operation, FetchIgnoringCacheData, nil)
	request.UploadFiles = files
	return t.kickoff(operation, request, handler)
}

func (t *RequestChainNetworkTransport) newRequest(ctx context.Context, operation Operation, cachePolicy CachePolicy, contextIdentifier *uuid.UUID) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Request{
		Context:            ctx,
		Operation:          operation,
		EndpointURL:        t.EndpointURL,
		AdditionalHeaders:  cloneHeader(t.AdditionalHeaders),
		CachePolicy:        cachePolicy,
		ClientName:         t.ClientName,
		ClientVersion:      t.ClientVersion,
		ContextIdentifier:  contextIdentifier,
		AutoPersistQueries: t.AutoPersistQueries && operation.Kind() != Subscription,
	}
}

func (t *RequestChainNetworkTransport) kickoff(operation Operation, request *Request, handler ResultHandler) Cancellable {
	chain := NewRequestChain(t.Provider.Interceptors(operation), t.Provider.AdditionalErrorInterceptor(operation))
	if t.Logger != nil {
		chain.SetLogger(t.Logger)
	}
	chain.Kickoff(request, handler)
	return chain
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

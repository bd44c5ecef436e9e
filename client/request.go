package client

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/borderlesshq/apollograph/cache"
	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// CachePolicy selects how an operation interacts with the normalized cache.
type CachePolicy int

const (
	// ReturnCacheDataElseFetch answers from the cache when possible and
	// falls through to the network on a miss. The default.
	ReturnCacheDataElseFetch CachePolicy = iota
	// ReturnCacheDataDontFetch answers from the cache only; a miss fails.
	ReturnCacheDataDontFetch
	// ReturnCacheDataAndFetch answers from the cache, then also fetches a
	// fresh copy from the network.
	ReturnCacheDataAndFetch
	// FetchIgnoringCacheData always fetches, but still writes the result
	// back to the cache.
	FetchIgnoringCacheData
	// FetchIgnoringCacheCompletely always fetches and never touches the
	// cache in either direction.
	FetchIgnoringCacheCompletely
)

func (p CachePolicy) String() string {
	switch p {
	case ReturnCacheDataElseFetch:
		return "returnCacheDataElseFetch"
	case ReturnCacheDataDontFetch:
		return "returnCacheDataDontFetch"
	case ReturnCacheDataAndFetch:
		return "returnCacheDataAndFetch"
	case FetchIgnoringCacheData:
		return "fetchIgnoringCacheData"
	case FetchIgnoringCacheCompletely:
		return "fetchIgnoringCacheCompletely"
	default:
		return fmt.Sprintf("CachePolicy(%d)", int(p))
	}
}

// ReadsFromCache reports whether the policy consults the cache before the
// network.
func (p CachePolicy) ReadsFromCache() bool {
	switch p {
	case ReturnCacheDataElseFetch, ReturnCacheDataDontFetch, ReturnCacheDataAndFetch:
		return true
	default:
		return false
	}
}

// WritesToCache reports whether a server result is published back.
func (p CachePolicy) WritesToCache() bool {
	return p != FetchIgnoringCacheCompletely
}

// UploadFile describes one file attached to an upload operation.
type UploadFile struct {
	FieldName    string
	OriginalName string
	Path         string
}

// Request carries one operation through the interceptor chain. Interceptors
// may mutate it before forwarding.
type Request struct {
	Context           context.Context
	Operation         Operation
	EndpointURL       string
	AdditionalHeaders http.Header
	CachePolicy       CachePolicy
	ClientName        string
	ClientVersion     string

	// ContextIdentifier tags cache writes triggered by this request so
	// watchers can recognize their own publishes.
	ContextIdentifier *uuid.UUID

	// AutoPersistQueries sends the document hash first; the full document
	// goes out only on the retry pass.
	AutoPersistQueries    bool
	IsPersistedQueryRetry bool

	UploadFiles []UploadFile
}

const persistedQueryKey = "persistedQuery"

// OperationRequest is the wire body of a GraphQL HTTP request.
type OperationRequest struct {
	Query         string                 `json:"query,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Body produces the operation envelope for the current pass. Under APQ the
// first attempt carries the sha256 hash only; the retry pass restores the
// full document alongside the hash.
func (r *Request) Body() OperationRequest {
	op := OperationRequest{
		Query:         r.Operation.Document(),
		OperationName: r.Operation.Name(),
		Variables:     r.Operation.Variables(),
	}

	if r.AutoPersistQueries {
		sum := sha256.Sum256([]byte(r.Operation.Document()))
		op.Extensions = map[string]interface{}{
			persistedQueryKey: map[string]interface{}{
				"version":    1,
				"sha256Hash": fmt.Sprintf("%x", sum),
			},
		}
		if !r.IsPersistedQueryRetry {
			op.Query = ""
		}
	}
	return op
}

// MarshalBody renders the envelope as JSON.
func (r *Request) MarshalBody() ([]byte, error) {
	return json.Marshal(r.Body())
}

// Response is the evolving HTTP response an interceptor chain works over.
type Response struct {
	StatusCode int
	Header     http.Header
	RawBody    []byte

	// ParsedResult is populated by the parsing interceptors.
	ParsedResult *Result

	// IsChunk marks one payload of a multipart stream. Chunk deliveries do
	// not terminate the chain.
	IsChunk bool
}

// Source names where a result came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceServer Source = "server"
)

// Result is the caller-facing outcome of one operation pass.
type Result struct {
	Data       cache.DataDict
	Errors     gqlerror.List
	Extensions map[string]interface{}
	Source     Source

	// DependentKeys is the set of cache keys this result depends on. Set
	// for cache reads and after cache writes; watchers key off it.
	DependentKeys cache.KeySet
}

// ResultHandler receives results. For queries and mutations it fires once;
// for subscriptions and deferred queries it fires once per payload.
type ResultHandler func(result *Result, err error)

// Cancellable is the caller's handle on in-flight work.
type Cancellable interface {
	Cancel()
}

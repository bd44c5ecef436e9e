package client

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoInterceptors is returned when a chain is kicked off with an
	// empty interceptor list.
	ErrNoInterceptors = errors.New("chain: no interceptors configured")

	// ErrNoParsedResponse is returned when the chain (or an interceptor
	// that requires one) reaches a point where a parsed response should
	// exist and none does.
	ErrNoParsedResponse = errors.New("chain: no parsed response at end of chain")

	// ErrPersistedQueryNotFound signals the server does not know the
	// document hash; the APQ interceptor retries with the full document, and
	// this reaches the caller only when that retry is rejected as well.
	ErrPersistedQueryNotFound = errors.New("apq: persisted query not found")
)

// InvalidResponseCodeError reports a non-2xx HTTP status.
type InvalidResponseCodeError struct {
	StatusCode int
	Body       []byte
}

func (e *InvalidResponseCodeError) Error() string {
	return fmt.Sprintf("received invalid response code %d", e.StatusCode)
}

// TooManyRetriesError reports a chain that exceeded its retry cap.
type TooManyRetriesError struct {
	Max int
}

func (e *TooManyRetriesError) Error() string {
	return fmt.Sprintf("request exceeded maximum of %d retries", e.Max)
}

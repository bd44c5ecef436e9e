package client

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type chainState int

const (
	stateNotStarted chainState = iota
	stateInProgress
	stateCompleted
	stateCancelled
)

// RequestChain drives one operation through an ordered interceptor list.
// Transitions are serialized per chain; separate chains run independently.
// The chain holds the only strong references to its interceptors and its
// completion handler, and drops both at terminal states so the object graph
// collapses once the caller releases its handle.
type RequestChain struct {
	mu               sync.Mutex
	state            chainState
	interceptors     []Interceptor
	errorInterceptor ErrorInterceptor
	currentIndex     int
	retryCount       int
	completion       ResultHandler
	log              logrus.FieldLogger
}

var _ Cancellable = (*RequestChain)(nil)

// NewRequestChain builds a chain over interceptors. errorInterceptor may be
// nil, in which case errors deliver directly to the completion handler.
func NewRequestChain(interceptors []Interceptor, errorInterceptor ErrorInterceptor) *RequestChain {
	return &RequestChain{
		interceptors:     interceptors,
		errorInterceptor: errorInterceptor,
		log:              logrus.StandardLogger(),
	}
}

// SetLogger overrides the chain's logger. Call before Kickoff.
func (c *RequestChain) SetLogger(log logrus.FieldLogger) { c.log = log }

// Kickoff starts the chain. completion receives the terminal result; for
// multipart streams it receives one call per payload.
func (c *RequestChain) Kickoff(request *Request, completion ResultHandler) {
	c.mu.Lock()
	if c.state != stateNotStarted {
		c.mu.Unlock()
		return
	}
	c.state = stateInProgress
	c.completion = completion

	if len(c.interceptors) == 0 {
		c.mu.Unlock()
		c.deliver(nil, ErrNoInterceptors, true)
		return
	}

	c.currentIndex = 0
	first := c.interceptors[0]
	c.mu.Unlock()

	c.log.WithField("operation", request.Operation.Name()).Debug("chain: kickoff")
	first.Intercept(c, request, nil)
}

// Proceed advances to the next interceptor. from identifies the caller so
// the cursor lands exactly one past it; passing nil falls back to the
// position recorded when the current interceptor was entered.
func (c *RequestChain) Proceed(request *Request, response *Response, from Interceptor) {
	c.mu.Lock()
	if c.state != stateInProgress {
		c.mu.Unlock()
		return
	}

	next := c.currentIndex + 1
	if from != nil {
		if idx := c.indexOfLocked(from); idx >= 0 {
			next = idx + 1
		}
	}

	if next >= len(c.interceptors) {
		c.mu.Unlock()
		c.finish(request, response)
		return
	}

	c.currentIndex = next
	ic := c.interceptors[next]
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"interceptor": ic.ID(),
		"index":       next,
	}).Debug("chain: proceed")
	ic.Intercept(c, request, response)
}

func (c *RequestChain) indexOfLocked(target Interceptor) int {
	for i, ic := range c.interceptors {
		if ic == target {
			return i
		}
	}
	return -1
}

// finish is the end-of-chain delivery: hand the caller the parsed result
// carried by the final response.
func (c *RequestChain) finish(request *Request, response *Response) {
	if response == nil || response.ParsedResult == nil {
		c.HandleError(ErrNoParsedResponse, request, response)
		return
	}
	c.deliver(response.ParsedResult, nil, !response.IsChunk && request.Operation.Kind() != Subscription)
}

// ReturnResult short-circuits the chain with a success. The delivery is
// terminal unless the response is a stream chunk.
func (c *RequestChain) ReturnResult(request *Request, response *Response, result *Result) {
	terminal := true
	if response != nil && response.IsChunk {
		terminal = false
	}
	if request != nil && request.Operation.Kind() == Subscription {
		terminal = false
	}
	c.deliver(result, nil, terminal)
}

// ReturnEarlyResult delivers a non-terminal success and keeps the chain
// open. Used by the cache-read interceptor under returnCacheDataAndFetch,
// where a network pass still follows.
func (c *RequestChain) ReturnEarlyResult(result *Result) {
	c.deliver(result, nil, false)
}

// Retry resets the cursor to the head and re-enters the first interceptor
// with the same chain instance.
func (c *RequestChain) Retry(request *Request) {
	c.mu.Lock()
	if c.state != stateInProgress || len(c.interceptors) == 0 {
		c.mu.Unlock()
		return
	}
	c.retryCount++
	c.currentIndex = 0
	first := c.interceptors[0]
	count := c.retryCount
	c.mu.Unlock()

	c.log.WithField("retry", count).Debug("chain: retrying from head")
	first.Intercept(c, request, nil)
}

// RetryCount reports how many times the chain has been restarted.
func (c *RequestChain) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

// HandleError routes err through the additional error interceptor when one
// is attached; otherwise it fails the chain.
func (c *RequestChain) HandleError(err error, request *Request, response *Response) {
	c.mu.Lock()
	if c.state != stateInProgress {
		c.mu.Unlock()
		return
	}
	errInterceptor := c.errorInterceptor
	c.mu.Unlock()

	if errInterceptor != nil {
		errInterceptor.HandleError(c, err, request, response)
		return
	}
	c.Fail(err)
}

// Fail terminally delivers err to the caller, bypassing the error
// interceptor.
func (c *RequestChain) Fail(err error) {
	c.deliver(nil, err, true)
}

// Cancel marks the chain cancelled, notifies cancelable interceptors in
// reverse order, and suppresses every subsequent delivery. Safe to call
// from inside an interceptor.
func (c *RequestChain) Cancel() {
	c.mu.Lock()
	if c.state == stateCancelled || c.state == stateCompleted {
		c.mu.Unlock()
		return
	}
	c.state = stateCancelled
	interceptors := c.interceptors
	c.interceptors = nil
	c.completion = nil
	c.errorInterceptor = nil
	c.mu.Unlock()

	for i := len(interceptors) - 1; i >= 0; i-- {
		if cancelable, ok := interceptors[i].(CancelableInterceptor); ok {
			cancelable.OnCancel()
		}
	}
}

// IsCancelled reports whether Cancel has run.
func (c *RequestChain) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateCancelled
}

// deliver hands a result or error to the completion handler. Terminal
// deliveries transition the chain to completed and release its references;
// repeated terminal deliveries are dropped.
func (c *RequestChain) deliver(result *Result, err error, terminal bool) {
	c.mu.Lock()
	if c.state != stateInProgress {
		c.mu.Unlock()
		return
	}
	completion := c.completion
	if terminal {
		c.state = stateCompleted
		c.completion = nil
		c.interceptors = nil
		c.errorInterceptor = nil
	}
	c.mu.Unlock()

	if completion != nil {
		completion(result, err)
	}
}

// isReleased reports whether the chain has dropped its interceptors and
// completion handler. Tests assert the memory discipline through it.
func (c *RequestChain) isReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interceptors == nil && c.completion == nil
}

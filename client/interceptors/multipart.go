package interceptors

import (
	"encoding/json"
	"mime"
	"strings"

	"github.com/borderlesshq/apollograph/client"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// MultipartResponseParsingInterceptor splits multipart/mixed stream bodies
// into payload chunks and forwards each chunk down the chain, so downstream
// interceptors deliver multiple results per request. Responses that are not
// multipart pass through untouched.
//
// The splitter is deliberately not mime/multipart: GraphQL over-HTTP
// streams arrive with bare-LF delimiters and heartbeat parts that the RFC
// reader rejects, so the body is CRLF-normalized and split by hand.
type MultipartResponseParsingInterceptor struct{}

var _ client.Interceptor = (*MultipartResponseParsingInterceptor)(nil)

func NewMultipartResponseParsingInterceptor() *MultipartResponseParsingInterceptor {
	return &MultipartResponseParsingInterceptor{}
}

func (i *MultipartResponseParsingInterceptor) ID() string { return "MultipartResponseParsing" }

func (i *MultipartResponseParsingInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	if response == nil {
		chain.Proceed(request, response, i)
		return
	}

	boundary, ok := streamBoundary(response)
	if !ok {
		chain.Proceed(request, response, i)
		return
	}

	payloads, err := splitMultipartBody(response.RawBody, boundary)
	if err != nil {
		chain.HandleError(err, request, response)
		return
	}

	for _, payload := range payloads {
		if payload.fatalErrors != nil {
			chain.HandleError(payload.fatalErrors, request, response)
			return
		}
		chunk := &client.Response{
			StatusCode: response.StatusCode,
			Header:     response.Header,
			RawBody:    payload.envelope,
			IsChunk:    true,
		}
		chain.Proceed(request, chunk, i)
	}
}

// streamBoundary reports the part delimiter when the response is a GraphQL
// multipart stream: multipart/mixed with a boundary and either
// subscriptionSpec or deferSpec advertised.
func streamBoundary(response *client.Response) (string, bool) {
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		return "", false
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/mixed" {
		return "", false
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", false
	}
	if params["subscriptionspec"] == "" && params["deferspec"] == "" {
		return "", false
	}
	return boundary, true
}

type multipartPayload struct {
	envelope    []byte
	fatalErrors gqlerror.List
}

// splitMultipartBody cuts the body at `--boundary` delimiters and parses
// each part's JSON body into a payload chunk. Parsing stops at the
// `--boundary--` terminator. Heartbeat parts (empty JSON objects) are
// dropped.
func splitMultipartBody(body []byte, boundary string) ([]multipartPayload, error) {
	normalized := strings.ReplaceAll(string(body), "\r\n", "\n")
	delimiter := "--" + boundary

	var payloads []multipartPayload
	for _, segment := range strings.Split(normalized, delimiter) {
		segment = strings.TrimPrefix(segment, "\n")
		if segment == "" || strings.TrimSpace(segment) == "" {
			continue
		}
		// The split leaves the terminator's trailing dashes as their own
		// segment.
		if strings.HasPrefix(segment, "--") {
			break
		}

		partBody := partBodyAfterHeaders(segment)
		if partBody == "" {
			continue
		}

		payload, keep, err := parseStreamPart([]byte(partBody))
		if err != nil {
			return nil, err
		}
		if keep {
			payloads = append(payloads, payload)
		}
	}
	return payloads, nil
}

// partBodyAfterHeaders drops the part's header block: everything up to the
// first blank line. A part without headers is all body.
func partBodyAfterHeaders(segment string) string {
	segment = strings.TrimSuffix(segment, "\n")
	if idx := strings.Index(segment, "\n\n"); idx >= 0 {
		return strings.TrimSpace(segment[idx+2:])
	}
	lines := strings.Split(segment, "\n")
	for idx, line := range lines {
		if !strings.Contains(line, ":") {
			return strings.TrimSpace(strings.Join(lines[idx:], "\n"))
		}
	}
	return ""
}

func parseStreamPart(partBody []byte) (multipartPayload, bool, error) {
	var part struct {
		Payload json.RawMessage `json:"payload"`
		Errors  gqlerror.List   `json:"errors"`
	}
	if err := json.Unmarshal(partBody, &part); err != nil {
		return multipartPayload{}, false, errors.Wrap(err, "decoding multipart chunk")
	}

	// A top-level errors field outside any payload is a fatal transport
	// signal ending the stream.
	if len(part.Errors) > 0 && part.Payload == nil {
		return multipartPayload{fatalErrors: part.Errors}, true, nil
	}

	envelope := []byte(part.Payload)
	if part.Payload == nil {
		envelope = partBody
	}

	trimmed := strings.TrimSpace(string(envelope))
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		// Heartbeat.
		return multipartPayload{}, false, nil
	}
	return multipartPayload{envelope: []byte(trimmed)}, true, nil
}

package interceptors

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/borderlesshq/apollograph/client"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Accept header specs, in the deterministic order the wire contract fixes.
const (
	MultipartSubscriptionSpec = `boundary="graphql";subscriptionSpec=1.0`
	MultipartDeferSpec        = `boundary="graphql";deferSpec=20220824`

	graphQLResponseAccept = "application/graphql-response+json,application/json"
)

// AcceptHeader returns the Accept value for an operation kind.
func AcceptHeader(kind client.OperationKind) string {
	spec := MultipartDeferSpec
	if kind == client.Subscription {
		spec = MultipartSubscriptionSpec
	}
	return "multipart/mixed;" + spec + "," + graphQLResponseAccept
}

// NetworkFetchInterceptor issues the HTTP request and attaches the raw body
// to the response. It implements the cancel capability: cancelling the
// chain aborts the in-flight request.
type NetworkFetchInterceptor struct {
	httpClient client.HTTPClient

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ client.Interceptor = (*NetworkFetchInterceptor)(nil)
var _ client.CancelableInterceptor = (*NetworkFetchInterceptor)(nil)

func NewNetworkFetchInterceptor(httpClient client.HTTPClient) *NetworkFetchInterceptor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NetworkFetchInterceptor{httpClient: httpClient}
}

func (i *NetworkFetchInterceptor) ID() string { return "NetworkFetch" }

func (i *NetworkFetchInterceptor) Intercept(chain *client.RequestChain, request *client.Request, response *client.Response) {
	httpReq, err := i.buildHTTPRequest(request)
	if err != nil {
		chain.HandleError(err, request, response)
		return
	}

	httpResp, err := i.httpClient.Do(httpReq)
	i.clearCancel()
	if err != nil {
		chain.HandleError(errors.Wrap(err, "network fetch"), request, response)
		return
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		chain.HandleError(errors.Wrap(err, "reading response body"), request, response)
		return
	}

	chain.Proceed(request, &client.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		RawBody:    rawBody,
	}, i)
}

// OnCancel aborts the in-flight HTTP request, if any.
func (i *NetworkFetchInterceptor) OnCancel() {
	i.mu.Lock()
	cancel := i.cancel
	i.cancel = nil
	i.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (i *NetworkFetchInterceptor) clearCancel() {
	i.mu.Lock()
	i.cancel = nil
	i.mu.Unlock()
}

func (i *NetworkFetchInterceptor) buildHTTPRequest(request *client.Request) (*http.Request, error) {
	ctx := request.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()

	var body io.Reader
	contentType := "application/json"

	if len(request.UploadFiles) > 0 {
		uploadBody, uploadContentType, err := buildUploadBody(request)
		if err != nil {
			cancel()
			return nil, err
		}
		body, contentType = uploadBody, uploadContentType
	} else {
		payload, err := request.MarshalBody()
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "encoding operation body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, request.EndpointURL, body)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "building http request")
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-APOLLO-OPERATION-NAME", request.Operation.Name())
	httpReq.Header.Set("X-APOLLO-OPERATION-TYPE", string(request.Operation.Kind()))
	if request.ClientName != "" {
		httpReq.Header.Set("apollographql-client-name", request.ClientName)
	}
	if request.ClientVersion != "" {
		httpReq.Header.Set("apollographql-client-version", request.ClientVersion)
	}

	// Caller headers override everything above. Accept is set last: the
	// multipart specs the parser understands are not negotiable.
	for key, values := range request.AdditionalHeaders {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", AcceptHeader(request.Operation.Kind()))

	return httpReq, nil
}

// buildUploadBody assembles a multipart/form-data body per the GraphQL
// multipart request convention: an `operations` field with the envelope,
// a `map` field binding file parts to variables, then one part per file.
func buildUploadBody(request *client.Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload, err := request.MarshalBody()
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding operations field")
	}
	if err := writeFormField(w, "operations", payload); err != nil {
		return nil, "", err
	}

	fileMap := make(map[string][]string, len(request.UploadFiles))
	for idx, file := range request.UploadFiles {
		fileMap[strconv.Itoa(idx)] = []string{"variables." + file.FieldName}
	}
	mapPayload, err := json.Marshal(fileMap)
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding map field")
	}
	if err := writeFormField(w, "map", mapPayload); err != nil {
		return nil, "", err
	}

	for idx, file := range request.UploadFiles {
		if err := writeFilePart(w, strconv.Itoa(idx), file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "finalizing upload body")
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFormField(w *multipart.Writer, name string, value []byte) error {
	fw, err := w.CreateFormField(name)
	if err != nil {
		return errors.Wrapf(err, "creating form field %q", name)
	}
	_, err = fw.Write(value)
	return errors.Wrapf(err, "writing form field %q", name)
}

func writeFilePart(w *multipart.Writer, name string, file client.UploadFile) error {
	contentType := "application/octet-stream"
	if detected, err := mimetype.DetectFile(file.Path); err == nil {
		contentType = detected.String()
	}

	originalName := file.OriginalName
	if originalName == "" {
		originalName = filepath.Base(file.Path)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+name+`"; filename="`+originalName+`"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return errors.Wrapf(err, "creating file part %q", name)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return errors.Wrapf(err, "opening upload file %q", file.Path)
	}
	defer f.Close()

	_, err = io.Copy(part, f)
	return errors.Wrapf(err, "writing file part %q", name)
}

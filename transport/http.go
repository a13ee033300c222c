package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPClient wraps a pooled *http.Client and exposes one-shot requests with
// custom headers, a body, and optional multipart file attachments. It does
// not retry or interpret status codes; that discipline belongs to the
// ratelimit governor and the api package sitting above it.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns an HTTPClient sharing one connection-pooled
// *http.Client, meant to be shared by every REST call and shard a process
// makes rather than constructed per call.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Request is a fully-formed outbound HTTP request, ready to Do.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    io.Reader
}

// Do performs the request. The caller must close Response.Body.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "transport: failed to build request")
	}
	if req.Headers != nil {
		httpReq.Header = req.Headers
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "transport: request failed")
	}
	return resp, nil
}

// Multipart builds a multipart/form-data body via writer, returning the
// finished bytes and the content type header to send alongside it. Unlike
// a streaming pipe, this buffers the whole body — request bodies must be
// re-sendable across governor retries, which a one-shot io.Pipe cannot do.
func Multipart(writer func(*multipart.Writer) error) (body *bytes.Buffer, contentType string, err error) {
	body = new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	if err := writer(mw); err != nil {
		return nil, "", errors.Wrap(err, "transport: failed to write multipart body")
	}
	if err := mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "transport: failed to close multipart writer")
	}

	return body, mw.FormDataContentType(), nil
}

// Package ratelimit implements the REST rate-limit governor: per-route
// bucket admission, a process-wide global lockout on 429 responses, and
// bounded retry for 5xx/connection failures. The global deadline is kept in
// a go.uber.org/atomic value and bucket-boundary serialization uses
// github.com/sasha-s/go-csync so admission waits stay context-cancelable.
package ratelimit

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/riftcord/corebot/internal/backoff"
	"github.com/riftcord/corebot/transport"
)

// maxRateLimitResubmits bounds how many times a single caller-submitted
// request may be transparently resubmitted after a 429.
const maxRateLimitResubmits = 5

// maxNetworkRetries bounds 5xx/connection-layer retries.
const maxNetworkRetries = 5

var (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second
)

// bucketIdleLifetime is how long an idle, drained bucket is retained before
// the janitor prunes it.
const bucketIdleLifetime = 5 * time.Minute

// Request is a single REST call submitted to the governor. Route is the
// path used to derive the bucket key (with the real major parameter still
// present); URL is the full request URL. Body is buffered up front so it can
// be replayed across retries.
type Request struct {
	Method  string
	Route   string
	URL     string
	Headers http.Header
	Body    []byte
}

// httpDoer is the seam the governor drives the transport through. It is
// satisfied by *transport.HTTPClient and by test doubles.
type httpDoer interface {
	Do(ctx context.Context, req transport.Request) (*http.Response, error)
}

// Governor admits outbound REST requests under per-route and global limits.
// One Governor should be shared by every shard and REST call a Client
// makes, since the global lockout and per-route buckets only mean anything
// if every outbound request passes through the same instance.
type Governor struct {
	http httpDoer
	log  zerolog.Logger

	buckets sync.Map // string -> *bucket

	// globalUntil is a Unix-nanosecond deadline; while time.Now() is before
	// it, no request may leave the process. Zero means unlocked.
	globalUntil atomic.Int64

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// New creates a Governor using the given HTTP transport and logger. A zero
// zerolog.Logger (zerolog.Nop()) is a safe default.
func New(client httpDoer, log zerolog.Logger) *Governor {
	g := &Governor{
		http:        client,
		log:         log,
		janitorStop: make(chan struct{}),
	}
	go g.janitor()
	return g
}

// Close stops the bucket janitor. It does not close the underlying HTTP
// transport, which may be shared.
func (g *Governor) Close() {
	g.janitorOnce.Do(func() { close(g.janitorStop) })
}

func (g *Governor) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.janitorStop:
			return
		case <-ticker.C:
			now := time.Now()
			g.buckets.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				if b.idleSince() > bucketIdleLifetime && b.isIdleAndDrained(now) {
					g.buckets.Delete(key)
				}
				return true
			})
		}
	}
}

func (g *Governor) getBucket(key string) *bucket {
	v, _ := g.buckets.LoadOrStore(key, newBucket())
	return v.(*bucket)
}

// Do admits req, blocking until the bucket and global lockout allow it to
// go out, then performs it, transparently retrying 429s and 5xx/connection
// failures. The returned response's body has already been
// read and closed; callers get the status, headers, and buffered body.
func (g *Governor) Do(ctx context.Context, req Request) (*Response, error) {
	key := BucketKey(req.Method, req.Route)
	b := g.getBucket(key)

	if err := b.lock.Lock(ctx); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, errors.Wrap(err, "ratelimit: failed to acquire bucket")
	}
	defer b.lock.Unlock()

	for resubmit := 0; ; resubmit++ {
		if resubmit > maxRateLimitResubmits {
			return nil, ErrExhausted
		}

		if err := g.waitGlobal(ctx); err != nil {
			return nil, err
		}
		if err := g.waitBucket(ctx, b); err != nil {
			return nil, err
		}

		b.consume()

		resp, err := g.doWithNetworkRetry(ctx, req)
		if err != nil {
			return nil, err
		}

		g.applyHeaders(b, resp.Headers)

		if resp.Status == http.StatusTooManyRequests {
			wait := g.handle429(resp)
			g.log.Warn().Str("route", key).Dur("retry_after", wait).Msg("rate limited, resubmitting")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctxWaitErr(ctx)
			}
			continue
		}

		if resp.Status >= 400 {
			return resp, &StatusError{Status: resp.Status, Body: resp.Body, Headers: resp.Headers}
		}

		return resp, nil
	}
}

func (g *Governor) waitGlobal(ctx context.Context) error {
	for {
		until := g.globalUntil.Load()
		if until == 0 {
			return nil
		}
		wait := time.Until(time.Unix(0, until))
		if wait <= 0 {
			return nil
		}
		select {
		case <-time.After(wait):
			return nil
		case <-ctx.Done():
			return ctxWaitErr(ctx)
		}
	}
}

func (g *Governor) waitBucket(ctx context.Context, b *bucket) error {
	wait := b.waitWindow()
	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctxWaitErr(ctx)
	}
}

// ctxWaitErr maps a context cancellation hit while waiting on the bucket or
// global lockout to ErrTimeout when it was the deadline that elapsed,
// preserving the caller's own cancellation error otherwise.
func ctxWaitErr(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimeout
	}
	return ctx.Err()
}

// Response is the governor's buffered view of an HTTP response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

func (g *Governor) doWithNetworkRetry(ctx context.Context, req Request) (*Response, error) {
	bo := backoff.New(backoffBase, backoffCap)

	for attempt := 0; attempt < maxNetworkRetries; attempt++ {
		var bodyReader io.Reader
		if req.Body != nil {
			bodyReader = bytesReader(req.Body)
		}

		httpResp, err := g.http.Do(ctx, transport.Request{
			Method:  req.Method,
			URL:     req.URL,
			Headers: req.Headers,
			Body:    bodyReader,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctxWaitErr(ctx)
			}
			if attempt == maxNetworkRetries-1 {
				return nil, errors.Wrap(err, "ratelimit: request failed after retries")
			}
			g.sleep(ctx, bo.Next())
			continue
		}

		body, _ := ioutil.ReadAll(httpResp.Body)
		httpResp.Body.Close()

		if httpResp.StatusCode >= 500 {
			if attempt == maxNetworkRetries-1 {
				return &Response{Status: httpResp.StatusCode, Headers: httpResp.Header, Body: body}, nil
			}
			g.sleep(ctx, bo.Next())
			continue
		}

		return &Response{Status: httpResp.StatusCode, Headers: httpResp.Header, Body: body}, nil
	}

	return nil, errors.New("ratelimit: unreachable retry loop exit")
}

func (g *Governor) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (g *Governor) applyHeaders(b *bucket, h http.Header) {
	limit := h.Get("X-RateLimit-Limit")
	remaining := h.Get("X-RateLimit-Remaining")
	reset := h.Get("X-RateLimit-Reset")

	var resetAt time.Time
	haveReset := false
	if reset != "" {
		if f, err := strconv.ParseFloat(reset, 64); err == nil {
			resetAt = time.Unix(0, int64(f*float64(time.Second)))
			haveReset = true
		}
	}

	b.update(limit, remaining, resetAt, haveReset)
}

// handle429 updates the global lockout if the response marks itself global,
// and returns how long to wait before resubmitting.
func (g *Governor) handle429(resp *Response) time.Duration {
	retryAfter := resp.Headers.Get("Retry-After")
	wait := time.Second
	if retryAfter != "" {
		if f, err := strconv.ParseFloat(retryAfter, 64); err == nil {
			wait = time.Duration(f * float64(time.Second))
		}
	}

	if resp.Headers.Get("X-RateLimit-Global") != "" {
		g.globalUntil.Store(time.Now().Add(wait).UnixNano())
	}

	return wait
}

type byteReader struct {
	b   []byte
	pos int
}

func bytesReader(b []byte) io.Reader { return &byteReader{b: b} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

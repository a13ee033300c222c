package ratelimit

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/riftcord/corebot/transport"
)

// fakeDoer lets tests script canned responses per call without touching the
// network.
type fakeDoer struct {
	mu    sync.Mutex
	calls int32
	fn    func(call int, req transport.Request) *http.Response
}

func (f *fakeDoer) Do(ctx context.Context, req transport.Request) (*http.Response, error) {
	call := int(atomic.AddInt32(&f.calls, 1)) - 1
	return f.fn(call, req), nil
}

func jsonResp(status int, headers map[string]string) *http.Response {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       ioutil.NopCloser(bytes.NewBufferString("{}")),
	}
}

// TestBucketSerialization checks that five requests against a bucket with
// limit=1 go out one at a time, never more than one per window.
func TestBucketSerialization(t *testing.T) {
	var inFlight int32
	var maxInFlight int32

	doer := &fakeDoer{fn: func(call int, req transport.Request) *http.Response {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)

		return jsonResp(200, map[string]string{
			"X-RateLimit-Limit":     "1",
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     strconv.FormatFloat(float64(time.Now().Add(time.Millisecond).UnixNano())/1e9, 'f', 6, 64),
		})
	}}

	g := New(doer, zerolog.Nop())
	defer g.Close()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Do(context.Background(), Request{
				Method: "PATCH",
				Route:  "/channels/123",
				URL:    "https://example.invalid/channels/123",
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight > 1 {
		t.Fatalf("expected at most 1 in-flight request on the bucket, saw %d", maxInFlight)
	}
	if atomic.LoadInt32(&doer.calls) != 5 {
		t.Fatalf("expected all 5 requests to eventually succeed, only %d were sent", doer.calls)
	}
}

// TestGlobalLockout checks that a global 429 blocks all routes until
// Retry-After elapses.
func TestGlobalLockout(t *testing.T) {
	start := time.Now()

	var firstGlobalOnce sync.Once
	doer := &fakeDoer{fn: func(call int, req transport.Request) *http.Response {
		isFirstRoute := req.URL == "https://example.invalid/a"

		if isFirstRoute {
			fired := false
			firstGlobalOnce.Do(func() { fired = true })
			if fired {
				return jsonResp(http.StatusTooManyRequests, map[string]string{
					"Retry-After":        "0.05",
					"X-RateLimit-Global": "true",
				})
			}
		}

		return jsonResp(200, nil)
	}}

	g := New(doer, zerolog.Nop())
	defer g.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	var secondDoneAt time.Time
	go func() {
		defer wg.Done()
		g.Do(context.Background(), Request{Method: "GET", Route: "/a", URL: "https://example.invalid/a"})
	}()
	go func() {
		defer wg.Done()
		time.Sleep(2 * time.Millisecond) // let the 429 land first
		g.Do(context.Background(), Request{Method: "GET", Route: "/b", URL: "https://example.invalid/b"})
		secondDoneAt = time.Now()
	}()
	wg.Wait()

	if secondDoneAt.Sub(start) < 40*time.Millisecond {
		t.Fatalf("expected the second route to be delayed by the global lockout, finished after only %s", secondDoneAt.Sub(start))
	}
}

// TestExhaustedAfterFiveResubmits verifies the resubmit cap: a route that
// always 429s fails with ErrExhausted rather than retrying forever, after the
// original attempt plus maxRateLimitResubmits resubmissions.
func TestExhaustedAfterFiveResubmits(t *testing.T) {
	doer := &fakeDoer{fn: func(call int, req transport.Request) *http.Response {
		return jsonResp(http.StatusTooManyRequests, map[string]string{"Retry-After": "0.001"})
	}}

	g := New(doer, zerolog.Nop())
	defer g.Close()

	_, err := g.Do(context.Background(), Request{Method: "GET", Route: "/always-429", URL: "https://example.invalid/always-429"})
	if err != ErrExhausted {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if doer.calls != maxRateLimitResubmits+1 {
		t.Fatalf("expected exactly %d attempts, got %d", maxRateLimitResubmits+1, doer.calls)
	}
}

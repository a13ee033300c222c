package ratelimit

import "github.com/pkg/errors"

// ErrExhausted is returned once a single request has been re-submitted the
// maximum number of times after repeated 429 responses.
var ErrExhausted = errors.New("ratelimit: exhausted retry budget after repeated 429 responses")

// ErrTimeout is returned when a request's deadline elapses while the
// governor is waiting on a bucket, the global lockout, or the transport.
var ErrTimeout = errors.New("ratelimit: request timed out")

// StatusError wraps a 4xx or 5xx HTTP response other than 429. A 4xx is
// surfaced immediately; a 5xx only once the governor's network retries are
// used up.
type StatusError struct {
	Status  int
	Body    []byte
	Headers map[string][]string
}

func (e *StatusError) Error() string {
	return "ratelimit: http status " + itoa(e.Status)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [8]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

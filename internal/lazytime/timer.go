// Package lazytime wraps time.Timer with a zero value that is safe to Reset
// and Wait on without a prior Stop/drain dance, since the callers in this
// module (invalid-session re-identify delay, resume backoff) reset timers
// that may or may not have already fired.
package lazytime

import "time"

// Timer is a time.Timer that tolerates being Reset before it has ever been
// started.
type Timer struct {
	t *time.Timer
}

// Reset arms the timer to fire after d, stopping and draining any previous
// pending fire first.
func (lt *Timer) Reset(d time.Duration) {
	if lt.t == nil {
		lt.t = time.NewTimer(d)
		return
	}
	if !lt.t.Stop() {
		select {
		case <-lt.t.C:
		default:
		}
	}
	lt.t.Reset(d)
}

// C returns the timer's fire channel, for use in a select alongside other
// cases. It is nil until the first Reset, which a nil channel in a select
// simply blocks on forever rather than panicking.
func (lt *Timer) C() <-chan time.Time {
	if lt.t == nil {
		return nil
	}
	return lt.t.C
}

// Stop disarms the timer. It is a no-op if the timer was never started.
func (lt *Timer) Stop() {
	if lt.t == nil {
		return
	}
	if !lt.t.Stop() {
		select {
		case <-lt.t.C:
		default:
		}
	}
}

// Wait blocks until the timer fires or ctx is done, whichever comes first.
func (lt *Timer) Wait(ctx doner) error {
	if lt.t == nil {
		return nil
	}
	select {
	case <-lt.t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doner is the subset of context.Context this package needs, kept narrow to
// avoid importing context just for an interface.
type doner interface {
	Done() <-chan struct{}
	Err() error
}

package gateway

import "go.uber.org/atomic"

// Sequence is the monotone dispatch counter a shard tracks for heartbeats
// and resumes. It is read from the shard's own read loop and from the
// pacemaker's timer goroutine concurrently, hence the atomic.
type Sequence struct {
	n atomic.Int64
}

// Set records s as the last-seen sequence number, which is expected to be
// strictly non-decreasing while the session is alive. A lower-or-equal
// value is ignored rather than asserted, since a resumed session may
// legitimately replay around a reconnect boundary.
func (s *Sequence) Set(v int64) {
	for {
		cur := s.n.Load()
		if v <= cur {
			return
		}
		if s.n.CAS(cur, v) {
			return
		}
	}
}

// Get returns the current sequence number, or 0 if none has been seen.
func (s *Sequence) Get() int64 {
	return s.n.Load()
}

// Reset zeroes the sequence, e.g. when a session is invalidated and a fresh
// Identify is about to be sent.
func (s *Sequence) Reset() {
	s.n.Store(0)
}

// Ptr returns a pointer suitable for a HeartbeatCommand, or nil if no
// sequence has been observed yet.
func (s *Sequence) Ptr() *int64 {
	v := s.n.Load()
	if v == 0 {
		return nil
	}
	return &v
}

package gateway

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/riftcord/corebot/internal/lazytime"
)

// pacemaker drives the heartbeat loop: it beats on the server-specified
// interval, jitters the first beat to avoid a thundering herd across many
// shards started at once, and reports death (two consecutive un-acked
// beats) so the caller can force a reconnect. It has explicit stopAsync/
// ctx-free shutdown instead of a channel handshake, since it has exactly one
// caller.
type pacemaker struct {
	interval time.Duration
	beat     func() error

	sentAt atomic.Int64
	echoAt atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	death    chan error
}

func newPacemaker(interval time.Duration, beat func() error) *pacemaker {
	return &pacemaker{
		interval: interval,
		beat:     beat,
		stop:     make(chan struct{}),
		death:    make(chan error, 1),
	}
}

// echo records that a HEARTBEAT_ACK arrived just now.
func (p *pacemaker) echo() {
	p.echoAt.Store(time.Now().UnixNano())
}

// dead reports whether two beats have gone unacked: the last beat was sent
// more than one interval after the last ack, so the beat before it went
// unacked too.
func (p *pacemaker) dead() bool {
	sent, echo := p.sentAt.Load(), p.echoAt.Load()
	if sent == 0 || echo == 0 {
		return false
	}
	return sent-echo > int64(p.interval)
}

// run blocks until stopAsync is called or two heartbeats go unacked, jittering
// the first beat by rand()*interval.
func (p *pacemaker) run(jitter time.Duration) error {
	p.echoAt.Store(time.Now().UnixNano())

	var timer lazytime.Timer
	timer.Reset(jitter)
	defer timer.Stop()

	for {
		select {
		case <-p.stop:
			return nil
		case <-timer.C():
			if p.dead() {
				return errHeartbeatTimeout
			}

			if err := p.beat(); err != nil {
				return err
			}
			p.sentAt.Store(time.Now().UnixNano())

			timer.Reset(p.interval)
		}
	}
}

func (p *pacemaker) startAsync(jitter time.Duration) {
	go func() {
		p.death <- p.run(jitter)
	}()
}

func (p *pacemaker) stopAsync() {
	p.stopOnce.Do(func() { close(p.stop) })
}

package gateway

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/riftcord/corebot/internal/backoff"
	"github.com/riftcord/corebot/internal/lazytime"
	"github.com/riftcord/corebot/json"
	"github.com/riftcord/corebot/transport"
)

// State is one of the Shard's connection lifecycle states.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateIdentifying
	StateReady
	StateResuming
	StateReconnecting
	StateDead
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateIdentifying:
		return "identifying"
	case StateReady:
		return "ready"
	case StateResuming:
		return "resuming"
	case StateReconnecting:
		return "reconnecting"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// DefaultVersion is the current, non-deprecated gateway protocol version.
// LegacyVersion is kept selectable for operators who haven't migrated yet.
const (
	DefaultVersion = "10"
	LegacyVersion  = "6"
)

// IdentifyGate serializes the Identify step across every shard in a
// process, since the server enforces at least 5 seconds between Identifies
// regardless of which shard sends them. *shard.Manager supplies a shared
// gate; a single-shard client can use NoGate.
type IdentifyGate interface {
	Wait(ctx context.Context) error
}

// NoGate never delays Identify; it's appropriate only for a single,
// unsharded connection.
type NoGate struct{}

func (NoGate) Wait(context.Context) error { return nil }

// Config configures a single Shard.
type Config struct {
	ID, NumShards int
	Token         string
	Intents       Intents
	// GatewayURL is the base wss:// URL returned by /gateway/bot, without
	// query parameters.
	GatewayURL string
	// Version selects the gateway protocol version; DefaultVersion unless
	// set to LegacyVersion.
	Version        string
	LargeThreshold uint
	Presence       *UpdatePresenceCommand
	IdentifyGate   IdentifyGate
	Logger         zerolog.Logger

	// OnDispatch is called synchronously from the shard's single read
	// loop for every DISPATCH frame, so events reach the cache in the
	// same order they were received in. It must not block for long.
	OnDispatch func(eventName string, seq int64, data json.Raw)
}

// Shard is one gateway connection and its handshake/heartbeat/reconnect
// state machine.
type Shard struct {
	cfg Config

	conn        *transport.Conn
	sendLimiter *rate.Limiter

	mu        sync.RWMutex
	state     State
	sessionID string

	sequence Sequence

	pace *pacemaker

	closeRequested chan struct{}
	closeOnce      sync.Once
}

// NewShard constructs a Shard. The shard does not connect until Run is
// called.
func NewShard(cfg Config) *Shard {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.IdentifyGate == nil {
		cfg.IdentifyGate = NoGate{}
	}
	if cfg.LargeThreshold == 0 {
		cfg.LargeThreshold = 50
	}

	return &Shard{
		cfg:            cfg,
		conn:           transport.NewConn(),
		sendLimiter:    newSendLimiter(),
		closeRequested: make(chan struct{}),
	}
}

// newSendLimiter enforces the 120-commands-per-60-seconds gateway send
// budget, leaving a small burst so a handshake's Identify/Resume doesn't
// itself starve on the limiter.
func newSendLimiter() *rate.Limiter {
	const perMinute = 120
	const burst = 5
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute-burst)), burst)
}

func (s *Shard) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the shard's current lifecycle state.
func (s *Shard) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ID returns the shard's own index within its shard group.
func (s *Shard) ID() int { return s.cfg.ID }

// SessionID returns the current resumable session ID, or "" if none.
func (s *Shard) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Shard) setSessionID(id string) {
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()
}

// Sequence returns the last sequence number observed.
func (s *Shard) Sequence() int64 {
	return s.sequence.Get()
}

func (s *Shard) gatewayURL() string {
	v := url.Values{}
	v.Set("v", s.cfg.Version)
	v.Set("encoding", "json")
	return s.cfg.GatewayURL + "?" + v.Encode()
}

// Send transmits a client->server command, subject to the 120/60s send
// throttle. Heartbeats bypass this limiter (sendRaw is used directly) so a
// saturated command budget never causes a missed heartbeat.
func (s *Shard) Send(ctx context.Context, op OpCode, data interface{}) error {
	if err := s.sendLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "gateway: send throttle wait failed")
	}
	return s.sendRaw(ctx, op, data)
}

func (s *Shard) sendRaw(ctx context.Context, op OpCode, data interface{}) error {
	b, err := encodeFrame(op, data)
	if err != nil {
		return errors.Wrap(err, "gateway: failed to encode frame")
	}
	return s.conn.Send(ctx, b)
}

// Disconnect gracefully closes the shard with close code 1000 and stops the
// run loop. The Shard cannot be restarted: a later Run on it returns
// immediately without connecting.
func (s *Shard) Disconnect() {
	s.closeOnce.Do(func() { close(s.closeRequested) })
}

// Kill closes the shard's socket with close code 1000 and marks it
// permanently dead; a later Run on the same Shard returns immediately
// without reconnecting. The Shard Manager uses this to tear a shard down
// for respawn in the same slot.
func (s *Shard) Kill() {
	s.setState(StateDead)
	s.conn.Close(true)
	s.closeOnce.Do(func() { close(s.closeRequested) })
}

// Run drives the shard's connect/identify/resume/reconnect cycle until the
// context is canceled, Disconnect/Kill is called, or a fatal close code is
// received. It is the single task that owns this shard's socket; nothing
// else may read or write the connection.
func (s *Shard) Run(ctx context.Context) error {
	resumable := false
	bo := backoff.New(time.Second, 30*time.Second)
	var reconnectTimer lazytime.Timer
	defer reconnectTimer.Stop()

	for {
		if s.State() == StateDead {
			return nil
		}

		select {
		case <-ctx.Done():
			s.gracefulClose()
			return nil
		case <-s.closeRequested:
			s.gracefulClose()
			return nil
		default:
		}

		err := s.connectOnce(ctx, resumable)
		switch e := err.(type) {
		case nil:
			// readLoop returned nil only on caller-requested shutdown. Kill
			// has already closed the socket and must stay StateDead.
			if s.State() != StateDead {
				s.gracefulClose()
			}
			return nil
		case *ErrProtocol:
			s.cfg.Logger.Warn().Err(e).Msg("gateway: protocol error, re-identifying")
			resumable = false
		case *CloseError:
			action := ActionForCloseCode(e.Code)
			switch action {
			case ActionFatal:
				s.setState(StateDead)
				s.cfg.Logger.Error().Int("code", e.Code).Msg("gateway: fatal close code")
				return fatalErrorForCode(e.Code)
			case ActionReidentify:
				s.setSessionID("")
				s.sequence.Reset()
				resumable = false
			case ActionResume:
				resumable = true
			}
		default:
			// transport/local failure (dial error, heartbeat timeout, EOF):
			// always eligible to resume, per the matrix's "any other / local
			// timeout" row.
			resumable = s.SessionID() != ""
		}

		s.setState(StateReconnecting)

		reconnectTimer.Reset(bo.Next())
		select {
		case <-ctx.Done():
			return nil
		case <-s.closeRequested:
			return nil
		case <-reconnectTimer.C():
		}
	}
}

func fatalErrorForCode(code int) error {
	switch code {
	case 4004, 4012, 4013, 4014:
		return ErrAuthentication
	case 4010:
		return ErrInvalidShard
	case 4011:
		return ErrShardingRequired
	default:
		return errors.Errorf("gateway: fatal close code %d", code)
	}
}

func (s *Shard) gracefulClose() {
	s.conn.Close(true)
	if s.pace != nil {
		s.pace.stopAsync()
	}
	s.setState(StateDisconnected)
}

// connectOnce performs one full dial->hello->identify(or resume)->readloop
// cycle. It returns nil only if the caller asked to shut down mid-cycle;
// any connection-ending error is returned so Run can consult the reconnect
// matrix.
func (s *Shard) connectOnce(ctx context.Context, resume bool) error {
	s.setState(StateConnecting)

	frames, err := s.conn.Dial(ctx, s.gatewayURL())
	if err != nil {
		return err
	}

	hello, err := s.waitHello(ctx, frames)
	if err != nil {
		return err
	}

	interval := time.Duration(hello.HeartbeatIntervalMs) * time.Millisecond
	s.pace = newPacemaker(interval, func() error {
		return s.sendRaw(ctx, HeartbeatOp, HeartbeatCommand{Sequence: s.sequence.Ptr()})
	})
	jitter := time.Duration(rand.Int63n(int64(interval)))
	s.pace.startAsync(jitter)

	if resume && s.SessionID() != "" {
		s.setState(StateResuming)
		if err := s.Send(ctx, ResumeOp, ResumeCommand{
			Token:     s.cfg.Token,
			SessionID: s.SessionID(),
			Sequence:  s.sequence.Get(),
		}); err != nil {
			s.pace.stopAsync()
			return err
		}
	} else {
		s.setState(StateIdentifying)
		if err := s.cfg.IdentifyGate.Wait(ctx); err != nil {
			s.pace.stopAsync()
			return err
		}
		if err := s.sendIdentify(ctx); err != nil {
			s.pace.stopAsync()
			return err
		}
	}

	err = s.readLoop(ctx, frames)
	s.pace.stopAsync()
	return err
}

func (s *Shard) sendIdentify(ctx context.Context) error {
	cmd := NewIdentifyCommand(s.cfg.Token)
	cmd.LargeThreshold = s.cfg.LargeThreshold
	cmd.Presence = s.cfg.Presence
	shard := ShardTuple{s.cfg.ID, s.cfg.NumShards}
	cmd.Shard = &shard

	if s.cfg.Version != LegacyVersion {
		v := uint(s.cfg.Intents)
		cmd.Intents = &v
	}

	return s.Send(ctx, IdentifyOp, cmd)
}

func (s *Shard) waitHello(ctx context.Context, frames <-chan []byte) (*HelloEvent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case raw, ok := <-frames:
		if !ok {
			return nil, s.closeErrOrAbnormal()
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, &ErrProtocol{Err: err}
		}
		if f.Op != HelloOp {
			return nil, &ErrProtocol{Err: errors.Errorf("expected HELLO, got op %d", f.Op)}
		}
		var hello HelloEvent
		if err := json.Unmarshal(f.Data, &hello); err != nil {
			return nil, &ErrProtocol{Err: err}
		}
		return &hello, nil
	}
}

func (s *Shard) closeErrOrAbnormal() error {
	if ce := s.conn.LastCloseError(); ce != nil {
		return &CloseError{Code: ce.Code}
	}
	return &CloseError{Code: 0}
}

// readLoop is the per-shard read task: it owns the socket until the
// connection ends, the pacemaker dies, or the caller asks to shut down.
func (s *Shard) readLoop(ctx context.Context, frames <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closeRequested:
			return nil
		case err := <-s.pace.death:
			if err == nil {
				return nil
			}
			// Two missed beats: drop the socket without a close frame and
			// let Run treat it as close code 4000 (resume).
			s.conn.Close(false)
			return &CloseError{Code: 4000}
		case raw, ok := <-frames:
			if !ok {
				return s.closeErrOrAbnormal()
			}
			if err := s.handleFrame(ctx, raw); err != nil {
				if _, isProto := err.(*ErrProtocol); isProto {
					return err
				}
				s.cfg.Logger.Warn().Err(err).Msg("gateway: error handling frame")
			}
		}
	}
}

func (s *Shard) handleFrame(ctx context.Context, raw []byte) error {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return &ErrProtocol{Err: err}
	}

	switch f.Op {
	case HeartbeatAckOp:
		s.pace.echo()

	case HeartbeatOp:
		return s.sendRaw(ctx, HeartbeatOp, HeartbeatCommand{Sequence: s.sequence.Ptr()})

	case ReconnectOp:
		s.conn.Close(false)
		return &CloseError{Code: 0}

	case InvalidSessionOp:
		var resumable InvalidSessionEvent
		json.Unmarshal(f.Data, &resumable)

		delay := time.Duration(1+rand.Intn(5)) * time.Second
		var timer lazytime.Timer
		timer.Reset(delay)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return nil
		}

		if resumable.Resumable {
			return &CloseError{Code: 0} // Run will resume
		}
		s.setSessionID("")
		s.sequence.Reset()
		return &CloseError{Code: 4007} // forces ActionReidentify via matrix

	case DispatchOp:
		if f.Seq != nil {
			s.sequence.Set(*f.Seq)
		}

		if f.Name == "READY" {
			var ready ReadyEvent
			if err := json.Unmarshal(f.Data, &ready); err == nil {
				s.setSessionID(ready.SessionID)
				s.setState(StateReady)
			}
		}
		if f.Name == "RESUMED" {
			s.setState(StateReady)
		}

		seq := int64(0)
		if f.Seq != nil {
			seq = *f.Seq
		}
		if s.cfg.OnDispatch != nil {
			s.cfg.OnDispatch(f.Name, seq, f.Data)
		}

	default:
		return &ErrProtocol{Err: errors.Errorf("unknown opcode %d", f.Op)}
	}

	return nil
}

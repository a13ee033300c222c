// Package shard implements the Shard Manager: it spawns one gateway.Shard
// per entry in a [0, N) range, routes guild-scoped work to the shard that
// owns it via the (guild_id >> 22) % N formula, and serializes the
// Identify step across every shard it owns so the process never exceeds
// the gateway's 5-seconds-between-Identifies and max_concurrency limits.
//
// session_start_limit is pulled through an injected fetcher instead of a
// hard-wired REST client, so this package has no import-time dependency on
// the REST layer.
package shard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
	"github.com/riftcord/corebot/json"
)

// SessionStartLimit mirrors the session_start_limit object returned by
// GET /gateway/bot.
type SessionStartLimit struct {
	Total          int
	Remaining      int
	ResetAfter     time.Duration
	MaxConcurrency int
}

// BotGatewayInfo mirrors the response of GET /gateway/bot.
type BotGatewayInfo struct {
	URL               string
	RecommendedShards int
	SessionStartLimit SessionStartLimit
}

// GatewayInfoFetcher is satisfied by api.Client; it is the one point where
// the Shard Manager talks to the REST layer, kept as a narrow interface so
// this package doesn't import api and create a cycle.
type GatewayInfoFetcher interface {
	BotGateway(ctx context.Context) (BotGatewayInfo, error)
}

// GuildUnavailableMarker is satisfied by state.Store; it is the one point
// where the Shard Manager talks to the cache, kept as a narrow interface so
// this package doesn't import state and create a cycle. Kill uses it to
// demote a killed shard's guilds to unavailable instead of leaving stale
// data behind while the replacement shard is reconnecting.
type GuildUnavailableMarker interface {
	GuildSetUnavailableForShard(shardID int) error
}

// identifyGate serializes Identify across every shard the manager owns. A
// token bucket of size MaxConcurrency refilling one token every 5 seconds
// matches the two constraints the gateway documents: no more than
// max_concurrency shards may identify inside the same 5-second window, and
// no shard may identify more than once per 5 seconds.
type identifyGate struct {
	limiter *rate.Limiter
}

func newIdentifyGate(maxConcurrency int) *identifyGate {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &identifyGate{
		limiter: rate.NewLimiter(rate.Every(5*time.Second), maxConcurrency),
	}
}

func (g *identifyGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

func (g *identifyGate) setMaxConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	g.limiter.SetBurst(n)
}

// NewShardFunc lets a caller customize shard construction (e.g. to wrap
// OnDispatch with a state cache) instead of hard-coding gateway.NewShard.
type NewShardFunc func(cfg gateway.Config) *gateway.Shard

// Manager owns every shard for one bot process. It must not be copied.
type Manager struct {
	mu sync.RWMutex

	token      string
	intents    gateway.Intents
	gatewayURL string
	shards     []*gateway.Shard
	gate       *identifyGate

	fetch  GatewayInfoFetcher
	newFn  NewShardFunc
	logger zerolog.Logger
	guilds GuildUnavailableMarker

	onDispatch func(shardID int, eventName string, seq int64, data json.Raw)

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the zerolog.Logger every shard logs through.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.logger = log }
}

// WithNewShardFunc overrides how each gateway.Shard is constructed from its
// Config, letting a caller wrap OnDispatch (e.g. to feed a state cache)
// before the shard is built.
func WithNewShardFunc(fn NewShardFunc) Option {
	return func(m *Manager) { m.newFn = fn }
}

// WithDispatchHandler registers a callback invoked for every DISPATCH frame
// on every shard, tagged with the originating shard ID.
func WithDispatchHandler(fn func(shardID int, eventName string, seq int64, data json.Raw)) Option {
	return func(m *Manager) { m.onDispatch = fn }
}

// WithGuildUnavailableMarker supplies the cache Kill uses to demote a
// killed shard's guilds to unavailable.
func WithGuildUnavailableMarker(g GuildUnavailableMarker) Option {
	return func(m *Manager) { m.guilds = g }
}

// NewManager queries fetch for the recommended shard count and session
// start limit, then constructs that many shards. numShards, if > 0,
// overrides the recommendation (the caller is sharding manually).
func NewManager(ctx context.Context, token string, intents gateway.Intents, fetch GatewayInfoFetcher, numShards int, opts ...Option) (*Manager, error) {
	m := &Manager{
		token:   token,
		intents: intents,
		fetch:   fetch,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.newFn == nil {
		m.newFn = gateway.NewShard
	}

	info, err := fetch.BotGateway(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "shard manager: failed to fetch gateway info")
	}

	if numShards < 1 {
		numShards = info.RecommendedShards
	}
	if numShards < 1 {
		numShards = 1
	}

	m.gatewayURL = info.URL
	m.gate = newIdentifyGate(info.SessionStartLimit.MaxConcurrency)
	m.shards = make([]*gateway.Shard, numShards)

	for i := range m.shards {
		m.shards[i] = m.newFn(m.shardConfig(i, numShards))
	}

	return m, nil
}

func (m *Manager) shardConfig(id, numShards int) gateway.Config {
	cfg := gateway.Config{
		ID:           id,
		NumShards:    numShards,
		Token:        m.token,
		Intents:      m.intents,
		GatewayURL:   m.gatewayURL,
		IdentifyGate: m.gate,
		Logger:       m.logger.With().Int("shard", id).Logger(),
	}
	if m.onDispatch != nil {
		shardID := id
		cfg.OnDispatch = func(name string, seq int64, data json.Raw) {
			m.onDispatch(shardID, name, seq, data)
		}
	}
	return cfg
}

// NumShards returns the total shard count.
func (m *Manager) NumShards() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shards)
}

// Shard returns the shard with the given ID, or nil if out of range.
func (m *Manager) Shard(id int) *gateway.Shard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || id >= len(m.shards) {
		return nil
	}
	return m.shards[id]
}

// ShardForGuild returns the shard responsible for guildID, using the
// (guild_id >> 22) % N routing formula.
func (m *Manager) ShardForGuild(guildID discord.Snowflake) *gateway.Shard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.shards) == 0 {
		return nil
	}
	return m.shards[guildID.ShardFor(len(m.shards))]
}

// ForEach calls fn for every shard, in ascending ID order.
func (m *Manager) ForEach(fn func(*gateway.Shard)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shards {
		fn(s)
	}
}

// Open starts every shard's Run loop concurrently and returns once all have
// been launched; it does not block until they exit. Use Wait for that.
func (m *Manager) Open(ctx context.Context) {
	m.mu.Lock()
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.runCtx = ctx
	shards := append([]*gateway.Shard(nil), m.shards...)
	m.mu.Unlock()

	for _, s := range shards {
		m.launch(ctx, s)
	}
}

func (m *Manager) launch(ctx context.Context, s *gateway.Shard) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := s.Run(ctx); err != nil {
			m.logger.Error().Err(err).Msg("shard manager: shard exited")
		}
	}()
}

// Kill closes shard id's socket with close code 1000 and marks it
// permanently dead, without removing it from the shard table. Guilds the
// cache attributes to id are demoted to unavailable rather than dropped, so
// they reappear as soon as the replacement shard's next GUILD_CREATE
// arrives. Call Spawn afterward to put a fresh shard in the same slot.
func (m *Manager) Kill(id int) error {
	s := m.Shard(id)
	if s == nil {
		return errors.Errorf("shard manager: no shard %d", id)
	}

	s.Kill()

	if m.guilds != nil {
		if err := m.guilds.GuildSetUnavailableForShard(id); err != nil {
			return errors.Wrap(err, "shard manager: failed to mark shard's guilds unavailable")
		}
	}
	return nil
}

// Spawn constructs a fresh, not-yet-connected shard in slot id, replacing
// whatever was there. If the manager is open, the replacement's Run loop is
// started immediately. Spawn does not kill the prior occupant; call Kill
// first.
func (m *Manager) Spawn(id int) error {
	m.mu.Lock()
	if id < 0 || id >= len(m.shards) {
		m.mu.Unlock()
		return errors.Errorf("shard manager: no shard slot %d", id)
	}
	numShards := len(m.shards)
	s := m.newFn(m.shardConfig(id, numShards))
	m.shards[id] = s
	ctx := m.runCtx
	m.mu.Unlock()

	if ctx != nil {
		m.launch(ctx, s)
	}
	return nil
}

// Wait blocks until every shard's Run loop has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close gracefully disconnects every shard and waits for their Run loops to
// return.
func (m *Manager) Close() {
	m.mu.RLock()
	shards := append([]*gateway.Shard(nil), m.shards...)
	cancel := m.cancel
	m.mu.RUnlock()

	for _, s := range shards {
		s.Disconnect()
	}
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

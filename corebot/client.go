// Package corebot is the client facade: it wires the Shard Manager, the
// REST rate-limit governor, and the event dispatcher/cache into one handle
// a caller constructs once per bot process.
package corebot

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/riftcord/corebot/api"
	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
	"github.com/riftcord/corebot/gateway/shard"
	"github.com/riftcord/corebot/json"
	"github.com/riftcord/corebot/ratelimit"
	"github.com/riftcord/corebot/state"
	"github.com/riftcord/corebot/transport"
)

// Client is the facade a program builds once and holds for its whole
// lifetime. Its REST methods are reached through the embedded *api.Client,
// so corebot.New(...).SendMessage(...) reads naturally without a redundant
// wrapper method per endpoint.
type Client struct {
	*api.Client

	manager *shard.Manager
	gov     *ratelimit.Governor
	disp    *state.Dispatcher

	cfg config

	mu      sync.Mutex
	started bool
}

// New constructs a Client for token, an Authorization header value without
// the "Bot " prefix. It does not connect to the gateway or spend REST quota
// until Open is called, except that Open itself must query /gateway/bot to
// learn the shard count and session start limit.
func New(token string, opts ...Option) *Client {
	cfg := defaultConfig()
	cfg.token = token
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := transport.NewHTTPClient()
	gov := ratelimit.New(httpClient, cfg.logger)

	restClient := api.NewClient(token, gov)
	if cfg.userAgent != "" {
		restClient = restClient.WithUserAgent(cfg.userAgent)
	}

	store := state.NewDefaultStore()
	disp := state.NewDispatcher(store, cfg.logger)

	return &Client{
		Client: restClient,
		gov:    gov,
		disp:   disp,
		cfg:    cfg,
	}
}

// Me returns the bot's own user as last reported by READY. It is populated
// only after the gateway connection reaches StateReady, so a call
// immediately after Open may return ErrCacheMiss.
func (c *Client) Me() (*discord.User, error) {
	return c.disp.Store().Me()
}

// Cache returns the local, eventually-consistent view of guild/channel/
// member state that the Event Dispatcher maintains. A lookup that isn't
// cached yet returns ErrCacheMiss; there is no automatic REST fallback.
func (c *Client) Cache() state.Getter { return c.disp.Store() }

// On registers a listener for a typed gateway event, e.g.
// On(func(*gateway.MessageCreateEvent) { ... }). It panics if fn isn't a
// func taking exactly one pointer argument (or interface{} to receive every
// event) and returning nothing — always a caller bug caught at registration.
func (c *Client) On(fn interface{}) (remove func()) {
	return c.disp.On(fn)
}

// Open fetches the recommended shard count and session start limit, builds
// the shard pool, and starts every shard's connect/identify/resume loop
// concurrently. It returns once every shard has been launched; it does not
// wait for any of them to reach StateReady.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("corebot: client already open")
	}

	mgr, err := shard.NewManager(ctx, c.cfg.token, c.cfg.intents, c.Client, c.cfg.numShards,
		shard.WithLogger(c.cfg.logger),
		shard.WithDispatchHandler(c.onDispatch),
		shard.WithGuildUnavailableMarker(c.disp.Store()),
		shard.WithNewShardFunc(func(sc gateway.Config) *gateway.Shard {
			sc.Presence = c.cfg.presence
			return gateway.NewShard(sc)
		}),
	)
	if err != nil {
		return errors.Wrap(err, "corebot: failed to build shard manager")
	}

	c.manager = mgr
	c.manager.Open(ctx)
	c.started = true
	return nil
}

func (c *Client) onDispatch(shardID int, name string, seq int64, data json.Raw) {
	c.disp.Dispatch(shardID, name, seq, data)
}

// Close gracefully disconnects every shard, waits for their run loops to
// return, and stops the rate-limit governor's background janitor.
func (c *Client) Close() {
	c.mu.Lock()
	mgr := c.manager
	c.mu.Unlock()

	if mgr != nil {
		mgr.Close()
	}
	c.gov.Close()
}

// Manager exposes the underlying Shard Manager for callers that need
// per-shard control (e.g. routing a presence update to the shard owning a
// specific guild).
func (c *Client) Manager() *shard.Manager { return c.manager }

// ShardForGuild returns the shard responsible for guildID, or nil before
// Open or if guildID routes outside the current shard count.
func (c *Client) ShardForGuild(guildID discord.Snowflake) *gateway.Shard {
	if c.manager == nil {
		return nil
	}
	return c.manager.ShardForGuild(guildID)
}

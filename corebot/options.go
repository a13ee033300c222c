package corebot

import (
	"github.com/rs/zerolog"

	"github.com/riftcord/corebot/gateway"
)

// Option configures a Client at construction time.
type Option func(*config)

type config struct {
	token     string
	intents   gateway.Intents
	numShards int
	logger    zerolog.Logger
	presence  *gateway.UpdatePresenceCommand
	userAgent string
}

func defaultConfig() config {
	return config{
		numShards: 0, // 0 means "ask /gateway/bot for the recommendation"
		logger:    zerolog.Nop(),
	}
}

// WithIntents sets the gateway intents every shard identifies with.
func WithIntents(intents ...gateway.Intents) Option {
	return func(c *config) {
		var combined gateway.Intents
		for _, i := range intents {
			combined |= i
		}
		c.intents = combined
	}
}

// WithNumShards overrides the shard count instead of using the
// recommendation /gateway/bot returns.
func WithNumShards(n int) Option {
	return func(c *config) { c.numShards = n }
}

// WithLogger sets the zerolog.Logger every component logs through.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.logger = log }
}

// WithPresence sets the initial presence every shard identifies with.
func WithPresence(p *gateway.UpdatePresenceCommand) Option {
	return func(c *config) { c.presence = p }
}

// WithUserAgent overrides the REST User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) { c.userAgent = ua }
}

package corebot

import (
	"context"

	"github.com/riftcord/corebot/api"
	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/state"
)

// GuildHandle is a small value holding just the REST submitter and the
// cache view a guild-scoped helper needs, instead of a *discord.Guild
// holding a pointer back to the Client that produced it. discord.Guild
// stays a plain data struct so it can be copied, cached, and compared
// freely.
type GuildHandle struct {
	rest  *api.Client
	cache state.Getter
	id    discord.Snowflake
}

// Guild returns a capability handle scoped to id. It does not verify the
// guild is cached or exists.
func (c *Client) Guild(id discord.Snowflake) GuildHandle {
	return GuildHandle{rest: c.Client, cache: c.Cache(), id: id}
}

// ID returns the guild's snowflake.
func (h GuildHandle) ID() discord.Snowflake { return h.id }

// Cached returns the guild as currently held in the local cache, or
// ErrCacheMiss if nothing has been cached for it yet.
func (h GuildHandle) Cached() (*discord.Guild, error) {
	return h.cache.Guild(h.id)
}

// Channels returns the guild's cached channel list.
func (h GuildHandle) Channels() ([]discord.Channel, error) {
	return h.cache.Channels(h.id)
}

// Members returns the guild's cached member list.
func (h GuildHandle) Members() ([]discord.Member, error) {
	return h.cache.Members(h.id)
}

// Roles fetches the guild's roles over REST, bypassing the cache, since no
// gateway event alone populates a complete, member-independent role list.
func (h GuildHandle) Roles(ctx context.Context) ([]discord.Role, error) {
	return h.rest.Roles(ctx, h.id)
}

// CreateRole creates a role in the guild.
func (h GuildHandle) CreateRole(ctx context.Context, data api.CreateRoleData, reason string) (*discord.Role, error) {
	return h.rest.CreateRole(ctx, h.id, data, reason)
}

// Package state implements the event dispatcher and cache: it turns a
// shard's typed dispatch events into cache mutations against a pluggable
// Store, then fans the typed event out to registered listeners in
// registration order, isolating one listener's panic from the rest.
//
// Listeners are a reflection-based typed callback registry rather than a
// `map[string][]func(any)` registry, so a caller's listener signature is
// checked at registration time instead of at dispatch time.
package state

import (
	"errors"

	"github.com/riftcord/corebot/discord"
)

// ErrNotFound is returned by a Store's getters when the requested entity
// isn't cached locally. There is no automatic REST fallback; callers that
// need one can wrap a Store themselves.
var ErrNotFound = errors.New("state: not found in cache")

// Getter is the read half of Store.
type Getter interface {
	Me() (*discord.User, error)

	Guild(id discord.Snowflake) (*discord.Guild, error)
	Guilds() ([]discord.Guild, error)

	// Channel checks both the guild channel tables and the DM table.
	Channel(id discord.Snowflake) (*discord.Channel, error)
	Channels(guildID discord.Snowflake) ([]discord.Channel, error)
	PrivateChannels() ([]discord.Channel, error)

	Member(guildID, userID discord.Snowflake) (*discord.Member, error)
	Members(guildID discord.Snowflake) ([]discord.Member, error)

	Role(guildID, roleID discord.Snowflake) (*discord.Role, error)
	Roles(guildID discord.Snowflake) ([]discord.Role, error)
}

// Modifier is the write half of Store; the EventDispatcher is the only
// intended caller, since it is what keeps the cache coherent with dispatch
// order.
type Modifier interface {
	MeSet(me *discord.User) error

	GuildSet(guild *discord.Guild) error
	// GuildSetUnavailable demotes a Guild to an UnavailableGuild, or records
	// a bare UnavailableGuild if one wasn't already cached (the READY case).
	GuildSetUnavailable(unavail discord.UnavailableGuild) error
	// GuildSetUnavailableForShard demotes every guild currently attributed
	// to shardID to unavailable, preserving their cached data. The Shard
	// Manager calls this when it kills a shard for respawn, so a guild
	// isn't dropped from the cache just because its shard is briefly down.
	GuildSetUnavailableForShard(shardID int) error
	GuildRemove(id discord.Snowflake) error

	ChannelSet(ch *discord.Channel) error
	ChannelRemove(ch *discord.Channel) error

	MemberSet(guildID discord.Snowflake, member *discord.Member) error
	MemberRemove(guildID, userID discord.Snowflake) error

	Reset() error
}

// Store is the full cache storage contract; it must be safe for concurrent
// use since the dispatch task writes while many listeners read. The default
// implementation is NewDefaultStore; callers may supply their own (e.g.
// backed by a database) by implementing this interface.
type Store interface {
	Getter
	Modifier
}

package gateway

import "github.com/riftcord/corebot/discord"

// HelloEvent is sent immediately after the socket opens.
type HelloEvent struct {
	HeartbeatIntervalMs int64 `json:"heartbeat_interval"`
}

// ReadyEvent is sent once Identify succeeds.
type ReadyEvent struct {
	SessionID string                      `json:"session_id"`
	User      discord.User                `json:"user"`
	Guilds    []discord.UnavailableGuild  `json:"guilds"`
}

// ResumedEvent acknowledges a successful Resume.
type ResumedEvent struct{}

// InvalidSessionEvent's payload is a bare boolean: true means the session is
// resumable, false means a fresh Identify is required.
type InvalidSessionEvent struct {
	Resumable bool
}

func (e *InvalidSessionEvent) UnmarshalJSON(b []byte) error {
	e.Resumable = string(b) == "true"
	return nil
}

// ReconnectEvent asks the client to close and reconnect (resuming if
// possible); it carries no payload.
type ReconnectEvent struct{}

// GuildCreateEvent promotes an UnavailableGuild to a full Guild, or
// announces a newly joined guild.
type GuildCreateEvent struct {
	discord.Guild
}

// GuildUpdateEvent carries a partial or full Guild to merge over the cache
// entry.
type GuildUpdateEvent struct {
	discord.Guild
}

// GuildDeleteEvent signals either an outage (Unavailable true, demote to
// UnavailableGuild) or a real removal (Unavailable false, evict).
type GuildDeleteEvent struct {
	discord.UnavailableGuild
}

// ChannelCreateEvent, ChannelUpdateEvent, and ChannelDeleteEvent all carry a
// full Channel; Type determines whether the cache's guild table, DM table,
// or group-DM table owns it.
type ChannelCreateEvent struct{ discord.Channel }
type ChannelUpdateEvent struct{ discord.Channel }
type ChannelDeleteEvent struct{ discord.Channel }

// GuildMemberAddEvent, GuildMemberRemoveEvent, and GuildMemberUpdateEvent
// mutate a guild's member table.
type GuildMemberAddEvent struct {
	GuildID discord.Snowflake `json:"guild_id"`
	discord.Member
}

type GuildMemberRemoveEvent struct {
	GuildID discord.Snowflake `json:"guild_id"`
	User    discord.User      `json:"user"`
}

type GuildMemberUpdateEvent struct {
	GuildID discord.Snowflake   `json:"guild_id"`
	Roles   []discord.Snowflake `json:"roles"`
	User    discord.User        `json:"user"`
	Nick    string              `json:"nick,omitempty"`
}

// MessageCreateEvent is emit-only; the cache never retains it.
type MessageCreateEvent struct {
	discord.Message
}

// VoiceServerUpdateEvent is forwarded to an external voice subsystem
// unmodified; this module does not implement voice UDP transport.
type VoiceServerUpdateEvent struct {
	Token    string            `json:"token"`
	GuildID  discord.Snowflake `json:"guild_id"`
	Endpoint string            `json:"endpoint"`
}

// VoiceStateUpdateEvent mirrors a member's voice-channel presence.
type VoiceStateUpdateEvent struct {
	discord.VoiceState
}

// UnknownEvent is the forward-compatibility fallback: any dispatch whose "t"
// the client doesn't recognize is delivered as this, with the raw payload
// intact, instead of crashing the shard.
type UnknownEvent struct {
	Name string
	Data []byte
}

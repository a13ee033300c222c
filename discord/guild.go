package discord

// Guild is a single chat community. ShardID records which shard's
// GUILD_CREATE or GUILD_UPDATE last populated it, which under the routing
// invariant equals ShardFor(guild.ID, shardCount); a placeholder recorded
// from READY keeps ShardID 0 until its GUILD_CREATE arrives.
type Guild struct {
	ID          Snowflake `json:"id"`
	Name        string    `json:"name"`
	OwnerID     Snowflake `json:"owner_id"`
	Unavailable bool      `json:"unavailable,omitempty"`

	Channels []Channel  `json:"channels,omitempty"`
	Roles    []Role     `json:"roles,omitempty"`
	Emojis   []Emoji    `json:"emojis,omitempty"`
	Members  []Member   `json:"members,omitempty"`
	Presences []Presence `json:"presences,omitempty"`

	ShardID int `json:"-"`
}

// UnavailableGuild is the placeholder a guild occupies before GUILD_CREATE
// promotes it, or after it is demoted by a GUILD_DELETE carrying
// unavailable: true.
type UnavailableGuild struct {
	ID          Snowflake `json:"id"`
	Unavailable bool      `json:"unavailable"`
}

// VoiceState tracks a member's voice-channel presence within a guild.
type VoiceState struct {
	GuildID   Snowflake `json:"guild_id,omitempty"`
	ChannelID Snowflake `json:"channel_id"`
	UserID    Snowflake `json:"user_id"`
	SessionID string    `json:"session_id"`
}

// Invite is a guild invitation. Only the identity fields needed to create,
// fetch, and revoke one are modeled.
type Invite struct {
	Code      string    `json:"code"`
	GuildID   Snowflake `json:"guild_id,omitempty"`
	ChannelID Snowflake `json:"channel_id"`
	Inviter   *User     `json:"inviter,omitempty"`
}

// Integration is a third-party service linked into a guild (bots, Twitch,
// etc). Only identity is modeled; full schema coverage isn't needed here.
type Integration struct {
	ID      Snowflake `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Enabled bool      `json:"enabled"`
}

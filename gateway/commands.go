package gateway

import (
	"strconv"

	"github.com/riftcord/corebot/discord"
)

// HeartbeatCommand is the Op 1 payload: the last received sequence number,
// or null if none has been received yet. The wire format is a bare integer
// or null, not an object, so it carries its own MarshalJSON.
type HeartbeatCommand struct {
	Sequence *int64
}

func (h HeartbeatCommand) MarshalJSON() ([]byte, error) {
	if h.Sequence == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*h.Sequence, 10)), nil
}

// ResumeCommand is the Op 6 payload.
type ResumeCommand struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"seq"`
}

// UpdatePresenceCommand is the Op 3 payload.
type UpdatePresenceCommand struct {
	Since  *int64            `json:"since"`
	Status string            `json:"status"`
	AFK    bool              `json:"afk"`
	Game   *ActivityCommand  `json:"game,omitempty"`
}

// ActivityCommand describes the "playing X" status shown alongside a
// presence update.
type ActivityCommand struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

// UpdateVoiceStateCommand is the Op 4 payload.
type UpdateVoiceStateCommand struct {
	GuildID   discord.Snowflake `json:"guild_id"`
	ChannelID discord.Snowflake `json:"channel_id,omitempty"`
	SelfMute  bool              `json:"self_mute"`
	SelfDeaf  bool              `json:"self_deaf"`
}

// RequestGuildMembersCommand is the Op 8 payload.
type RequestGuildMembersCommand struct {
	GuildID   discord.Snowflake   `json:"guild_id"`
	Query     string              `json:"query,omitempty"`
	Limit     int                 `json:"limit"`
	UserIDs   []discord.Snowflake `json:"user_ids,omitempty"`
	Presences bool                `json:"presences,omitempty"`
}

package discord

// ChannelType discriminates guild channels from DM and group-DM channels.
// The cache uses this to decide which table owns a CHANNEL_CREATE/UPDATE/
// DELETE dispatch.
type ChannelType uint8

const (
	GuildText ChannelType = iota
	DM
	GuildVoice
	GroupDM
	GuildCategory
	GuildNews
	GuildStageVoice
	GuildForum
)

// IsGuild reports whether the channel type belongs to a guild rather than a
// DM or group DM.
func (t ChannelType) IsGuild() bool {
	switch t {
	case DM, GroupDM:
		return false
	default:
		return true
	}
}

// Channel models the identity fields shared across guild channels, DMs, and
// group DMs. GuildID is the zero Snowflake for DM and GroupDM channels.
type Channel struct {
	ID       Snowflake   `json:"id"`
	Type     ChannelType `json:"type"`
	GuildID  Snowflake   `json:"guild_id,omitempty"`
	Name     string      `json:"name,omitempty"`
	Topic    string      `json:"topic,omitempty"`
	ParentID Snowflake   `json:"parent_id,omitempty"`
	Position int         `json:"position,omitempty"`

	// Recipients is populated for DM and GroupDM channels only.
	Recipients []User `json:"recipients,omitempty"`
}

// RecipientID returns the single recipient's user ID for a DM channel, or
// NullSnowflake if this isn't a one-recipient DM.
func (c Channel) RecipientID() Snowflake {
	if c.Type != DM || len(c.Recipients) != 1 {
		return NullSnowflake
	}
	return c.Recipients[0].ID
}

package discord

// Message models identity and routing fields only; full field-by-field
// schemas (embeds, components, attachments) aren't modeled. MESSAGE_CREATE
// is emit-only; the cache never retains messages, so this type exists
// purely for decode and for callers of the REST message endpoints.
type Message struct {
	ID        Snowflake `json:"id"`
	ChannelID Snowflake `json:"channel_id"`
	GuildID   Snowflake `json:"guild_id,omitempty"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
}

// Webhook is a channel-scoped execution endpoint.
type Webhook struct {
	ID        Snowflake `json:"id"`
	Token     string    `json:"token,omitempty"`
	ChannelID Snowflake `json:"channel_id"`
	GuildID   Snowflake `json:"guild_id,omitempty"`
	Name      string    `json:"name"`
}

package discord

// User is a platform account. The cache holds users weakly: it never owns a
// User's lifecycle, only caches the most recently seen copy for lookup by
// entities (members, DM recipients) that reference one.
type User struct {
	ID            Snowflake `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Avatar        string    `json:"avatar,omitempty"`
	Bot           bool      `json:"bot,omitempty"`
	System        bool      `json:"system,omitempty"`
}

// Member is a User's per-guild metadata. It embeds User by pointer because
// the cache may hold a Member before the corresponding User has arrived on
// its own (e.g. a partial GUILD_MEMBER_UPDATE payload).
type Member struct {
	User     *User       `json:"user,omitempty"`
	Nick     string      `json:"nick,omitempty"`
	Roles    []Snowflake `json:"roles"`
	JoinedAt string      `json:"joined_at"`
	Deaf     bool        `json:"deaf"`
	Mute     bool        `json:"mute"`
}

// UserID returns the member's underlying user ID, or NullSnowflake if the
// User reference hasn't been populated yet.
func (m Member) UserID() Snowflake {
	if m.User == nil {
		return NullSnowflake
	}
	return m.User.ID
}

// Presence is a member's gateway-only status; it is never fetched from REST.
type Presence struct {
	User   User   `json:"user"`
	Status string `json:"status"`
}

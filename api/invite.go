package api

import (
	"context"

	"github.com/riftcord/corebot/discord"
)

// CreateInviteData is the JSON body for POST .../invites.
type CreateInviteData struct {
	MaxAge    int  `json:"max_age,omitempty"`
	MaxUses   int  `json:"max_uses,omitempty"`
	Temporary bool `json:"temporary,omitempty"`
	Unique    bool `json:"unique,omitempty"`
}

// CreateInvite creates an invite for a channel.
func (c *Client) CreateInvite(ctx context.Context, channelID discord.Snowflake, data CreateInviteData, reason string) (*discord.Invite, error) {
	var inv discord.Invite
	err := c.do(ctx, request{
		method:      "POST",
		path:        channelRoute(channelID) + "/invites",
		body:        data,
		auditReason: reason,
	}, &inv)
	return &inv, err
}

// Invite fetches an invite by its code.
func (c *Client) Invite(ctx context.Context, code string) (*discord.Invite, error) {
	var inv discord.Invite
	err := c.do(ctx, request{
		method: "GET",
		path:   "/invites/" + code,
	}, &inv)
	return &inv, err
}

// DeleteInvite revokes an invite.
func (c *Client) DeleteInvite(ctx context.Context, code string, reason string) error {
	return c.do(ctx, request{
		method:      "DELETE",
		path:        "/invites/" + code,
		auditReason: reason,
	}, nil)
}

package api

import (
	"context"

	"github.com/riftcord/corebot/discord"
)

func channelRoute(id discord.Snowflake) string { return "/channels/" + id.String() }

// Channel fetches a channel by ID.
func (c *Client) Channel(ctx context.Context, id discord.Snowflake) (*discord.Channel, error) {
	var ch discord.Channel
	err := c.do(ctx, request{
		method: "GET",
		path:   channelRoute(id),
	}, &ch)
	return &ch, err
}

// ModifyChannelData is the JSON body for PATCH /channels/{channel.id}.
type ModifyChannelData struct {
	Name     string `json:"name,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// ModifyChannel edits a channel. reason, if non-empty, is sent as the audit
// log reason.
func (c *Client) ModifyChannel(ctx context.Context, id discord.Snowflake, data ModifyChannelData, reason string) (*discord.Channel, error) {
	var ch discord.Channel
	err := c.do(ctx, request{
		method:      "PATCH",
		path:        channelRoute(id),
		body:        data,
		auditReason: reason,
	}, &ch)
	return &ch, err
}

// DeleteChannel deletes a channel or closes a DM.
func (c *Client) DeleteChannel(ctx context.Context, id discord.Snowflake, reason string) error {
	return c.do(ctx, request{
		method:      "DELETE",
		path:        channelRoute(id),
		auditReason: reason,
	}, nil)
}

package api

import (
	"context"

	"github.com/riftcord/corebot/discord"
)

func webhookRoute(id discord.Snowflake, token string) string {
	return "/webhooks/" + id.String() + "/" + token
}

// ExecuteWebhookData is the JSON body for POST .../webhooks/{id}/{token}.
type ExecuteWebhookData struct {
	Content   string `json:"content,omitempty"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ExecuteWebhook posts a message through a webhook. wait, if true, asks the
// platform to return the created message rather than an empty 204.
func (c *Client) ExecuteWebhook(ctx context.Context, id discord.Snowflake, token string, data ExecuteWebhookData, wait bool) (*discord.Message, error) {
	var query struct {
		Wait bool `schema:"wait,omitempty"`
	}
	query.Wait = wait

	var msg discord.Message
	err := c.do(ctx, request{
		method: "POST",
		path:   webhookRoute(id, token),
		query:  query,
		body:   data,
	}, &msg)
	if !wait {
		return nil, err
	}
	return &msg, err
}

// Webhook fetches a webhook by ID and token, without requiring bot auth.
func (c *Client) Webhook(ctx context.Context, id discord.Snowflake, token string) (*discord.Webhook, error) {
	var wh discord.Webhook
	err := c.do(ctx, request{
		method: "GET",
		path:   webhookRoute(id, token),
	}, &wh)
	return &wh, err
}

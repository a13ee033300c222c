package api

import (
	"context"
	"time"

	"github.com/riftcord/corebot/gateway/shard"
)

// gatewayBotResponse mirrors the wire shape of GET /gateway/bot.
type gatewayBotResponse struct {
	URL               string `json:"url"`
	Shards            int    `json:"shards"`
	SessionStartLimit struct {
		Total          int `json:"total"`
		Remaining      int `json:"remaining"`
		ResetAfter     int `json:"reset_after"`
		MaxConcurrency int `json:"max_concurrency"`
	} `json:"session_start_limit"`
}

// BotGateway fetches the recommended shard count, websocket URL, and
// session start limit for this client's token. It satisfies
// shard.GatewayInfoFetcher, so a *Client can be handed directly to
// shard.NewManager.
func (c *Client) BotGateway(ctx context.Context) (shard.BotGatewayInfo, error) {
	var resp gatewayBotResponse
	if err := c.do(ctx, request{
		method: "GET",
		path:   "/gateway/bot",
	}, &resp); err != nil {
		return shard.BotGatewayInfo{}, err
	}

	return shard.BotGatewayInfo{
		URL:               resp.URL,
		RecommendedShards: resp.Shards,
		SessionStartLimit: shard.SessionStartLimit{
			Total:          resp.SessionStartLimit.Total,
			Remaining:      resp.SessionStartLimit.Remaining,
			ResetAfter:     time.Duration(resp.SessionStartLimit.ResetAfter) * time.Millisecond,
			MaxConcurrency: resp.SessionStartLimit.MaxConcurrency,
		},
	}, nil
}

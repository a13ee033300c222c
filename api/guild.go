package api

import (
	"context"

	"github.com/riftcord/corebot/discord"
)

func guildRoute(id discord.Snowflake) string { return "/guilds/" + id.String() }

// Guild fetches a guild by ID.
func (c *Client) Guild(ctx context.Context, id discord.Snowflake) (*discord.Guild, error) {
	var g discord.Guild
	err := c.do(ctx, request{
		method: "GET",
		path:   guildRoute(id),
	}, &g)
	return &g, err
}

// Roles lists every role defined in a guild.
func (c *Client) Roles(ctx context.Context, guildID discord.Snowflake) ([]discord.Role, error) {
	var roles []discord.Role
	err := c.do(ctx, request{
		method: "GET",
		path:   guildRoute(guildID) + "/roles",
	}, &roles)
	return roles, err
}

package api

import (
	"context"

	"github.com/riftcord/corebot/discord"
)

func roleRoute(guildID, roleID discord.Snowflake) string {
	return guildRoute(guildID) + "/roles/" + roleID.String()
}

// CreateRoleData is the JSON body for POST .../roles.
type CreateRoleData struct {
	Name        string `json:"name,omitempty"`
	Color       int    `json:"color,omitempty"`
	Mentionable bool   `json:"mentionable,omitempty"`
}

// CreateRole creates a new role in a guild.
func (c *Client) CreateRole(ctx context.Context, guildID discord.Snowflake, data CreateRoleData, reason string) (*discord.Role, error) {
	var role discord.Role
	err := c.do(ctx, request{
		method:      "POST",
		path:        guildRoute(guildID) + "/roles",
		body:        data,
		auditReason: reason,
	}, &role)
	return &role, err
}

// ModifyRoleData is the JSON body for PATCH .../roles/{role.id}.
type ModifyRoleData struct {
	Name        string `json:"name,omitempty"`
	Color       *int   `json:"color,omitempty"`
	Mentionable *bool  `json:"mentionable,omitempty"`
}

// ModifyRole edits a role.
func (c *Client) ModifyRole(ctx context.Context, guildID, roleID discord.Snowflake, data ModifyRoleData, reason string) (*discord.Role, error) {
	var role discord.Role
	err := c.do(ctx, request{
		method:      "PATCH",
		path:        roleRoute(guildID, roleID),
		body:        data,
		auditReason: reason,
	}, &role)
	return &role, err
}

// DeleteRole deletes a role.
func (c *Client) DeleteRole(ctx context.Context, guildID, roleID discord.Snowflake, reason string) error {
	return c.do(ctx, request{
		method:      "DELETE",
		path:        roleRoute(guildID, roleID),
		auditReason: reason,
	}, nil)
}

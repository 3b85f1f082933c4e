package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// PermissionInput grants a permission node to a staff member.
type PermissionInput struct {
	Username   string     `json:"username" validate:"required,max=64"`
	Permission string     `json:"permission" validate:"required,max=128"`
	Server     GameServer `json:"server" validate:"required,oneof=anarxiya survival boxpvp"`
}

// ListStaff returns the staff accounts of a game server.
func (c *Client) ListStaff(ctx context.Context, server GameServer) ([]StaffMember, error) {
	var members []StaffMember
	query := url.Values{"server": []string{string(server)}}
	if err := c.get(ctx, "/api/staff", query, &members); err != nil {
		return withFallback(ctx, c, "ListStaff", err, func(p DataProvider) ([]StaffMember, error) {
			return p.Staff(ctx, server)
		})
	}
	return members, nil
}

// ActivityLogs returns the staff audit log, newest first.
func (c *Client) ActivityLogs(ctx context.Context) ([]ActivityLog, error) {
	var logs []ActivityLog
	if err := c.get(ctx, "/api/staff/logs", nil, &logs); err != nil {
		return withFallback(ctx, c, "ActivityLogs", err, func(p DataProvider) ([]ActivityLog, error) {
			return p.ActivityLogs(ctx)
		})
	}
	return logs, nil
}

// AddPermission grants a permission node to a staff member.
func (c *Client) AddPermission(ctx context.Context, input PermissionInput) error {
	input.Permission = strings.TrimSpace(input.Permission)
	if err := c.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid permission: %w", err)
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/staff/permissions", input, nil)
}

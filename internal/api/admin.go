package api

import (
	"context"
	"net/http"
	"strconv"

	greenhouse "greenhouse_console"
)

func adminUserPath(id int, suffix string) string {
	return "/admin/users/" + strconv.Itoa(id) + suffix
}

// ListUsers returns every registered account.
func (c *Client) ListUsers(ctx context.Context) ([]greenhouse.User, error) {
	var out envelope[[]greenhouse.User]
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListOnlineUsers returns currently connected operators.
func (c *Client) ListOnlineUsers(ctx context.Context) ([]greenhouse.OnlineUser, error) {
	var out envelope[[]greenhouse.OnlineUser]
	if err := c.do(ctx, http.MethodGet, "/admin/users/online", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, adminUserPath(id, ""), nil, nil)
}

// SetBanned bans or unbans an account.
func (c *Client) SetBanned(ctx context.Context, id int, banned bool) error {
	return c.do(ctx, http.MethodPut, adminUserPath(id, "/ban"), map[string]bool{"banned": banned}, nil)
}

// SetRestricted restricts or unrestricts an account.
func (c *Client) SetRestricted(ctx context.Context, id int, restricted bool) error {
	return c.do(ctx, http.MethodPut, adminUserPath(id, "/restrict"), map[string]bool{"restricted": restricted}, nil)
}

// Promote raises an account to admin.
func (c *Client) Promote(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, adminUserPath(id, "/promote"), nil, nil)
}

// Demote lowers an admin back to a regular user.
func (c *Client) Demote(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, adminUserPath(id, "/demote"), nil, nil)
}

// GetActivity24h returns the last day of the operator activity log.
func (c *Client) GetActivity24h(ctx context.Context) ([]greenhouse.ActivityEntry, error) {
	var out envelope[[]greenhouse.ActivityEntry]
	if err := c.do(ctx, http.MethodGet, "/admin/activity/24h", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListPendingPasswordRequests returns unreviewed forgot-password tickets.
func (c *Client) ListPendingPasswordRequests(ctx context.Context) ([]greenhouse.PasswordRequest, error) {
	var out envelope[[]greenhouse.PasswordRequest]
	if err := c.do(ctx, http.MethodGet, "/admin/forgot-password/pending", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ApprovePasswordRequest resolves a ticket by assigning a new password.
func (c *Client) ApprovePasswordRequest(ctx context.Context, id int, newPassword string) error {
	path := "/admin/forgot-password/" + strconv.Itoa(id) + "/approve"
	return c.do(ctx, http.MethodPost, path, map[string]string{"newPassword": newPassword}, nil)
}

// RejectPasswordRequest dismisses a ticket.
func (c *Client) RejectPasswordRequest(ctx context.Context, id int) error {
	path := "/admin/forgot-password/" + strconv.Itoa(id) + "/reject"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// ListAlerts returns the server's alert history.
func (c *Client) ListAlerts(ctx context.Context) ([]greenhouse.Alert, error) {
	var out envelope[[]greenhouse.Alert]
	if err := c.do(ctx, http.MethodGet, "/admin/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AcknowledgeAlert marks one alert as seen.
func (c *Client) AcknowledgeAlert(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, "/admin/alerts/"+strconv.Itoa(id)+"/acknowledge", nil, nil)
}

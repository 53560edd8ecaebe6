package api

import (
	"context"
	"net/http"
)

// UpdateUsername renames the current account.
func (c *Client) UpdateUsername(ctx context.Context, newUsername string) error {
	return c.do(ctx, http.MethodPut, "/settings/username", map[string]string{"newUsername": newUsername}, nil)
}

// UpdateTheme stores the theme preference server-side.
func (c *Client) UpdateTheme(ctx context.Context, theme string) error {
	return c.do(ctx, http.MethodPut, "/settings/theme", map[string]string{"theme": theme}, nil)
}

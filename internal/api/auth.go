package api

import (
	"context"
	"net/http"

	greenhouse "greenhouse_console"
)

// sessionResponse is the body of a successful login or registration.
type sessionResponse struct {
	Token   string           `json:"token"`
	User    *greenhouse.User `json:"user"`
	Message string           `json:"message,omitempty"`
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, username, password string) (string, *greenhouse.User, error) {
	body := map[string]string{"username": username, "password": password}
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Register creates an account and returns the same payload as Login.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, *greenhouse.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Logout invalidates the session server-side. Callers clear local state
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// GetIdentity fetches the identity behind the current token.
func (c *Client) GetIdentity(ctx context.Context) (*greenhouse.User, error) {
	var out envelope[*greenhouse.User]
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ForgotPassword files a password-reset ticket for admin review.
func (c *Client) ForgotPassword(ctx context.Context, username, message, rememberedPassword string) error {
	body := map[string]string{
		"username":           username,
		"message":            message,
		"rememberedPassword": rememberedPassword,
	}
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", body, nil)
}

// ChangePassword replaces the current password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/auth/change-password", body, nil)
}

package api

import (
	"context"
	"net/http"
)

// ControlRequest is one actuator command. PWM is only meaningful for the
// two PWM-capable actuators and stays nil otherwise.
type ControlRequest struct {
	Actuator string `json:"actuator"`
	State    bool   `json:"state"`
	PWM      *int   `json:"pwm,omitempty"` // 0..255
}

// Control issues a manual actuator command. The server treats any such
// command as an implicit request to enter manual override.
func (c *Client) Control(ctx context.Context, req ControlRequest) error {
	return c.do(ctx, http.MethodPost, "/manual/control", req, nil)
}

// ResumeAutomatic hands control back to the server's automation loop.
func (c *Client) ResumeAutomatic(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/manual/auto", nil, nil)
}

package api

import (
	"context"
	"net/http"

	greenhouse "greenhouse_console"
)

// GetThresholds pulls the confirmed automation thresholds.
func (c *Client) GetThresholds(ctx context.Context) (*greenhouse.ThresholdSet, error) {
	var out envelope[*greenhouse.ThresholdSet]
	if err := c.do(ctx, http.MethodGet, "/thresholds", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UpdateThresholds sends a partial or full field set. The server validates
// ranges; out-of-range values come back as a ServerRejection.
func (c *Client) UpdateThresholds(ctx context.Context, fields map[string]float64) error {
	return c.do(ctx, http.MethodPut, "/thresholds", fields, nil)
}

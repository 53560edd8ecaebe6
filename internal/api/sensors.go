package api

import (
	"context"
	"net/http"

	greenhouse "greenhouse_console"
)

// GetLatest pulls the most recent full reading.
func (c *Client) GetLatest(ctx context.Context) (*greenhouse.EnvironmentReading, error) {
	var out envelope[*greenhouse.EnvironmentReading]
	if err := c.do(ctx, http.MethodGet, "/sensors/latest", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Get24Hours pulls the rolling 24-hour history series.
func (c *Client) Get24Hours(ctx context.Context) ([]greenhouse.EnvironmentReading, error) {
	var out envelope[[]greenhouse.EnvironmentReading]
	if err := c.do(ctx, http.MethodGet, "/sensors/24h", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetByDate pulls the series for one calendar date (YYYY-MM-DD).
func (c *Client) GetByDate(ctx context.Context, date string) ([]greenhouse.EnvironmentReading, error) {
	var out envelope[[]greenhouse.EnvironmentReading]
	if err := c.do(ctx, http.MethodGet, "/sensors/date/"+date, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetEvents24h pulls the last day of automation events.
func (c *Client) GetEvents24h(ctx context.Context) ([]greenhouse.SensorEvent, error) {
	var out envelope[[]greenhouse.SensorEvent]
	if err := c.do(ctx, http.MethodGet, "/sensors/events/24h", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ExportSpreadsheet downloads the spreadsheet export for a date as raw bytes.
func (c *Client) ExportSpreadsheet(ctx context.Context, date string) ([]byte, error) {
	var rejection serverError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("date", date).
		SetError(&rejection).
		Get("/sensors/export/excel")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if err := c.checkStatus(resp, rejection); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

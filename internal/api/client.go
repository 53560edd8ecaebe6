package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"greenhouse_console/internal/logger"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// Endpoints that carry credentials in the body instead of a token. A 401
// from one of these is a failed attempt, not an expired session, so the
// global forced-logout hook must not fire for them.
var credentialPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
}

// Config wires the client to its collaborators. Token is read per request;
// OnUnauthorized is the cross-cutting forced-logout hook fired on any 401
// observed outside a credential endpoint.
type Config struct {
	BaseURL        string
	Token          func() string
	OnUnauthorized func()
}

// Client is the REST surface of the greenhouse backend.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// envelope matches the server's {"data": ...} response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// serverError matches the server's {"error": "..."} failure body.
type serverError struct {
	Error string `json:"error"`
}

// NewClient builds a REST client. The 401 hook fires at most once per
// response and never for credential endpoints.
func NewClient(cfg Config, log *logger.Logger) *Client {
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")

	hc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if cfg.Token != nil {
			if tok := cfg.Token(); tok != "" {
				req.SetHeader("Authorization", "Bearer "+tok)
			}
		}
		return nil
	})

	hc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() != http.StatusUnauthorized || cfg.OnUnauthorized == nil {
			return nil
		}
		if isCredentialPath(resp.Request.RawRequest.URL.Path) {
			return nil
		}
		if log != nil {
			log.Infow("unauthorized_response", "path", resp.Request.RawRequest.URL.Path)
		}
		cfg.OnUnauthorized()
		return nil
	})

	return &Client{http: hc, log: log}
}

func isCredentialPath(path string) bool {
	for _, p := range credentialPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// do executes one request and maps failures onto the error taxonomy.
// out, when non-nil, receives the decoded success body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	var rejection serverError
	req.SetError(&rejection)

	resp, err := req.Execute(method, path)
	if err != nil {
		return &NetworkError{Err: err}
	}
	return c.checkStatus(resp, rejection)
}

func (c *Client) checkStatus(resp *resty.Response, rejection serverError) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return &AuthError{Reason: rejection.Error}
	}
	return &ServerRejection{Status: resp.StatusCode(), Message: rejection.Error}
}

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"placemail/config"
	"placemail/utils"
)

// Client talks to the placement backend REST API. The backend owns all
// durable state (templates, send logs, companies, users); this client is the
// only path anything in the console takes to reach it.
//
// A Client is constructed once at startup with an injected http.Client and
// bound to a session credential per request via WithCredential.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookieName string
	credential string
	logger     *utils.Logger
}

// NewClient creates a backend client. httpClient may be nil, in which case a
// default client with the configured timeout is used.
func NewClient(cfg *config.Config, httpClient *http.Client, logger *utils.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.BackendTimeout()}
	}
	if logger == nil {
		logger = utils.Log
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient: httpClient,
		cookieName: cfg.Backend.CookieName,
		logger:     logger,
	}
}

// WithCredential returns a shallow copy of the client bound to the given
// session credential. Every backend call carries it as the session cookie.
func (c *Client) WithCredential(credential string) *Client {
	bound := *c
	bound.credential = credential
	return &bound
}

// APIError is a failure reported by the backend or the transport in front of
// it. Status is zero when the call never produced an HTTP response. Message
// holds the server-provided error string when one was present; callers fall
// back to a generic message when it is empty.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("backend request failed: %v", e.Err)
	default:
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope the backend uses on failure responses.
type errorBody struct {
	Error string `json:"error"`
}

// do issues one request and decodes a JSON success body into out (out may be
// nil). Non-2xx responses are decoded for their {error} message and returned
// as *APIError; absence of the field leaves Message empty.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Err: fmt.Errorf("build request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.credential != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.credential})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend call failed: %s %s: %v", method, path, err)
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(data, &eb)
		c.logger.Error("Backend call failed: %s %s: status %d", method, path, resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// get is a convenience wrapper for credentialed JSON GETs.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// delete is a convenience wrapper for credentialed DELETEs.
func (c *Client) delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

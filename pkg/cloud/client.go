package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/observability"
)

// authErrorMarkers are the stable substrings the server (and the hosted
// original) uses for credential failures. Any error body containing one
// of them is treated as session expiry rather than a generic failure.
var authErrorMarkers = []string{"JWT expired", "Unauthorized", "Invalid token"}

// MatchAuthError reports whether an error message carries an
// authorization-class marker.
func MatchAuthError(msg string) bool {
	for _, marker := range authErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Client is the HTTP client for the cloud map store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given API base URL. token may be
// empty for auth-only use (login/signup).
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// errorBody is the JSON error envelope used by every server endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// ==========================================================================
// Auth endpoints
// ==========================================================================

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/login", email, password)
}

// Signup creates an account. HasSession may be false when the account
// requires confirmation before first login.
func (c *Client) Signup(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/signup", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (AuthResult, error) {
	var result AuthResult
	resp, err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password})
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return result, errors.New(errors.ErrCodeUnauthorized, "%s", readErrorMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, err, "decode auth response")
	}
	return result, nil
}

// Logout invalidates the current token server-side. Best effort: the
// local session is removed regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ==========================================================================
// Map store endpoints
// ==========================================================================

// ListMaps fetches the user's complete remote collection, most recent
// first (server orders by creation time descending).
func (c *Client) ListMaps(ctx context.Context) ([]concept.MapRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/maps", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload struct {
		Maps []mapRow `json:"maps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode map list")
	}
	records := make([]concept.MapRecord, len(payload.Maps))
	for i, row := range payload.Maps {
		records[i] = row.toRecord()
	}
	return records, nil
}

// InsertMap pushes one record to the remote store.
func (c *Client) InsertMap(ctx context.Context, rec concept.MapRecord) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/maps", rowFromRecord(rec))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// DeleteMap removes the remote row whose title matches the prompt.
// Prompt collisions are resolved first-match-wins.
func (c *Client) DeleteMap(ctx context.Context, prompt string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/maps?title="+url.QueryEscape(prompt), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// DeleteAllMaps wipes the user's remote collection.
func (c *Client) DeleteAllMaps(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/maps", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

var _ Store = (*Client)(nil)

// ==========================================================================
// Internals
// ==========================================================================

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	observability.Cloud().OnRequest(ctx, method, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.Cloud().OnError(ctx, method, path, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to cloud store")
	}
	observability.Cloud().OnResponse(ctx, method, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// checkStatus maps map-store responses onto the error taxonomy:
// authorization failures become session-expired, everything else
// non-2xx becomes a generic network-class error the caller may retry by
// re-triggering the action.
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeSessionExpired, "%s", readErrorMessage(resp))
	default:
		msg := readErrorMessage(resp)
		if MatchAuthError(msg) {
			return errors.New(errors.ErrCodeSessionExpired, "%s", msg)
		}
		return errors.New(errors.ErrCodeNetwork, "%s", msg)
	}
}

func readErrorMessage(resp *http.Response) string {
	var body errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("unexpected status %d", resp.StatusCode)
}

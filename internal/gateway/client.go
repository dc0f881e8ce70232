// Package gateway is the single path for outbound calls to the User Management
// API. It injects the session's bearer token, logs every failed response and
// normalizes response shapes before they reach the views.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayush/user-management/web/internal/models"
)

// Session is the slice of the session manager the client needs.
type Session interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	SetUser(ctx context.Context, profile models.Profile) error
}

// Client calls the User Management API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a client for baseURL. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Register calls POST /Auth/Register and stores the returned token and user in sess.
func (c *Client) Register(ctx context.Context, sess Session, req models.RegisterRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, sess, "/Auth/Register", req)
}

// Login calls POST /Auth/Authentication and stores the returned token and user in sess.
func (c *Client) Login(ctx context.Context, sess Session, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, sess, "/Auth/Authentication", req)
}

func (c *Client) authenticate(ctx context.Context, sess Session, path string, body any) (*models.AuthResponse, error) {
	raw, err := c.do(ctx, sess, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var wire struct {
		Token string    `json:"token"`
		User  *wireUser `json:"user"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", path, err)
		}
	}
	out := &models.AuthResponse{Token: wire.Token}
	if wire.Token != "" {
		if err := sess.SetToken(ctx, wire.Token); err != nil {
			return nil, err
		}
	}
	if wire.User != nil {
		profile := wire.User.profile()
		if err := sess.SetUser(ctx, profile); err != nil {
			return nil, err
		}
		out.User = &profile
	}
	return out, nil
}

// ListSports calls GET /Sport/GetAllSports.
func (c *Client) ListSports(ctx context.Context, sess Session) ([]models.Sport, error) {
	raw, err := c.do(ctx, sess, http.MethodGet, "/Sport/GetAllSports", nil)
	if err != nil {
		return nil, err
	}
	var wire []wireSport
	if !c.decodeList(raw, "/Sport/GetAllSports", &wire) {
		return []models.Sport{}, nil
	}
	out := make([]models.Sport, 0, len(wire))
	for _, s := range wire {
		out = append(out, models.Sport{ID: s.ID.String(), Name: s.Name})
	}
	return out, nil
}

// ListUsers calls GET /User/GetUsersList. An absent or malformed body is an
// empty list.
func (c *Client) ListUsers(ctx context.Context, sess Session) ([]models.UserSummary, error) {
	raw, err := c.do(ctx, sess, http.MethodGet, "/User/GetUsersList", nil)
	if err != nil {
		return nil, err
	}
	var wire []wireUser
	if !c.decodeList(raw, "/User/GetUsersList", &wire) {
		return []models.UserSummary{}, nil
	}
	out := make([]models.UserSummary, 0, len(wire))
	for _, u := range wire {
		out = append(out, models.UserSummary{ID: u.id(), Name: u.Name})
	}
	return out, nil
}

// GetUserProfile calls GET /User/getuserprofile/{userID}. A null body yields nil.
func (c *Client) GetUserProfile(ctx context.Context, sess Session, userID string) (*models.UserDetail, error) {
	path := "/User/getuserprofile/" + url.PathEscape(userID)
	raw, err := c.do(ctx, sess, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var wire wireUser
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		c.logger.Warn("malformed user profile", "path", path, "error", err)
		return nil, nil
	}
	detail := wire.detail()
	return &detail, nil
}

func (c *Client) decodeList(raw []byte, path string, into any) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	if err := json.Unmarshal(trimmed, into); err != nil {
		c.logger.Warn("malformed list response", "path", path, "error", err)
		return false
	}
	return true
}

// do sends one request and returns the body of a 2xx response. Anything else is
// logged and returned as *APIError (HTTP failure) or a wrapped transport error.
func (c *Client) do(ctx context.Context, sess Session, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req, sess); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API error", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("API error", "method", method, "path", path, "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if err := checkResp(resp.StatusCode, raw); err != nil {
		c.logger.Warn("API error", "method", method, "path", path, "status", resp.StatusCode, "body", string(raw))
		return nil, err
	}
	return raw, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request, sess Session) error {
	if sess == nil {
		return nil
	}
	token, err := sess.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

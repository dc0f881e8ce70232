package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/user-management/web/internal/models"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// Store is the key-value surface sessions are persisted in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes all keys in a single operation.
	Delete(ctx context.Context, keys ...string) error
}

// Sessions issues and resolves visitor sessions keyed by the session cookie.
type Sessions struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

func NewSessions(store Store, ttl time.Duration, secureCookie bool, logger *slog.Logger) *Sessions {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &Sessions{store: store, ttl: ttl, secure: secureCookie, logger: logger}
}

// Lookup returns the session named by the request cookie, or nil if there is none.
func (s *Sessions) Lookup(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil
	}
	return s.session(cookie.Value)
}

// Start returns the request's session, creating one and setting its cookie if needed.
func (s *Sessions) Start(w http.ResponseWriter, r *http.Request) *Session {
	if sess := s.Lookup(r); sess != nil {
		return sess
	}
	return s.issue(w)
}

// Renew drops whatever the request's session held and issues a fresh id and
// cookie. Called before credentials are stored so a planted cookie never
// becomes authenticated.
func (s *Sessions) Renew(w http.ResponseWriter, r *http.Request) *Session {
	if old := s.Lookup(r); old != nil {
		if err := s.store.Delete(r.Context(), old.key("token"), old.key("user"), old.key("flash")); err != nil {
			s.logger.Warn("discard previous session", "session", old.id, "error", err)
		}
	}
	return s.issue(w)
}

func (s *Sessions) issue(w http.ResponseWriter) *Session {
	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
	return s.session(sid)
}

func (s *Sessions) session(id string) *Session {
	return &Session{id: id, store: s.store, ttl: s.ttl, logger: s.logger}
}

// Session owns the bearer token and cached profile of one visitor. It is the only
// writer of those keys.
type Session struct {
	id     string
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewSession binds a session id to a store directly, without a cookie.
func NewSession(id string, store Store, ttl time.Duration, logger *slog.Logger) *Session {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &Session{id: id, store: store, ttl: ttl, logger: logger}
}

func (s *Session) ID() string { return s.id }

func (s *Session) key(name string) string {
	return "session:" + s.id + ":" + name
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, s.key("token"), token, s.ttl); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Token returns the persisted bearer token, or "" when there is none.
func (s *Session) Token(ctx context.Context) (string, error) {
	val, _, err := s.store.Get(ctx, s.key("token"))
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return val, nil
}

func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, s.key("token"))
}

func (s *Session) SetUser(ctx context.Context, profile models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, s.key("user"), string(raw), s.ttl); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// User returns the cached profile, or nil when none is stored. A value that no
// longer decodes is treated as absent.
func (s *Session) User(ctx context.Context) (*models.Profile, error) {
	raw, ok, err := s.store.Get(ctx, s.key("user"))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("discarding unreadable cached user", "session", s.id, "error", err)
		return nil, nil
	}
	return &profile, nil
}

func (s *Session) ClearUser(ctx context.Context) error {
	return s.store.Delete(ctx, s.key("user"))
}

// IsAuthenticated holds iff a non-empty token is stored. Token expiry is not
// checked; the API rejects stale tokens.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Error("session lookup failed", "session", s.id, "error", err)
		return false
	}
	return token != ""
}

// Logout drops token and user together.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key("token"), s.key("user")); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

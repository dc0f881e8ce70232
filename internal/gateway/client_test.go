package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ayush/user-management/web/internal/models"
)

var testSecret = []byte("test-secret")

type memSession struct {
	mu    sync.Mutex
	token string
	user  *models.Profile
}

func (s *memSession) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memSession) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memSession) SetUser(_ context.Context, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &p
	return nil
}

func issueToken(t *testing.T, email string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func bearerValid(r *http.Request) bool {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return testSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && tok.Valid
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// fakeAPI mimics the User Management API closely enough for the client.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/Auth/Authentication", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad body"}`)
			return
		}
		if req.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"token": issueToken(t, req.Email),
			"user":  map[string]any{"userId": 42, "name": "Alice", "email": req.Email},
		})
		writeJSON(w, http.StatusOK, string(body))
	})
	r.Post("/api/Auth/Register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.SportID == 0 {
			writeJSON(w, http.StatusBadRequest, `{"errors":{"SportID":["Sport is required"]}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"token":"abc","user":{"id":"9","name":"Bob"}}`)
	})
	r.Get("/api/Sport/GetAllSports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"Football"},{"id":"2","name":"Tennis"}]`)
	})
	r.Get("/api/User/GetUsersList", func(w http.ResponseWriter, r *http.Request) {
		if !bearerValid(r) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"Alice"},{"userId":"2","name":"Bob"},{"useridId":3,"name":"Carol"},{"name":"Ghost"}]`)
	})
	r.Get("/api/User/getuserprofile/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "id") {
		case "1":
			writeJSON(w, http.StatusOK, `{"userId":1,"name":"Alice","email":"alice@example.com","mobile":"5551234567","role":"admin"}`)
		case "404":
			writeJSON(w, http.StatusNotFound, `{"message":"User not found"}`)
		default:
			writeJSON(w, http.StatusOK, `null`)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return New(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoginPersistsSession(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(srv.URL + "/api/")
	sess := &memSession{}

	resp, err := c.Login(context.Background(), sess, models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || sess.token != resp.Token {
		t.Fatalf("expected token persisted, got %q / %q", resp.Token, sess.token)
	}
	if sess.user == nil || sess.user.ID != "42" || sess.user.Name != "Alice" {
		t.Fatalf("expected profile with id 42, got %+v", sess.user)
	}
}

func TestLoginFailureCarriesMessage(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(srv.URL + "/api")
	sess := &memSession{}

	_, err := c.Login(context.Background(), sess, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if got := MessageOr(err, "fallback"); got != "Invalid credentials" {
		t.Fatalf("expected server message, got %q", got)
	}
	if sess.token != "" {
		t.Fatalf("failed login must not store a token")
	}
}

func TestRegisterFieldErrors(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(srv.URL + "/api")

	_, err := c.Register(context.Background(), &memSession{}, models.RegisterRequest{Name: "Bob"})
	fields := FieldErrors(err)
	if len(fields["SportID"]) != 1 {
		t.Fatalf("expected SportID field error, got %v (%v)", fields, err)
	}
	if got := MessageOr(err, "Registration failed. Please try again."); got != "Registration failed. Please try again." {
		t.Fatalf("expected fallback, got %q", got)
	}

	sess := &memSession{}
	if _, err := c.Register(context.Background(), sess, models.RegisterRequest{Name: "Bob", SportID: 2}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.token != "abc" || sess.user == nil || sess.user.ID != "9" {
		t.Fatalf("expected session populated, got %q %+v", sess.token, sess.user)
	}
}

func TestBearerInjection(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(srv.URL + "/api")
	ctx := context.Background()

	if _, err := c.ListUsers(ctx, &memSession{}); err == nil {
		t.Fatalf("expected 401 without a token")
	}
	sess := &memSession{token: issueToken(t, "alice@example.com")}
	users, err := c.ListUsers(ctx, sess)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	want := []models.UserSummary{{ID: "1", Name: "Alice"}, {ID: "2", Name: "Bob"}, {ID: "3", Name: "Carol"}, {ID: "", Name: "Ghost"}}
	if len(users) != len(want) {
		t.Fatalf("expected %d users, got %v", len(want), users)
	}
	for i := range want {
		if users[i] != want[i] {
			t.Fatalf("row %d: expected %+v got %+v", i, want[i], users[i])
		}
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("Authorization")
		writeJSON(w, http.StatusOK, `[]`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).ListSports(context.Background(), &memSession{}); err != nil {
		t.Fatalf("list sports: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no Authorization header, got %v", got)
	}
}

func TestListSportsMixedIDs(t *testing.T) {
	srv := fakeAPI(t)
	sports, err := newTestClient(srv.URL+"/api").ListSports(context.Background(), &memSession{})
	if err != nil {
		t.Fatalf("list sports: %v", err)
	}
	if len(sports) != 2 || sports[0].ID != "1" || sports[1].ID != "2" {
		t.Fatalf("unexpected sports %v", sports)
	}
}

func TestEmptyAndMalformedLists(t *testing.T) {
	for _, body := range []string{``, `null`, `{"oops":true}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		}))
		users, err := newTestClient(srv.URL).ListUsers(context.Background(), &memSession{})
		srv.Close()
		if err != nil {
			t.Fatalf("body %q: unexpected error %v", body, err)
		}
		if users == nil || len(users) != 0 {
			t.Fatalf("body %q: expected empty slice, got %#v", body, users)
		}
	}
}

func TestGetUserProfile(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(srv.URL + "/api")
	sess := &memSession{token: issueToken(t, "alice@example.com")}
	ctx := context.Background()

	detail, err := c.GetUserProfile(ctx, sess, "1")
	if err != nil || detail == nil {
		t.Fatalf("expected detail, got %v (%v)", detail, err)
	}
	if detail.ID != "1" || detail.Email != "alice@example.com" || detail.Role != "admin" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	detail, err = c.GetUserProfile(ctx, sess, "77")
	if err != nil || detail != nil {
		t.Fatalf("null body should yield nil, got %+v (%v)", detail, err)
	}

	if _, err := c.GetUserProfile(ctx, sess, "404"); MessageOr(err, "") != "User not found" {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).ListSports(context.Background(), &memSession{})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure should not be an APIError")
	}
	if got := MessageOr(err, "Failed to fetch sports list"); got != "Failed to fetch sports list" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := c.ListUsers(context.Background(), &memSession{}); err == nil {
		t.Fatalf("expected timeout error")
	}
}

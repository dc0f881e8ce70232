package middleware

import (
	"net/http"

	"github.com/ayush/user-management/web/internal/auth"
)

// RequireAuth is middleware that resolves the visitor's session and injects it
// into the request context. Visitors without a token are sent to /login.
func RequireAuth(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessions.Lookup(r)
			if sess == nil || !sess.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			ctx := auth.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/user-management/web/internal/auth"
	"github.com/ayush/user-management/web/internal/middleware"
	"github.com/ayush/user-management/web/internal/users"
	"github.com/ayush/user-management/web/internal/web"
)

// Deps are the handlers and collaborators the router is built from.
type Deps struct {
	Sessions    *auth.Sessions
	Auth        *auth.Handler
	Users       *users.Handler
	CORSOrigins []string
}

// Router wires middleware and routes.
func Router(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/static/*", web.Static())

	r.Get("/", d.Auth.RegisterForm)
	r.Post("/", d.Auth.Register)
	r.Post("/validate/{field}", d.Auth.ValidateField)
	r.Get("/login", d.Auth.LoginForm)
	r.Post("/login", d.Auth.Login)
	r.Post("/logout", d.Auth.Logout)

	r.With(middleware.RequireAuth(d.Sessions)).Get("/home", d.Users.Home)

	return r
}

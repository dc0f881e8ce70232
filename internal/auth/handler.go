package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/user-management/web/internal/gateway"
	"github.com/ayush/user-management/web/internal/models"
	"github.com/ayush/user-management/web/internal/validation"
	"github.com/ayush/user-management/web/internal/web"
)

// API is the part of the gateway client the auth views call.
type API interface {
	Register(ctx context.Context, sess gateway.Session, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, sess gateway.Session, req models.LoginRequest) (*models.AuthResponse, error)
	ListSports(ctx context.Context, sess gateway.Session) ([]models.Sport, error)
}

// Delays before the browser leaves a success page.
type Delays struct {
	Login    time.Duration
	Register time.Duration
}

// Handler holds the register, login and logout views.
type Handler struct {
	api      API
	sessions *Sessions
	rules    *validation.Validator
	views    *web.Renderer
	delays   Delays
	logger   *slog.Logger
}

func NewHandler(api API, sessions *Sessions, rules *validation.Validator, views *web.Renderer, delays Delays, logger *slog.Logger) *Handler {
	return &Handler{api: api, sessions: sessions, rules: rules, views: views, delays: delays, logger: logger}
}

type formField struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Error       string
}

type registerView struct {
	Fields []formField
	Sports []models.Sport
}

type loginView struct {
	Form   models.LoginForm
	Errors validation.Errors
}

// RegisterForm shows the empty registration form.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Start(w, r)
	page := web.Page{Title: "Register", Flash: sess.PopFlash(r.Context())}
	h.renderRegister(w, r, sess, http.StatusOK, page, models.RegistrationForm{}, nil)
}

// Register validates and submits the registration form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		sess := h.sessions.Start(w, r)
		h.renderRegister(w, r, sess, http.StatusBadRequest, web.Page{Title: "Register", Flash: failure("Invalid form submission")}, models.RegistrationForm{}, nil)
		return
	}
	form := registrationForm(r)
	if errs := h.rules.Registration(form); !errs.Empty() {
		sess := h.sessions.Start(w, r)
		h.renderRegister(w, r, sess, http.StatusUnprocessableEntity, web.Page{Title: "Register"}, form, errs)
		return
	}

	sess := h.sessions.Renew(w, r)
	if _, err := h.api.Register(ctx, sess, form.Normalize()); err != nil {
		h.logger.Warn("registration failed", "email", form.Email, "error", err)
		errs := validation.Errors{}
		var flash *models.Flash
		if fieldErrs := gateway.FieldErrors(err); fieldErrs != nil {
			errs.MergeServer(fieldErrs)
			flash = failure("Please fix the form errors")
		} else {
			flash = failure(gateway.MessageOr(err, "Registration failed. Please try again."))
		}
		h.renderRegister(w, r, sess, http.StatusOK, web.Page{Title: "Register", Flash: flash}, form, errs)
		return
	}

	h.logger.Info("registration successful", "email", form.Email)
	h.views.Render(w, http.StatusOK, "redirect", web.Page{
		Title:    "Register",
		Flash:    success("Registration successful! Redirecting to login..."),
		Redirect: &web.Redirect{URL: "/login", Delay: h.delays.Register},
	})
}

// ValidateField checks one registration field as the visitor leaves it and
// returns the inline error fragment for that field.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	if !validation.IsRegistrationField(field) {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	msg := h.rules.RegistrationField(registrationForm(r), field)
	h.views.Fragment(w, http.StatusOK, "field-error", web.FieldError{Name: field, Message: msg})
}

// registrationForm reads the posted registration fields. Text inputs are
// trimmed here so the rules see the values that will be submitted; the
// password is kept as typed.
func registrationForm(r *http.Request) models.RegistrationForm {
	get := func(name string) string { return strings.TrimSpace(r.PostForm.Get(name)) }
	return models.RegistrationForm{
		Name:       get("name"),
		Email:      get("email"),
		Password:   r.PostForm.Get("password"),
		Role:       get("role"),
		Mobile:     get("mobile"),
		Dob:        get("dob"),
		SportID:    get("sportID"),
		MachineID:  get("machineId"),
		YearsOfExp: get("yearsOfExp"),
	}
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, sess *Session, status int, page web.Page, form models.RegistrationForm, errs validation.Errors) {
	sports, err := h.api.ListSports(r.Context(), sess)
	if err != nil {
		h.logger.Error("fetch sports", "error", err)
		sports = []models.Sport{}
		if page.Flash == nil {
			page.Flash = failure("Failed to fetch sports list")
		}
	}
	page.Data = registerView{
		Sports: sports,
		Fields: []formField{
			{Name: "name", Label: "User Name", Type: "text", Value: form.Name, Error: errs["name"]},
			{Name: "email", Label: "Email", Type: "email", Value: form.Email, Error: errs["email"]},
			// The password is never echoed back into the page.
			{Name: "password", Label: "Password", Type: "password", Error: errs["password"]},
			{Name: "role", Label: "Role", Type: "text", Value: form.Role, Placeholder: "Enter role", Error: errs["role"]},
			{Name: "mobile", Label: "Mobile Number", Type: "text", Value: form.Mobile, Placeholder: "e.g., 1234567890", Error: errs["mobile"]},
			{Name: "dob", Label: "Date of Birth", Type: "date", Value: form.Dob, Error: errs["dob"]},
			{Name: "sportID", Label: "Sports", Value: form.SportID, Error: errs["sportID"]},
			{Name: "machineId", Label: "Machine", Type: "text", Value: form.MachineID, Placeholder: "Machine ID or name", Error: errs["machineId"]},
			{Name: "yearsOfExp", Label: "Experience (years)", Type: "number", Value: form.YearsOfExp, Error: errs["yearsOfExp"]},
		},
	}
	h.views.Render(w, status, "register", page)
}

// LoginForm shows the login form.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Start(w, r)
	h.views.Render(w, http.StatusOK, "login", web.Page{
		Title: "Login",
		Flash: sess.PopFlash(r.Context()),
		Data:  loginView{Errors: validation.Errors{}},
	})
}

// Login validates the credentials, authenticates against the API and sends the
// visitor on to /home.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, "login", web.Page{Title: "Login", Flash: failure("Invalid form submission"), Data: loginView{Errors: validation.Errors{}}})
		return
	}
	form := models.LoginForm{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	if errs := h.rules.Login(form); !errs.Empty() {
		h.views.Render(w, http.StatusUnprocessableEntity, "login", web.Page{Title: "Login", Data: loginView{Form: models.LoginForm{Email: form.Email}, Errors: errs}})
		return
	}

	sess := h.sessions.Renew(w, r)
	if _, err := h.api.Login(ctx, sess, models.LoginRequest{Email: form.Email, Password: form.Password}); err != nil {
		h.logger.Warn("login failed", "email", form.Email, "error", err)
		errs := validation.Errors{}
		var flash *models.Flash
		if fieldErrs := gateway.FieldErrors(err); fieldErrs != nil {
			errs.MergeServer(fieldErrs)
			flash = failure("Please fix the form errors")
		} else {
			flash = failure(gateway.MessageOr(err, "Login failed. Please check your credentials."))
		}
		h.views.Render(w, http.StatusOK, "login", web.Page{Title: "Login", Flash: flash, Data: loginView{Form: models.LoginForm{Email: form.Email}, Errors: errs}})
		return
	}

	h.logger.Info("login successful", "email", form.Email)
	h.views.Render(w, http.StatusOK, "redirect", web.Page{
		Title:    "Login",
		Flash:    success("Login successful!"),
		Redirect: &web.Redirect{URL: "/home", Delay: h.delays.Login},
	})
}

// Logout drops the session's token and profile and returns to the login view.
// The session cookie stays so the notice survives the redirect.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := h.sessions.Start(w, r)
	if err := sess.Logout(ctx); err != nil {
		h.logger.Error("logout", "session", sess.ID(), "error", err)
	}
	if err := sess.SetFlash(ctx, Success("Logged out successfully")); err != nil {
		h.logger.Error("set flash", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func success(msg string) *models.Flash {
	f := Success(msg)
	return &f
}

func failure(msg string) *models.Flash {
	f := Failure(msg)
	return &f
}

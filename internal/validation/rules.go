// Package validation holds the client-side rules for the login and registration
// forms. Evaluation is pure: no network, no storage.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ayush/user-management/web/internal/models"
)

const dateLayout = "2006-01-02"

// Errors maps a form field name to the message of the first rule it violated.
type Errors map[string]string

// Empty reports whether no field failed.
func (e Errors) Empty() bool { return len(e) == 0 }

// MergeServer folds field errors reported by the API into e. Server keys are
// lower-cased on their first letter ("MachineId" -> "machineId") and multiple
// messages for one field are joined with a space.
func (e Errors) MergeServer(server map[string][]string) {
	for key, msgs := range server {
		if len(msgs) == 0 {
			continue
		}
		e[lowerFirst(key)] = strings.Join(msgs, " ")
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

var messages = map[string]string{
	"name.required":          "User name is required",
	"name.min":               "User name must be at least 3 characters",
	"email.required":         "Email is required",
	"email.email":            "Invalid email format",
	"password.required":      "Password is required",
	"password.min":           "Password must be at least 6 characters",
	"role.required":          "Role is required",
	"mobile.required":        "Mobile number is required",
	"mobile.number":          "Mobile number must contain only digits",
	"mobile.min":             "Mobile number must be at least 10 digits",
	"dob.required":           "Date of birth is required",
	"dob.datetime":           "Date of birth must be a valid date",
	"dob.notfuture":          "Date cannot be in the future",
	"sportID.required":       "Please select a sport",
	"machineId.required":     "Machine ID is required",
	"yearsOfExp.required":    "Experience is required",
	"yearsOfExp.numeric":     "Experience must be a number",
	"yearsOfExp.nonnegative": "Experience cannot be negative",
}

// Validator evaluates the form rules against a clock, so "today" is injectable.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New returns a Validator using now as the clock; nil means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration cannot fail for well-formed tags.
	_ = v.validate.RegisterValidation("notfuture", v.notFuture)
	_ = v.validate.RegisterValidation("nonnegative", nonNegative)
	return v
}

func (v *Validator) notFuture(fl validator.FieldLevel) bool {
	day, err := time.Parse(dateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !day.After(today)
}

func nonNegative(fl validator.FieldLevel) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
	return err == nil && n >= 0
}

// Registration validates every registration field.
func (v *Validator) Registration(form models.RegistrationForm) Errors {
	return v.run(form)
}

// RegistrationField validates a single registration field, as done when the
// visitor leaves that input. Returns "" when the field is valid.
func (v *Validator) RegistrationField(form models.RegistrationForm, field string) string {
	return v.run(form)[field]
}

// Login validates the login form. Password length is not checked here.
func (v *Validator) Login(form models.LoginForm) Errors {
	return v.run(form)
}

func (v *Validator) run(form any) Errors {
	out := Errors{}
	err := v.validate.Struct(form)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out[fe.Field()] = msg
	}
	return out
}

var registrationFields = map[string]bool{
	"name": true, "email": true, "password": true, "role": true, "mobile": true,
	"dob": true, "sportID": true, "machineId": true, "yearsOfExp": true,
}

// IsRegistrationField reports whether name is a field of the registration form.
func IsRegistrationField(name string) bool { return registrationFields[name] }

package models

import (
	"strconv"
	"strings"
	"time"
)

// RegistrationForm holds the registration fields exactly as typed.
type RegistrationForm struct {
	Name       string `form:"name" validate:"required,min=3"`
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required,min=6"`
	Role       string `form:"role" validate:"required"`
	Mobile     string `form:"mobile" validate:"required,number,min=10"`
	Dob        string `form:"dob" validate:"required,datetime=2006-01-02,notfuture"`
	SportID    string `form:"sportID" validate:"required"`
	MachineID  string `form:"machineId" validate:"required"`
	YearsOfExp string `form:"yearsOfExp" validate:"required,numeric,nonnegative"`
}

// LoginForm holds the login fields exactly as typed.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterRequest is the JSON body of POST /Auth/Register.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Mobile     string `json:"mobile"`
	Dob        string `json:"dob"`
	SportID    int    `json:"sportID"`
	MachineID  string `json:"machineId"`
	YearsOfExp int    `json:"yearsOfExp"`
}

// LoginRequest is the JSON body of POST /Auth/Authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize converts the form into the wire body: sportID and yearsOfExp
// become integers (blank or unparsable -> 0) and dob becomes YYYY-MM-DD. Text
// fields are passed through unchanged.
func (f RegistrationForm) Normalize() RegisterRequest {
	return RegisterRequest{
		Name:       f.Name,
		Email:      f.Email,
		Password:   f.Password,
		Role:       f.Role,
		Mobile:     f.Mobile,
		Dob:        calendarDate(f.Dob),
		SportID:    leadingInt(f.SportID),
		MachineID:  f.MachineID,
		YearsOfExp: leadingInt(f.YearsOfExp),
	}
}

func calendarDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return raw
}

// leadingInt parses the leading decimal integer of s ("12.5" -> 12).
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

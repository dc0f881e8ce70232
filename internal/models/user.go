package models

// Profile is the user record cached in the session at login or registration.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Role    string `json:"role"`
	Address string `json:"address,omitempty"`
}

// UserSummary is one row of the users table. ID may be empty.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserDetail is the content of the user details modal.
type UserDetail struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Sport populates the sport selector on the registration form.
type Sport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthResponse is returned by POST /Auth/Register and POST /Auth/Authentication.
type AuthResponse struct {
	Token string   `json:"token,omitempty"`
	User  *Profile `json:"user,omitempty"`
}

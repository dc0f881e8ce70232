package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ayush/user-management/web/internal/models"
)

// flexID accepts a JSON string or number and keeps its text form.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// wireUser is a user record as the API sends it. Older endpoints name the
// identifier userId or useridId; all of them collapse onto models' ID.
type wireUser struct {
	ID       flexID `json:"id"`
	UserID   flexID `json:"userId"`
	UseridID flexID `json:"useridId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	Address  string `json:"address"`
}

func (u wireUser) id() string {
	for _, v := range []flexID{u.ID, u.UserID, u.UseridID} {
		if v != "" {
			return v.String()
		}
	}
	return ""
}

func (u wireUser) profile() models.Profile {
	return models.Profile{
		ID:      u.id(),
		Name:    u.Name,
		Email:   u.Email,
		Mobile:  u.Mobile,
		Role:    u.Role,
		Address: u.Address,
	}
}

func (u wireUser) detail() models.UserDetail {
	return models.UserDetail{
		ID:      u.id(),
		Name:    u.Name,
		Email:   u.Email,
		Mobile:  u.Mobile,
		Address: u.Address,
		Role:    u.Role,
	}
}

type wireSport struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

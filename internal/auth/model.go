package auth

import (
	"strings"

	"github.com/kanellos-me/console/internal/normalize"
)

// User is the identity the backend reports for the current session.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Role is "admin" or "user".
func (u User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

// Registration is the sign-up payload.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// ProfileUpdate changes the caller's own profile; nil fields are left alone.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// normalizeUser accepts the "me" payload bare or wrapped under "user".
func normalizeUser(rec normalize.Record) (User, bool) {
	if inner := rec.Get("user"); inner.IsObject() {
		rec = inner
	}
	if !rec.IsObject() {
		return User{}, false
	}
	u := User{
		ID:       rec.String("userId", "id", "sub"),
		Email:    rec.String("email"),
		Name:     rec.String("name", "displayName"),
		Username: rec.String("username", "userName"),
		IsAdmin:  rec.Bool("isAdmin") || strings.EqualFold(rec.String("role"), "admin"),
	}
	if u.ID == "" && u.Email == "" {
		return User{}, false
	}
	return u, true
}

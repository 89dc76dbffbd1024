package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// User is a portal user profile as returned by the backend.
type User struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	FullName      string     `json:"full_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	UserType      string     `json:"user_type,omitempty"`
	AccountStatus string     `json:"account_status,omitempty"`
	IsAdmin       bool       `json:"is_admin"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

// MinPasswordLength is the shortest password accepted by the register form.
const MinPasswordLength = 8

// Role returns the session role derived from the profile.
func (u *User) Role() string {
	if u.IsAdmin || strings.EqualFold(u.UserType, "ADMIN") {
		return RoleAdmin
	}
	return RoleRegular
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:   2,
		RoleRegular: 1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidatePassword checks the register form's password rules.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register payload.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
}

// AuthResult is the backend's login response.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// UserFilter selects users in the admin console.
type UserFilter struct {
	Search  string
	Page    int
	PerPage int
}

package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleRegular, true},
		{RoleRegular, RoleAdmin, false},
		{RoleRegular, RoleRegular, true},
		// Unknown roles fail-closed.
		{"unknown", RoleRegular, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleRegular, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestUserRole(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{IsAdmin: true}, RoleAdmin},
		{User{UserType: "ADMIN"}, RoleAdmin},
		{User{UserType: "STUDENT"}, RoleRegular},
		{User{}, RoleRegular},
	}

	for _, tt := range tests {
		if got := tt.user.Role(); got != tt.want {
			t.Errorf("Role() for %+v = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{FullName: "Jane Smith", FirstName: "J"}, "Jane Smith"},
		{User{FirstName: "Jane", LastName: "Smith"}, "Jane Smith"},
		{User{FirstName: "Jane"}, "Jane"},
		{User{Email: "jane@umt.edu"}, "jane@umt.edu"},
	}

	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

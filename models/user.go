package models

import (
	"fmt"
	"strings"
)

// Role represents the access level of a user
type Role string

const (
	RolePublic  Role = "PUBLIC"
	RoleStudent Role = "STUDENT"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every valid role, lowest privilege first
var Roles = []Role{RolePublic, RoleStudent, RoleManager, RoleAdmin}

// ParseRole converts a string into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(s)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// String returns the stored representation of the role
func (r Role) String() string {
	return string(r)
}

// User represents an account that can log in to the application
type User struct {
	ID        int64  `json:"user_id" db:"user_id"`
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"-" db:"password"` // password hash, never serialized
	Role      Role   `json:"role" db:"role"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "user"
}

// NewUser creates a new User instance. passwordHash must already be hashed.
func NewUser(username, email, firstName, lastName, passwordHash string, role Role) *User {
	return &User{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
	}
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user holds any of the given roles
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanManageStudents returns true if the user can see and edit every student record
func (u *User) CanManageStudents() bool {
	return u.HasRole(RoleManager, RoleAdmin)
}

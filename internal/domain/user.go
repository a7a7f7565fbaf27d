package domain

import (
	"strings"
	"time"
)

// Role drives authorization decisions for a principal. Fixed at creation.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// User is the identity-bearing principal. A User never exists independently:
// it is created alongside an Agent or Customer profile and deleted only by
// cascading deletion of its owning profile.
type User struct {
	ID           string
	Version      int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases an email so the global uniqueness invariant is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

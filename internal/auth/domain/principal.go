package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a principal can hold. There is no
// role table; anything outside this set is rejected at the edges.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a stored or submitted role name onto the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Principal is an account that can authenticate. Emails are stored
// lowercased so lookup is case-insensitive.
type Principal struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string // argon2 encoded
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

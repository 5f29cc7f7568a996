package auth

import (
	"strings"
	"time"
)

// Role is the coarse-grained access level fixed at registration time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

// ParseRole normalizes a role name. Unknown names are rejected rather than
// silently downgraded.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEditor:
		return RoleEditor, true
	case RoleReader:
		return RoleReader, true
	default:
		return "", false
	}
}

// Identity is a registered account. The password never leaves the store in
// plaintext; only the bcrypt hash is held.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

package entity

import "time"

// Valid user roles.
const (
	RoleAdmin     = "admin"
	RoleSuper     = "super"
	RoleWarehouse = "warehouse"
	RoleExec      = "exec"
)

// Roles lists every valid role.
var Roles = []string{RoleAdmin, RoleSuper, RoleWarehouse, RoleExec}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a dashboard account.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

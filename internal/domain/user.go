package domain

import "time"

// Role determines what a user may see and do across the service.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// User is the single account model: citizens, officers and admins all
// live in the same table, differentiated by Role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	FullName     *string
	Phone        *string
	Address      *string
	DateOfBirth  *time.Time
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

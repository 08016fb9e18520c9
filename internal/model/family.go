package model

import "time"

// Member roles.
const (
	RoleAdmin      = "ADMIN"
	RoleMember     = "MEMBER"
	RoleRestricted = "RESTRICTED"
)

// ValidRole reports whether role is one of the known member roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleRestricted:
		return true
	}
	return false
}

type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	FamilyID     *int64    `json:"family_id"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasFamily reports whether the user belongs to a family.
func (u *User) HasFamily() bool {
	return u != nil && u.FamilyID != nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

package authorization

import "strings"

// UserRole is the staff role carried by the session user. Only two roles
// exist; anything unknown is treated as the least privileged one.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "usuario"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

func ParseUserRole(s string) UserRole {
	role := UserRole(strings.ToLower(strings.TrimSpace(s)))
	if role.IsValid() {
		return role
	}
	return RoleUser
}

// AllRoles lists every role, admin first.
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleUser}
}

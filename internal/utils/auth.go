package utils

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RoleFor maps the staff flag stored on a user to its token role.
func RoleFor(isStaff bool) string {
	if isStaff {
		return RoleAdmin
	}
	return RoleUser
}

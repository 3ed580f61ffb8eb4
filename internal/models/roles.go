package models

// Role is the coarse authorization level stored on a user and carried in
// issued tokens. Ownership checks on notes do not consult it.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

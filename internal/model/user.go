package model

// User roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleCaseWorker = "case_worker"
)

// User statuses. Inactive users cannot log in.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a staff account. PasswordHash is persisted but never returned by the API.
type User struct {
	Record
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (u User) WithMeta(r Record) User { u.Record = r; return u }

func (u User) DisplayName() string { return u.Name }

// Public returns the user without credentials
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// ValidRole reports whether role is a known user role
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleCaseWorker:
		return true
	}
	return false
}

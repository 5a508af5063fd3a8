package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// BootstrapAdminEmail is the hardcoded administrator account seeded on
// first start. An actor with this email is treated as admin regardless of
// the role field, mirroring the old front end's isAdmin check.
const BootstrapAdminEmail = "admin@fixit.com"

// SupportDepartment is forced onto every technician account.
const SupportDepartment = "suporte"

// ParseRole normalizes a raw role value; unknown input degrades to the
// plain user role rather than erroring.
func ParseRole(raw string) Role {
	switch Fold(raw) {
	case "admin":
		return RoleAdmin
	case "technician":
		return RoleTechnician
	default:
		return RoleUser
	}
}

// User is an account record: local bootstrap accounts, locally created
// technicians, and accounts mirrored from the backend all share this
// shape. PasswordHash is set only for local accounts; backend-origin
// records carry whatever opaque credential the backend returned.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Telephone    string    `json:"telephone,omitempty"`
	Department   string    `json:"department,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	// Local marks accounts owned by this gateway's store. The flag rides
	// along in the session payload; response DTOs never expose it.
	Local bool `json:"local,omitempty"`
}

// IsAdmin reports whether the account has administrator privileges.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Email == BootstrapAdminEmail
}

// IsTechnician reports whether the account may work incidents. Admins
// count: the old UI treated them as technicians everywhere it mattered.
func (u *User) IsTechnician() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleTechnician || u.IsAdmin()
}

// Sanitized returns a copy safe to hand to clients: the credential is
// stripped.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

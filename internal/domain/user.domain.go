package domain

import "time"

// Role is a fixed business classification. It never changes after creation.
type Role string

const (
	RoleSuperadmin   Role = "superadmin"
	RoleCertificador Role = "certificador"
	RoleVecino       Role = "vecino"
	RoleUsuarioFinal Role = "usuario_final"
	RoleSocios       Role = "socios"
	RoleRRHH         Role = "rrhh"
)

var Roles = []Role{RoleSuperadmin, RoleCertificador, RoleVecino, RoleUsuarioFinal, RoleSocios, RoleRRHH}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	Role            Role      `json:"role"`
	RUT             *string   `json:"rut,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Address         *string   `json:"address,omitempty"`
	IsActive        bool      `json:"is_active"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type UserStats struct {
	Total  int64          `json:"total"`
	Active int64          `json:"active"`
	ByRole map[Role]int64 `json:"by_role"`
}

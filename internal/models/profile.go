package models

import "time"

// Role identifies which side of the platform a profile belongs to.
type Role string

const (
	// RoleInstructor marks a profile that authors and grades courses.
	RoleInstructor Role = "instructor"
	// RoleLearner marks a profile that enrolls and submits.
	RoleLearner Role = "learner"
)

// Valid reports whether the role is one of the closed set of roles.
func (r Role) Valid() bool {
	return r == RoleInstructor || r == RoleLearner
}

// Profile represents an authenticated account. A profile is created when the
// auth provider first sees the user; the role is assigned once during
// onboarding and never changes afterwards.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Role      *Role     `gorm:"size:16" json:"role"`
	Onboarded bool      `gorm:"not null;default:false" json:"onboarded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the profile has completed onboarding with the given role.
func (p Profile) HasRole(role Role) bool {
	return p.Onboarded && p.Role != nil && *p.Role == role
}

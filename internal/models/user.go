package models

import "time"

// Platform roles.
const (
	RoleLearner = "learner"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known platform roles.
func ValidRole(role string) bool {
	return role == RoleLearner || role == RoleMentor || role == RoleAdmin
}

// User represents a registered account: learner, mentor or admin.
// Email is stored lower-cased and unique.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:learner"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser is the User view exposed outside the auth layer.
// It never carries the password hash.
type SafeUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Safe returns the exposable view of the user.
func (u *User) Safe() *SafeUser {
	return &SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

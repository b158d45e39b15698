package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates the three platform roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCounts aggregates a user's owned content and activity, used by the
// admin user list.
type UserCounts struct {
	CreatedQuestions int `json:"created_questions"`
	CreatedExams     int `json:"created_exams"`
	Attempts         int `json:"attempts"`
}

// UserWithCounts extends User with content/activity counts.
type UserWithCounts struct {
	User
	Counts UserCounts `json:"counts"`
}

// RegisterRequest is the payload for self-registration. New accounts are
// always created as STUDENT; role changes are an admin-only mutation.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRoleRequest is the admin-only payload for changing a user's role.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=ADMIN TEACHER STUDENT"`
}

package models

import "time"

// User represents a console user row on the user-management screen. User
// records live in the backend; the console lists them and can change role
// and active status.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"` // "admin", "coordinator", "viewer"
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

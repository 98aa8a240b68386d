package users

import (
	"fmt"
	"time"
	"unicode"
)

// Role controls a user's authorization level. Stored as a small integer.
type Role int

const (
	RoleUser  Role = 1
	RoleStaff Role = 5
	RoleAdmin Role = 9
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is the identity record of a principal. The auth core treats it as
// read-only input except during registration; the user store owns it.
type User struct {
	ID           string    `json:"id,omitempty"`           // Opaque stable identifier, assigned at creation
	LoginID      string    `json:"login_id,omitempty"`     // Unique handle, immutable after creation
	DisplayName  string    `json:"display_name,omitempty"` // Name shown to other users
	Email        string    `json:"email,omitempty"`        // Contact address, unique
	PasswordHash string    `json:"-"`                      // Hashed password - never serialize
	Role         Role      `json:"role,omitempty"`         // Authorization level
	CreatedAt    time.Time `json:"created_at,omitempty"`   // When the user registered
}

// Snapshot is the denormalized read-only copy of a user carried in tokens
// and cached sessions.
type Snapshot struct {
	UserID      string `json:"user_id"`
	LoginID     string `json:"login_id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Snapshot returns the denormalized view of the user.
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		UserID:      u.ID,
		LoginID:     u.LoginID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

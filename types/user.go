package types

import "time"

// Role is the authorization level of a user. The set is closed; any
// other value is rejected at the boundary.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system.
// It contains identity, role, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, stored lowercased. It is
	// unique across all accounts.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsDeleted marks the account as deactivated. Rows are never
	// physically removed.
	IsDeleted bool `json:"is_deleted" db:"is_deleted"`

	// Profile fields.
	Bio         string `json:"bio,omitempty" db:"bio"`
	PicturePath string `json:"picture_path,omitempty" db:"picture_path"`
	School      string `json:"school,omitempty" db:"school"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

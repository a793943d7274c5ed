package types

import "time"

// Lesson is a course unit. PublicID is the externally visible
// identifier; lessons are soft-deleted, never removed.
type Lesson struct {
	ID          int       `json:"-" db:"id"`
	PublicID    string    `json:"id" db:"public_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	FilePath    string    `json:"file_path,omitempty" db:"file_path"`
	IsDeleted   bool      `json:"-" db:"is_deleted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

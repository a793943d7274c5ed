package types

import "time"

// Article is a published piece of content, optionally carrying an
// uploaded attachment referenced by its object-storage key.
type Article struct {
	ID         int       `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	Conclusion string    `json:"conclusion,omitempty" db:"conclusion"`
	Author     string    `json:"author,omitempty" db:"author"`
	Tags       []string  `json:"tags,omitempty" db:"tags"`
	FilePath   string    `json:"file_path,omitempty" db:"file_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

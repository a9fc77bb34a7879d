package model

import "time"

// Category is a bill category. Categories are shared across users and
// seeded with a default set on first start.
type Category struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// The password hash is tagged `json:"-"` so it can never leak through any
// JSON serialization, but most code should hand out SafeUser instead and
// strip the hash at the data-access boundary, not just at encode time.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"` // stored lowercase
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// SafeUser is the public user view: the same record with the password hash
// permanently excluded. Everything that crosses the API boundary uses this.
type SafeUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Safe converts a full user record into its public view.
func (u *User) Safe() *SafeUser {
	return &SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

package types

import "time"

// User represents an account in the system.
// It holds the login identity and the hashed credential.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"user_id"`

	// Name is the unique login and display name chosen at signup.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the bcrypt representation of the user's password.
	// This field is never rendered.
	PasswordHash string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// User is an account identified by a unique username, either a local handle
// or a Google-verified email. PasswordHash is nil for accounts created
// through Google login, which never have a local password.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Note struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	UserID       int           `json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	BulletPoints []BulletPoint `json:"bullet_points"`
}

type BulletPoint struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	NoteID    int       `json:"note_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

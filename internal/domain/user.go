package domain

import "time"

// User is the domain entity for an account. It owns projects and, through
// them, tasks and subtasks.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

package notes

import (
	"errors"
	"time"
)

// Note is owned by exactly one identity.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   string    `json:"owner_id"`
}

var (
	ErrNotFound     = errors.New("notes: not found")
	ErrInvalidInput = errors.New("notes: invalid input")
)

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a user-named bucket of vocabulary words (e.g. "Travel").
// A user may have at most one collection per distinct name; the match is
// case-sensitive and enforced by a unique constraint in storage.
type Collection struct {
	ID          uuid.UUID
	UserID      string
	Name        string
	Description string
	WordCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCollection creates a collection for a user with the given name.
func NewCollection(userID, name string) *Collection {
	now := time.Now()
	return &Collection{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

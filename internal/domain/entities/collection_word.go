package entities

import (
	"time"

	"github.com/google/uuid"
)

// WordStatus is the learning status of a word within a collection.
type WordStatus string

const (
	StatusNew      WordStatus = "new"
	StatusLearning WordStatus = "learning"
	StatusKnown    WordStatus = "known"
)

// CollectionWord associates one word+meaning with one collection for one
// user, carrying practice status. The tuple (collection, word, meaning,
// user) is unique; duplicate adds are no-ops.
type CollectionWord struct {
	ID             uuid.UUID
	CollectionID   uuid.UUID
	WordID         uuid.UUID
	MeaningID      uuid.UUID
	UserID         string
	Status         WordStatus
	LastReviewedAt *time.Time
	ReviewCount    int
	NextReviewAt   *time.Time
	CreatedAt      time.Time
}

// NewCollectionWord creates a junction entry in the "new" status.
func NewCollectionWord(collectionID, wordID, meaningID uuid.UUID, userID string) *CollectionWord {
	return &CollectionWord{
		ID:           uuid.New(),
		CollectionID: collectionID,
		WordID:       wordID,
		MeaningID:    meaningID,
		UserID:       userID,
		Status:       StatusNew,
		CreatedAt:    time.Now(),
	}
}

// Advance updates the review bookkeeping after a practice outcome.
// An incorrect answer drops the word back to "learning" and schedules a
// near-term re-review; correct answers stretch the interval and promote the
// word to "known" once it has survived enough reviews.
func (cw *CollectionWord) Advance(isCorrect bool, now time.Time) {
	cw.ReviewCount++
	cw.LastReviewedAt = &now

	if !isCorrect {
		cw.Status = StatusLearning
		next := now.Add(10 * time.Minute)
		cw.NextReviewAt = &next
		return
	}

	next := now.AddDate(0, 0, reviewIntervalDays(cw.ReviewCount))
	cw.NextReviewAt = &next

	switch {
	case cw.ReviewCount >= 5:
		cw.Status = StatusKnown
	default:
		cw.Status = StatusLearning
	}
}

// reviewIntervalDays grows the review interval with the number of
// successful reviews: 1, 3, then doubling steps.
func reviewIntervalDays(reviewCount int) int {
	switch {
	case reviewCount <= 1:
		return 1
	case reviewCount == 2:
		return 3
	default:
		return (reviewCount - 1) * 2
	}
}

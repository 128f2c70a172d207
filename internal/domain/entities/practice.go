package entities

import (
	"time"

	"github.com/google/uuid"
)

// PracticeMode identifies which game produced a practice session.
type PracticeMode string

const (
	ModeFlashcard PracticeMode = "flashcard"
	ModeQuiz      PracticeMode = "quiz"
	ModeFindWord  PracticeMode = "findword"
)

// PracticeSession is one bounded run of a practice game with a fixed
// planned word count. It is created with CorrectAnswers=0 and updated
// exactly once at session end; a session that recorded no word results is
// deleted instead of being marked complete.
type PracticeSession struct {
	ID             uuid.UUID
	UserID         string
	Mode           PracticeMode
	TotalWords     int
	CorrectAnswers int
	Completed      bool
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// NewPracticeSession creates a session with the planned word count.
func NewPracticeSession(userID string, mode PracticeMode, totalWords int) *PracticeSession {
	return &PracticeSession{
		ID:         uuid.New(),
		UserID:     userID,
		Mode:       mode,
		TotalWords: totalWords,
		CreatedAt:  time.Now(),
	}
}

// Complete finalizes the session. fullyCompleted reports whether the user
// exhausted the full planned set rather than exiting early.
func (s *PracticeSession) Complete(correctAnswers int, fullyCompleted bool, now time.Time) {
	s.CorrectAnswers = correctAnswers
	s.Completed = fullyCompleted
	s.CompletedAt = &now
}

// PracticeSessionWord is a durable record that a specific word was
// practiced, with correctness, within a specific session. At most one row
// exists per (session, word).
type PracticeSessionWord struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	UserID       string
	WordID       uuid.UUID
	MeaningID    uuid.UUID
	CollectionID uuid.UUID
	IsCorrect    bool
	CreatedAt    time.Time
}

// NewPracticeSessionWord creates a word-level practice outcome record.
func NewPracticeSessionWord(
	sessionID uuid.UUID,
	userID string,
	wordID, meaningID, collectionID uuid.UUID,
	isCorrect bool,
) *PracticeSessionWord {
	return &PracticeSessionWord{
		ID:           uuid.New(),
		SessionID:    sessionID,
		UserID:       userID,
		WordID:       wordID,
		MeaningID:    meaningID,
		CollectionID: collectionID,
		IsCorrect:    isCorrect,
		CreatedAt:    time.Now(),
	}
}

// PracticeWord is one practice-eligible word as served to the game
// engines: the word joined with the collection it came from and all of its
// stored meanings, so an engine can pick which meaning to show.
type PracticeWord struct {
	CollectionID uuid.UUID `json:"collectionId"`
	WordID       uuid.UUID `json:"wordId"`
	Text         string    `json:"text"`
	Phonetic     string    `json:"phonetic"`
	AudioURL     string    `json:"audioUrl"`
	Meanings     []Meaning `json:"meanings"`
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

var (
	// ErrNoWordsToPractice signals an empty practice batch: the game does
	// not start and the caller tells the user.
	ErrNoWordsToPractice = errors.New("no words available to practice")

	// ErrNoActiveSession is returned by game operations outside an active run.
	ErrNoActiveSession = errors.New("no active practice session")

	// ErrSessionActive is returned when starting a game that is already running.
	ErrSessionActive = errors.New("a practice session is already active")

	// ErrInvalidOption is returned for an answer index outside the
	// question's options.
	ErrInvalidOption = errors.New("invalid option index")
)

// enginePhase is the lifecycle of one game engine run. All completion
// triggers (explicit finish, early exit, teardown) funnel through a single
// Active→Completing transition, so the completion sweep runs exactly once
// no matter which trigger fires first.
type enginePhase int

const (
	phaseIdle enginePhase = iota
	phaseActive
	phaseCompleting
	phaseClosed
)

// PracticeRecorder is the durable session-outcome recording the engines
// depend on.
type PracticeRecorder interface {
	Start(ctx context.Context, userID string, mode entities.PracticeMode, totalWords int) (uuid.UUID, error)
	Record(ctx context.Context, result *entities.PracticeSessionWord) bool
	Complete(ctx context.Context, sessionID uuid.UUID, correctAnswers int, fullyCompleted bool, recordedCount int) error
}

// WordSource serves bounded batches of practice-eligible words.
type WordSource interface {
	GetPracticeBatch(ctx context.Context, userID string, limit int) ([]entities.PracticeWord, error)
}

// SnapshotStore persists in-progress engine state across teardown.
type SnapshotStore interface {
	Save(key string, state any) error
	Load(key string, state any) error
	Clear(key string) error
}

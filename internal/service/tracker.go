package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/postgres/repository"
)

type SessionRepo interface {
	Create(ctx context.Context, s *entities.PracticeSession) error
	Complete(ctx context.Context, id uuid.UUID, correctAnswers int, completed bool, completedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	InsertWordResult(ctx context.Context, w *entities.PracticeSessionWord) (bool, error)
}

type ReviewRepo interface {
	GetByKey(ctx context.Context, collectionID, wordID, meaningID uuid.UUID, userID string) (*entities.CollectionWord, error)
	UpdateReview(ctx context.Context, cw *entities.CollectionWord) error
}

// SessionTracker durably records word-level practice outcomes within one
// practice session. Dedup of repeated recordings for the same word is
// two-layered: the engines hold an in-memory recorded set, and the store
// enforces at most one row per (session, word) underneath.
type SessionTracker struct {
	sessions SessionRepo
	reviews  ReviewRepo
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionTracker creates a new SessionTracker.
func NewSessionTracker(sessions SessionRepo, reviews ReviewRepo, logger *zap.Logger) *SessionTracker {
	return &SessionTracker{
		sessions: sessions,
		reviews:  reviews,
		logger:   logger,
		now:      time.Now,
	}
}

// Start creates a practice session with the planned word count and returns
// its id. Failure is non-fatal for the caller: the game does not start.
func (t *SessionTracker) Start(ctx context.Context, userID string, mode entities.PracticeMode, totalWords int) (uuid.UUID, error) {
	session := entities.NewPracticeSession(userID, mode, totalWords)
	if err := t.sessions.Create(ctx, session); err != nil {
		return uuid.Nil, err
	}

	return session.ID, nil
}

// Record persists one word-level outcome and advances the word's review
// state. Returns false on failure; the caller does not retry immediately
// but the word stays retryable on a later attempt. A word already recorded
// for this session is a successful no-op.
func (t *SessionTracker) Record(ctx context.Context, result *entities.PracticeSessionWord) bool {
	inserted, err := t.sessions.InsertWordResult(ctx, result)
	if err != nil {
		t.logger.Warn("record practice result failed",
			zap.String("session", result.SessionID.String()),
			zap.String("word", result.WordID.String()),
			zap.Error(err))
		return false
	}

	if inserted {
		t.advanceReview(ctx, result)
	}

	return true
}

// advanceReview moves the collection word's SRS bookkeeping. Best-effort:
// the practice record already landed, a failed review update only delays
// rescheduling.
func (t *SessionTracker) advanceReview(ctx context.Context, result *entities.PracticeSessionWord) {
	cw, err := t.reviews.GetByKey(ctx, result.CollectionID, result.WordID, result.MeaningID, result.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrCollectionWordNotFound) {
			t.logger.Warn("load review state failed",
				zap.String("word", result.WordID.String()), zap.Error(err))
		}
		return
	}

	cw.Advance(result.IsCorrect, t.now())

	if err := t.reviews.UpdateReview(ctx, cw); err != nil {
		t.logger.Warn("update review state failed",
			zap.String("word", result.WordID.String()), zap.Error(err))
	}
}

// Complete finalizes a session. A session that recorded nothing is deleted
// rather than marked complete, so empty sessions never pollute history.
func (t *SessionTracker) Complete(ctx context.Context, sessionID uuid.UUID, correctAnswers int, fullyCompleted bool, recordedCount int) error {
	if recordedCount == 0 {
		return t.sessions.Delete(ctx, sessionID)
	}

	return t.sessions.Complete(ctx, sessionID, correctAnswers, fullyCompleted, t.now())
}

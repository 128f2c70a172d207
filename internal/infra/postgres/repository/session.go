package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/postgres"
)

var ErrSessionNotFound = errors.New("practice session not found")

// SessionRepository provides access to practice session and word-result
// data in the database.
type SessionRepository struct {
	db postgres.DBTX
}

// NewSessionRepository creates a new SessionRepository with the provided database pool.
func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new practice session.
func (r *SessionRepository) Create(ctx context.Context, s *entities.PracticeSession) error {
	query := `
		INSERT INTO practice_sessions (
			id, user_id, mode, total_words, correct_answers, completed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, s.ID, s.UserID, s.Mode, s.TotalWords, s.CorrectAnswers, s.Completed, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create practice session: %w", err)
	}

	return nil
}

// Complete finalizes the session with the final correct-answer count.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, correctAnswers int, completed bool, completedAt time.Time) error {
	query := `
		UPDATE practice_sessions
		SET correct_answers = $2, completed = $3, completed_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, correctAnswers, completed, completedAt)
	if err != nil {
		return fmt.Errorf("complete practice session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Delete removes a session. Word results cascade.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM practice_sessions WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete practice session: %w", err)
	}

	return nil
}

// InsertWordResult records one word-level outcome and reports whether a
// row was created. The unique (session_id, word_id) constraint makes a
// repeated record for the same word within one session a no-op.
func (r *SessionRepository) InsertWordResult(ctx context.Context, w *entities.PracticeSessionWord) (bool, error) {
	query := `
		INSERT INTO practice_session_words (
			id, session_id, user_id, word_id, meaning_id, collection_id, is_correct, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, word_id) DO NOTHING
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		w.ID,
		w.SessionID,
		w.UserID,
		w.WordID,
		w.MeaningID,
		w.CollectionID,
		w.IsCorrect,
		w.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert word result: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteWordResults removes the word's practice records for one collection.
// Used when a word leaves a collection so its history does not keep the
// collection referenced.
func (r *SessionRepository) DeleteWordResults(ctx context.Context, collectionID, wordID uuid.UUID, userID string) error {
	query := `
		DELETE FROM practice_session_words
		WHERE collection_id = $1 AND word_id = $2 AND user_id = $3
	`

	if _, err := r.db.Exec(ctx, query, collectionID, wordID, userID); err != nil {
		return fmt.Errorf("delete word results: %w", err)
	}

	return nil
}

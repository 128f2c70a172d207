package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/postgres"
)

var ErrCollectionWordNotFound = errors.New("collection word not found")

// CollectionWordRepository provides access to the collection-word junction
// rows in the database.
type CollectionWordRepository struct {
	db postgres.DBTX
}

// NewCollectionWordRepository creates a new CollectionWordRepository with the provided database pool.
func NewCollectionWordRepository(db postgres.DBTX) *CollectionWordRepository {
	return &CollectionWordRepository{db: db}
}

// InsertOrSkip inserts the junction row and reports whether a row was
// actually created. A duplicate (collection, word, meaning, user) tuple is
// a no-op, not an error.
func (r *CollectionWordRepository) InsertOrSkip(ctx context.Context, cw *entities.CollectionWord) (bool, error) {
	query := `
		INSERT INTO collection_words (
			id, collection_id, word_id, meaning_id, user_id,
			status, last_reviewed_at, review_count, next_review_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (collection_id, word_id, meaning_id, user_id) DO NOTHING
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		cw.ID,
		cw.CollectionID,
		cw.WordID,
		cw.MeaningID,
		cw.UserID,
		cw.Status,
		cw.LastReviewedAt,
		cw.ReviewCount,
		cw.NextReviewAt,
		cw.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert collection word: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteByWord removes all junction rows for the word within one
// collection and reports how many were removed.
func (r *CollectionWordRepository) DeleteByWord(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (int, error) {
	query := `
		DELETE FROM collection_words
		WHERE collection_id = $1 AND word_id = $2 AND user_id = $3
	`

	tag, err := r.db.Exec(ctx, query, collectionID, wordID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete collection words: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// CountReferences returns how many collections of the user still reference
// the word. Callers must delete the junction rows being removed before
// asking, or the count will include them.
func (r *CollectionWordRepository) CountReferences(ctx context.Context, userID string, wordID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT collection_id)
		FROM collection_words
		WHERE user_id = $1 AND word_id = $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, wordID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count word references: %w", err)
	}

	return count, nil
}

// ExistsInCollection reports whether the word is already present in the
// collection under any meaning.
func (r *CollectionWordRepository) ExistsInCollection(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM collection_words
			WHERE collection_id = $1 AND word_id = $2 AND user_id = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, collectionID, wordID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check word in collection: %w", err)
	}

	return exists, nil
}

// GetByKey retrieves one junction row by its natural key.
func (r *CollectionWordRepository) GetByKey(ctx context.Context, collectionID, wordID, meaningID uuid.UUID, userID string) (*entities.CollectionWord, error) {
	query := `
		SELECT id, collection_id, word_id, meaning_id, user_id,
		       status, last_reviewed_at, review_count, next_review_at, created_at
		FROM collection_words
		WHERE collection_id = $1 AND word_id = $2 AND meaning_id = $3 AND user_id = $4
	`

	var cw entities.CollectionWord
	err := r.db.QueryRow(ctx, query, collectionID, wordID, meaningID, userID).Scan(
		&cw.ID,
		&cw.CollectionID,
		&cw.WordID,
		&cw.MeaningID,
		&cw.UserID,
		&cw.Status,
		&cw.LastReviewedAt,
		&cw.ReviewCount,
		&cw.NextReviewAt,
		&cw.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollectionWordNotFound
		}
		return nil, fmt.Errorf("get collection word: %w", err)
	}

	return &cw, nil
}

// UpdateReview persists the review bookkeeping fields after a practice outcome.
func (r *CollectionWordRepository) UpdateReview(ctx context.Context, cw *entities.CollectionWord) error {
	query := `
		UPDATE collection_words
		SET status = $2, last_reviewed_at = $3, review_count = $4, next_review_at = $5
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, cw.ID, cw.Status, cw.LastReviewedAt, cw.ReviewCount, cw.NextReviewAt)
	if err != nil {
		return fmt.Errorf("update review state: %w", err)
	}

	return nil
}

// ListByCollection returns the junction rows of one collection.
func (r *CollectionWordRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID, userID string) ([]*entities.CollectionWord, error) {
	query := `
		SELECT id, collection_id, word_id, meaning_id, user_id,
		       status, last_reviewed_at, review_count, next_review_at, created_at
		FROM collection_words
		WHERE collection_id = $1 AND user_id = $2
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, collectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("list collection words: %w", err)
	}
	defer rows.Close()

	var words []*entities.CollectionWord
	for rows.Next() {
		cw := new(entities.CollectionWord)
		if err := rows.Scan(
			&cw.ID,
			&cw.CollectionID,
			&cw.WordID,
			&cw.MeaningID,
			&cw.UserID,
			&cw.Status,
			&cw.LastReviewedAt,
			&cw.ReviewCount,
			&cw.NextReviewAt,
			&cw.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan collection word: %w", err)
		}
		words = append(words, cw)
	}

	return words, rows.Err()
}

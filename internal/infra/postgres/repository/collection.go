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

var ErrCollectionNotFound = errors.New("collection not found")

// CollectionRepository provides access to collection data in the database.
type CollectionRepository struct {
	db postgres.DBTX
}

// NewCollectionRepository creates a new CollectionRepository with the provided database pool.
func NewCollectionRepository(db postgres.DBTX) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// GetOrCreate returns the user's collection with the given name, creating
// it when absent. Concurrent calls for the same name are resolved by the
// unique (user_id, name) constraint: the insert that loses the race falls
// through to fetching the surviving row.
func (r *CollectionRepository) GetOrCreate(ctx context.Context, userID, name string) (*entities.Collection, error) {
	c := entities.NewCollection(userID, name)

	query := `
		INSERT INTO collections (id, user_id, name, description, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, name) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Description, c.WordCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return c, nil
	}

	return r.getByName(ctx, userID, name)
}

func (r *CollectionRepository) getByName(ctx context.Context, userID, name string) (*entities.Collection, error) {
	query := `
		SELECT id, user_id, name, description, word_count, created_at, updated_at
		FROM collections
		WHERE user_id = $1 AND name = $2
	`

	var c entities.Collection
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.WordCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection by name: %w", err)
	}

	return &c, nil
}

// GetByID retrieves a collection by id, scoped to the owning user.
func (r *CollectionRepository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*entities.Collection, error) {
	query := `
		SELECT id, user_id, name, description, word_count, created_at, updated_at
		FROM collections
		WHERE id = $1 AND user_id = $2
	`

	var c entities.Collection
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.WordCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}

	return &c, nil
}

// ListByUser returns all collections owned by the user.
func (r *CollectionRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Collection, error) {
	query := `
		SELECT id, user_id, name, description, word_count, created_at, updated_at
		FROM collections
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []*entities.Collection
	for rows.Next() {
		c := new(entities.Collection)
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Description,
			&c.WordCount,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	return collections, rows.Err()
}

// AdjustWordCount shifts the denormalized word counter by delta.
func (r *CollectionRepository) AdjustWordCount(ctx context.Context, id uuid.UUID, delta int) error {
	query := `
		UPDATE collections
		SET word_count = GREATEST(word_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust word count: %w", err)
	}

	return nil
}

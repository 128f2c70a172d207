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

var ErrWordNotFound = errors.New("word not found")

// WordRepository provides access to word and meaning data in the database.
type WordRepository struct {
	db postgres.DBTX
}

// NewWordRepository creates a new WordRepository with the provided database pool.
func NewWordRepository(db postgres.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// InsertOrFetch inserts the word and returns it, or returns the existing
// row when the text is already stored. Word text is globally unique, so a
// conflicting insert falls through to a fetch by text.
func (r *WordRepository) InsertOrFetch(ctx context.Context, word *entities.Word) (*entities.Word, error) {
	query := `
		INSERT INTO words (id, text, phonetic, audio_url, stems, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (text) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, word.ID, word.Text, word.Phonetic, word.AudioURL, word.Stems, word.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert word: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return word, nil
	}

	return r.GetByText(ctx, word.Text)
}

// GetByText retrieves a word by its exact text.
func (r *WordRepository) GetByText(ctx context.Context, text string) (*entities.Word, error) {
	query := `
		SELECT id, text, phonetic, audio_url, stems, created_at
		FROM words
		WHERE text = $1
	`

	var w entities.Word
	err := r.db.QueryRow(ctx, query, text).Scan(
		&w.ID,
		&w.Text,
		&w.Phonetic,
		&w.AudioURL,
		&w.Stems,
		&w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("get word by text: %w", err)
	}

	return &w, nil
}

// GetMeanings returns the stored meanings of a word in ordinal order.
func (r *WordRepository) GetMeanings(ctx context.Context, wordID uuid.UUID) ([]entities.Meaning, error) {
	query := `
		SELECT id, word_id, ordinal_index, part_of_speech, definition, examples
		FROM meanings
		WHERE word_id = $1
		ORDER BY ordinal_index
	`

	rows, err := r.db.Query(ctx, query, wordID)
	if err != nil {
		return nil, fmt.Errorf("get meanings: %w", err)
	}
	defer rows.Close()

	return scanMeanings(rows)
}

// CreateMeanings inserts the given meanings. Callers only invoke this when
// the word has no stored meanings yet.
func (r *WordRepository) CreateMeanings(ctx context.Context, meanings []entities.Meaning) error {
	query := `
		INSERT INTO meanings (id, word_id, ordinal_index, part_of_speech, definition, examples)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (word_id, ordinal_index) DO NOTHING
	`

	for _, m := range meanings {
		if _, err := r.db.Exec(ctx, query, m.ID, m.WordID, m.OrdinalIndex, m.PartOfSpeech, m.Definition, m.Examples); err != nil {
			return fmt.Errorf("create meaning: %w", err)
		}
	}

	return nil
}

// GetPracticeBatch returns up to limit practice-eligible words for the
// user: words present in any of their collections, due-for-review first
// (NULL next_review_at means never reviewed and sorts first), randomized
// within equal due times. Each entry carries all stored meanings of the
// word so engines can choose which one to show.
func (r *WordRepository) GetPracticeBatch(ctx context.Context, userID string, limit int) ([]entities.PracticeWord, error) {
	query := `
		SELECT collection_id, word_id, text, phonetic, audio_url
		FROM (
			SELECT DISTINCT ON (cw.word_id)
			       cw.collection_id, cw.word_id, w.text, w.phonetic, w.audio_url,
			       cw.next_review_at
			FROM collection_words cw
			JOIN words w ON w.id = cw.word_id
			WHERE cw.user_id = $1
			  AND (cw.next_review_at IS NULL OR cw.next_review_at <= NOW())
			ORDER BY cw.word_id, cw.next_review_at NULLS FIRST
		) eligible
		ORDER BY next_review_at NULLS FIRST, RANDOM()
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get practice batch: %w", err)
	}
	defer rows.Close()

	var batch []entities.PracticeWord
	for rows.Next() {
		var pw entities.PracticeWord
		if err := rows.Scan(&pw.CollectionID, &pw.WordID, &pw.Text, &pw.Phonetic, &pw.AudioURL); err != nil {
			return nil, fmt.Errorf("scan practice word: %w", err)
		}
		batch = append(batch, pw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read practice batch: %w", err)
	}

	if len(batch) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(batch))
	for i, pw := range batch {
		ids[i] = pw.WordID
	}

	meanings, err := r.getMeaningsByWordIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range batch {
		batch[i].Meanings = meanings[batch[i].WordID]
	}

	return batch, nil
}

func (r *WordRepository) getMeaningsByWordIDs(ctx context.Context, wordIDs []uuid.UUID) (map[uuid.UUID][]entities.Meaning, error) {
	query := `
		SELECT id, word_id, ordinal_index, part_of_speech, definition, examples
		FROM meanings
		WHERE word_id = ANY($1)
		ORDER BY word_id, ordinal_index
	`

	rows, err := r.db.Query(ctx, query, wordIDs)
	if err != nil {
		return nil, fmt.Errorf("get meanings by word ids: %w", err)
	}
	defer rows.Close()

	meanings, err := scanMeanings(rows)
	if err != nil {
		return nil, err
	}

	byWord := make(map[uuid.UUID][]entities.Meaning, len(wordIDs))
	for _, m := range meanings {
		byWord[m.WordID] = append(byWord[m.WordID], m)
	}
	return byWord, nil
}

func scanMeanings(rows pgx.Rows) ([]entities.Meaning, error) {
	var meanings []entities.Meaning
	for rows.Next() {
		var m entities.Meaning
		if err := rows.Scan(&m.ID, &m.WordID, &m.OrdinalIndex, &m.PartOfSpeech, &m.Definition, &m.Examples); err != nil {
			return nil, fmt.Errorf("scan meaning: %w", err)
		}
		meanings = append(meanings, m)
	}
	return meanings, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. The uniqueness
// constraints here back the insert-or-fetch and insert-or-skip patterns in
// the repositories: duplicate inserts conflict instead of duplicating rows.
func Migrate(ctx context.Context, db DBTX) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			id UUID PRIMARY KEY,
			text TEXT NOT NULL UNIQUE,
			phonetic TEXT NOT NULL DEFAULT '',
			audio_url TEXT NOT NULL DEFAULT '',
			stems TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS meanings (
			id UUID PRIMARY KEY,
			word_id UUID NOT NULL REFERENCES words(id),
			ordinal_index INTEGER NOT NULL,
			part_of_speech TEXT NOT NULL DEFAULT '',
			definition TEXT NOT NULL,
			examples TEXT[] NOT NULL DEFAULT '{}',
			UNIQUE (word_id, ordinal_index)
		)`,
		`CREATE TABLE IF NOT EXISTS collection_words (
			id UUID PRIMARY KEY,
			collection_id UUID NOT NULL REFERENCES collections(id),
			word_id UUID NOT NULL REFERENCES words(id),
			meaning_id UUID NOT NULL REFERENCES meanings(id),
			user_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'new',
			last_reviewed_at TIMESTAMPTZ,
			review_count INTEGER NOT NULL DEFAULT 0,
			next_review_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (collection_id, word_id, meaning_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS practice_sessions (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			total_words INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS practice_session_words (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES practice_sessions(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			word_id UUID NOT NULL REFERENCES words(id),
			meaning_id UUID NOT NULL REFERENCES meanings(id),
			collection_id UUID NOT NULL REFERENCES collections(id),
			is_correct BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, word_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_words_due
			ON collection_words (user_id, next_review_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

type CollectionRepo interface {
	GetOrCreate(ctx context.Context, userID, name string) (*entities.Collection, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*entities.Collection, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Collection, error)
	AdjustWordCount(ctx context.Context, id uuid.UUID, delta int) error
}

type WordRepo interface {
	InsertOrFetch(ctx context.Context, word *entities.Word) (*entities.Word, error)
	GetMeanings(ctx context.Context, wordID uuid.UUID) ([]entities.Meaning, error)
	CreateMeanings(ctx context.Context, meanings []entities.Meaning) error
}

type CollectionWordRepo interface {
	InsertOrSkip(ctx context.Context, cw *entities.CollectionWord) (bool, error)
	DeleteByWord(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (int, error)
	CountReferences(ctx context.Context, userID string, wordID uuid.UUID) (int, error)
	ExistsInCollection(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (bool, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID, userID string) ([]*entities.CollectionWord, error)
}

type SessionWordRemover interface {
	DeleteWordResults(ctx context.Context, collectionID, wordID uuid.UUID, userID string) error
}

// CollectionService owns the consistency rules for user collections and
// their word/definition records.
type CollectionService struct {
	collections     CollectionRepo
	words           WordRepo
	collectionWords CollectionWordRepo
	sessionWords    SessionWordRemover
	logger          *zap.Logger
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(
	collections CollectionRepo,
	words WordRepo,
	collectionWords CollectionWordRepo,
	sessionWords SessionWordRemover,
	logger *zap.Logger,
) *CollectionService {
	return &CollectionService{
		collections:     collections,
		words:           words,
		collectionWords: collectionWords,
		sessionWords:    sessionWords,
		logger:          logger,
	}
}

// GetOrCreateCollection returns the user's collection with the exact name,
// creating it lazily on first use.
func (s *CollectionService) GetOrCreateCollection(ctx context.Context, userID, name string) (*entities.Collection, error) {
	return s.collections.GetOrCreate(ctx, userID, name)
}

// GetCollection returns one collection of the user by id.
func (s *CollectionService) GetCollection(ctx context.Context, id uuid.UUID, userID string) (*entities.Collection, error) {
	return s.collections.GetByID(ctx, id, userID)
}

// ListCollections returns all collections of the user.
func (s *CollectionService) ListCollections(ctx context.Context, userID string) ([]*entities.Collection, error) {
	return s.collections.ListByUser(ctx, userID)
}

// GetCollectionWords returns the words of one collection.
func (s *CollectionService) GetCollectionWords(ctx context.Context, collectionID uuid.UUID, userID string) ([]*entities.CollectionWord, error) {
	return s.collectionWords.ListByCollection(ctx, collectionID, userID)
}

// AddWordToCollection stores a looked-up word in the collection.
//
// The word row is insert-or-fetch by text. Meanings are only created when
// the word has none stored yet: re-adding a word with a different
// definition set does not append new meanings. Each meaning then gets its
// own junction row, insert-or-skip; a failure on one meaning is logged and
// skipped rather than aborting the rest.
//
// Returns false only when nothing could be stored at all.
func (s *CollectionService) AddWordToCollection(ctx context.Context, userID string, def *entities.WordDefinition, collectionID uuid.UUID) bool {
	word, err := s.words.InsertOrFetch(ctx, entities.NewWord(def))
	if err != nil {
		s.logger.Error("add word: insert or fetch failed",
			zap.String("word", def.Word), zap.Error(err))
		return false
	}

	meanings, err := s.words.GetMeanings(ctx, word.ID)
	if err != nil {
		s.logger.Error("add word: get meanings failed",
			zap.String("word", word.Text), zap.Error(err))
		return false
	}

	if len(meanings) == 0 {
		meanings = word.BuildMeanings(def.Meanings)
		if err := s.words.CreateMeanings(ctx, meanings); err != nil {
			s.logger.Error("add word: create meanings failed",
				zap.String("word", word.Text), zap.Error(err))
			return false
		}
	}

	alreadyPresent, err := s.collectionWords.ExistsInCollection(ctx, collectionID, word.ID, userID)
	if err != nil {
		s.logger.Error("add word: presence check failed",
			zap.String("word", word.Text), zap.Error(err))
		return false
	}

	linked := 0
	for _, m := range meanings {
		cw := entities.NewCollectionWord(collectionID, word.ID, m.ID, userID)
		inserted, err := s.collectionWords.InsertOrSkip(ctx, cw)
		if err != nil {
			// Best-effort bulk insert: skip the failing meaning.
			s.logger.Warn("add word: link meaning failed",
				zap.String("word", word.Text),
				zap.Int("meaning", m.OrdinalIndex),
				zap.Error(err))
			continue
		}
		if inserted {
			linked++
		}
	}

	// The counter tracks distinct words, not junction rows.
	if !alreadyPresent && linked > 0 {
		if err := s.collections.AdjustWordCount(ctx, collectionID, 1); err != nil {
			s.logger.Warn("add word: adjust word count failed",
				zap.String("collection", collectionID.String()), zap.Error(err))
		}
	}

	return linked > 0 || alreadyPresent
}

// RemoveWordFromCollection removes the word from the collection and cleans
// up its practice history there. It reports whether the word has left the
// user's vocabulary entirely (no other collection references it).
//
// The junction rows are removed before the reference count is taken;
// reordering these would make the count include the rows being removed.
func (s *CollectionService) RemoveWordFromCollection(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (bool, error) {
	removed, err := s.collectionWords.DeleteByWord(ctx, collectionID, wordID, userID)
	if err != nil {
		return false, err
	}

	if err := s.sessionWords.DeleteWordResults(ctx, collectionID, wordID, userID); err != nil {
		// Practice history cleanup is best-effort; the junction rows are
		// already gone.
		s.logger.Warn("remove word: delete practice records failed",
			zap.String("word", wordID.String()), zap.Error(err))
	}

	if removed > 0 {
		if err := s.collections.AdjustWordCount(ctx, collectionID, -1); err != nil {
			s.logger.Warn("remove word: adjust word count failed",
				zap.String("collection", collectionID.String()), zap.Error(err))
		}
	}

	references, err := s.collectionWords.CountReferences(ctx, userID, wordID)
	if err != nil {
		return false, err
	}

	return references == 0, nil
}

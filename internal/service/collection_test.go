package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

type fakeCollectionRepo struct {
	collections map[string]*entities.Collection // keyed by userID+"/"+name
	adjustments map[uuid.UUID]int
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{
		collections: map[string]*entities.Collection{},
		adjustments: map[uuid.UUID]int{},
	}
}

func (f *fakeCollectionRepo) GetOrCreate(_ context.Context, userID, name string) (*entities.Collection, error) {
	key := userID + "/" + name
	if c, ok := f.collections[key]; ok {
		return c, nil
	}
	c := entities.NewCollection(userID, name)
	f.collections[key] = c
	return c, nil
}

func (f *fakeCollectionRepo) GetByID(_ context.Context, id uuid.UUID, userID string) (*entities.Collection, error) {
	for _, c := range f.collections {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, errBoom
}

func (f *fakeCollectionRepo) ListByUser(_ context.Context, userID string) ([]*entities.Collection, error) {
	var out []*entities.Collection
	for _, c := range f.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCollectionRepo) AdjustWordCount(_ context.Context, id uuid.UUID, delta int) error {
	f.adjustments[id] += delta
	return nil
}

type fakeWordRepo struct {
	byText   map[string]*entities.Word
	meanings map[uuid.UUID][]entities.Meaning

	insertErr   error
	meaningsErr error
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{
		byText:   map[string]*entities.Word{},
		meanings: map[uuid.UUID][]entities.Meaning{},
	}
}

func (f *fakeWordRepo) InsertOrFetch(_ context.Context, word *entities.Word) (*entities.Word, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if existing, ok := f.byText[word.Text]; ok {
		return existing, nil
	}
	f.byText[word.Text] = word
	return word, nil
}

func (f *fakeWordRepo) GetMeanings(_ context.Context, wordID uuid.UUID) ([]entities.Meaning, error) {
	return f.meanings[wordID], nil
}

func (f *fakeWordRepo) CreateMeanings(_ context.Context, meanings []entities.Meaning) error {
	if f.meaningsErr != nil {
		return f.meaningsErr
	}
	for _, m := range meanings {
		f.meanings[m.WordID] = append(f.meanings[m.WordID], m)
	}
	return nil
}

type cwKey struct {
	collectionID uuid.UUID
	wordID       uuid.UUID
	meaningID    uuid.UUID
	userID       string
}

type fakeCollectionWordRepo struct {
	rows      map[cwKey]*entities.CollectionWord
	insertErr error
}

func newFakeCollectionWordRepo() *fakeCollectionWordRepo {
	return &fakeCollectionWordRepo{rows: map[cwKey]*entities.CollectionWord{}}
}

func (f *fakeCollectionWordRepo) InsertOrSkip(_ context.Context, cw *entities.CollectionWord) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	key := cwKey{cw.CollectionID, cw.WordID, cw.MeaningID, cw.UserID}
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = cw
	return true, nil
}

func (f *fakeCollectionWordRepo) DeleteByWord(_ context.Context, collectionID, wordID uuid.UUID, userID string) (int, error) {
	removed := 0
	for key := range f.rows {
		if key.collectionID == collectionID && key.wordID == wordID && key.userID == userID {
			delete(f.rows, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeCollectionWordRepo) CountReferences(_ context.Context, userID string, wordID uuid.UUID) (int, error) {
	seen := map[uuid.UUID]bool{}
	for key := range f.rows {
		if key.userID == userID && key.wordID == wordID {
			seen[key.collectionID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeCollectionWordRepo) ExistsInCollection(_ context.Context, collectionID, wordID uuid.UUID, userID string) (bool, error) {
	for key := range f.rows {
		if key.collectionID == collectionID && key.wordID == wordID && key.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCollectionWordRepo) ListByCollection(_ context.Context, collectionID uuid.UUID, userID string) ([]*entities.CollectionWord, error) {
	var out []*entities.CollectionWord
	for key, cw := range f.rows {
		if key.collectionID == collectionID && key.userID == userID {
			out = append(out, cw)
		}
	}
	return out, nil
}

type fakeSessionWordRemover struct {
	deletes int
	err     error
}

func (f *fakeSessionWordRemover) DeleteWordResults(_ context.Context, _, _ uuid.UUID, _ string) error {
	f.deletes++
	return f.err
}

type collectionFixture struct {
	svc             *CollectionService
	collections     *fakeCollectionRepo
	words           *fakeWordRepo
	collectionWords *fakeCollectionWordRepo
	sessionWords    *fakeSessionWordRemover
}

func newCollectionFixture() *collectionFixture {
	f := &collectionFixture{
		collections:     newFakeCollectionRepo(),
		words:           newFakeWordRepo(),
		collectionWords: newFakeCollectionWordRepo(),
		sessionWords:    &fakeSessionWordRemover{},
	}
	f.svc = NewCollectionService(f.collections, f.words, f.collectionWords, f.sessionWords, testLogger())
	return f
}

func sampleDefinition(text string) *entities.WordDefinition {
	return &entities.WordDefinition{
		Word:     text,
		Phonetic: "/" + text + "/",
		Meanings: []entities.MeaningDefinition{
			{PartOfSpeech: "noun", Definition: "first sense of " + text, Examples: []string{"an example"}},
			{PartOfSpeech: "verb", Definition: "second sense of " + text},
		},
	}
}

func TestGetOrCreateCollectionReturnsSameCollection(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()

	first, err := f.svc.GetOrCreateCollection(ctx, "user-1", "General")
	require.NoError(t, err)
	second, err := f.svc.GetOrCreateCollection(ctx, "user-1", "General")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Different user or different name gets its own collection.
	other, err := f.svc.GetOrCreateCollection(ctx, "user-2", "General")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestAddWordToCollection(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	collectionID := uuid.New()

	ok := f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), collectionID)
	assert.True(t, ok)

	word := f.words.byText["ephemeral"]
	require.NotNil(t, word)
	assert.Len(t, f.words.meanings[word.ID], 2)
	assert.Len(t, f.collectionWords.rows, 2, "one junction row per meaning")
	assert.Equal(t, 1, f.collections.adjustments[collectionID], "counter tracks words, not rows")
}

func TestAddWordTwiceIsIdempotent(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	collectionID := uuid.New()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), collectionID))
	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), collectionID))

	assert.Len(t, f.words.byText, 1)
	assert.Len(t, f.collectionWords.rows, 2)
	assert.Equal(t, 1, f.collections.adjustments[collectionID], "re-add must not bump the counter")
}

func TestAddWordKeepsExistingMeanings(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), uuid.New()))

	// Re-adding with a different definition set does not append meanings.
	altered := sampleDefinition("ephemeral")
	altered.Meanings = append(altered.Meanings, entities.MeaningDefinition{
		PartOfSpeech: "adjective", Definition: "a third sense",
	})
	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", altered, uuid.New()))

	word := f.words.byText["ephemeral"]
	assert.Len(t, f.words.meanings[word.ID], 2)
}

func TestAddWordSharedAcrossCollections(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), first))
	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), second))

	assert.Len(t, f.words.byText, 1, "the word row is shared")
	assert.Len(t, f.collectionWords.rows, 4)
	assert.Equal(t, 1, f.collections.adjustments[first])
	assert.Equal(t, 1, f.collections.adjustments[second])
}

func TestAddWordInsertFailure(t *testing.T) {
	f := newCollectionFixture()
	f.words.insertErr = errBoom

	ok := f.svc.AddWordToCollection(context.Background(), "user-1", sampleDefinition("ephemeral"), uuid.New())
	assert.False(t, ok)
	assert.Empty(t, f.collectionWords.rows)
}

func TestAddWordLinkFailure(t *testing.T) {
	f := newCollectionFixture()
	f.collectionWords.insertErr = errBoom
	collectionID := uuid.New()

	ok := f.svc.AddWordToCollection(context.Background(), "user-1", sampleDefinition("ephemeral"), collectionID)
	assert.False(t, ok, "nothing was linked")
	assert.Equal(t, 0, f.collections.adjustments[collectionID])
}

func TestRemoveWordFromCollection(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	collectionID := uuid.New()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), collectionID))
	wordID := f.words.byText["ephemeral"].ID

	leftVocabulary, err := f.svc.RemoveWordFromCollection(ctx, collectionID, wordID, "user-1")
	require.NoError(t, err)
	assert.True(t, leftVocabulary, "no other collection references the word")

	assert.Empty(t, f.collectionWords.rows)
	assert.Equal(t, 1, f.sessionWords.deletes)
	assert.Equal(t, 0, f.collections.adjustments[collectionID], "+1 on add, -1 on remove")
}

func TestRemoveWordStillReferencedElsewhere(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), first))
	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), second))
	wordID := f.words.byText["ephemeral"].ID

	leftVocabulary, err := f.svc.RemoveWordFromCollection(ctx, first, wordID, "user-1")
	require.NoError(t, err)
	assert.False(t, leftVocabulary)
	assert.Len(t, f.collectionWords.rows, 2, "the other collection keeps its rows")
}

func TestRemoveWordNotInCollection(t *testing.T) {
	f := newCollectionFixture()

	leftVocabulary, err := f.svc.RemoveWordFromCollection(context.Background(), uuid.New(), uuid.New(), "user-1")
	require.NoError(t, err)
	assert.True(t, leftVocabulary)
	assert.Equal(t, 1, f.sessionWords.deletes)
}

func TestRemoveWordHistoryCleanupBestEffort(t *testing.T) {
	f := newCollectionFixture()
	ctx := context.Background()
	collectionID := uuid.New()

	require.True(t, f.svc.AddWordToCollection(ctx, "user-1", sampleDefinition("ephemeral"), collectionID))
	wordID := f.words.byText["ephemeral"].ID

	f.sessionWords.err = errBoom
	leftVocabulary, err := f.svc.RemoveWordFromCollection(ctx, collectionID, wordID, "user-1")
	require.NoError(t, err, "history cleanup failure does not fail the removal")
	assert.True(t, leftVocabulary)
	assert.Empty(t, f.collectionWords.rows)
}

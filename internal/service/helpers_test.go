package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/snapshot"
)

// fakeWordSource serves a fixed batch, or an empty one once drained.
type fakeWordSource struct {
	batch []entities.PracticeWord
	err   error
	calls int
}

func (f *fakeWordSource) GetPracticeBatch(_ context.Context, _ string, limit int) ([]entities.PracticeWord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batch) > limit {
		return f.batch[:limit], nil
	}
	return f.batch, nil
}

type completion struct {
	sessionID      uuid.UUID
	correctAnswers int
	fullyCompleted bool
	recordedCount  int
}

// fakeRecorder captures session lifecycle calls in memory.
type fakeRecorder struct {
	startErr   error
	recordOK   bool
	recorded   []*entities.PracticeSessionWord
	completes  []completion
	sessionIDs []uuid.UUID
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{recordOK: true}
}

func (f *fakeRecorder) Start(_ context.Context, _ string, _ entities.PracticeMode, _ int) (uuid.UUID, error) {
	if f.startErr != nil {
		return uuid.Nil, f.startErr
	}
	id := uuid.New()
	f.sessionIDs = append(f.sessionIDs, id)
	return id, nil
}

func (f *fakeRecorder) Record(_ context.Context, result *entities.PracticeSessionWord) bool {
	if !f.recordOK {
		return false
	}
	f.recorded = append(f.recorded, result)
	return true
}

func (f *fakeRecorder) Complete(_ context.Context, sessionID uuid.UUID, correctAnswers int, fullyCompleted bool, recordedCount int) error {
	f.completes = append(f.completes, completion{
		sessionID:      sessionID,
		correctAnswers: correctAnswers,
		fullyCompleted: fullyCompleted,
		recordedCount:  recordedCount,
	})
	return nil
}

func newTestSnapshots(t *testing.T) *snapshot.Store {
	t.Helper()

	db, err := snapshot.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return snapshot.New(db, 30*time.Minute)
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// makeBatch builds n practice words, each with two meanings, within one
// collection.
func makeBatch(n int) []entities.PracticeWord {
	collectionID := uuid.New()
	batch := make([]entities.PracticeWord, 0, n)
	for i := 0; i < n; i++ {
		wordID := uuid.New()
		batch = append(batch, entities.PracticeWord{
			CollectionID: collectionID,
			WordID:       wordID,
			Text:         fmt.Sprintf("word%d", i),
			Phonetic:     fmt.Sprintf("/word%d/", i),
			Meanings: []entities.Meaning{
				{
					ID:           uuid.New(),
					WordID:       wordID,
					OrdinalIndex: 0,
					PartOfSpeech: "noun",
					Definition:   fmt.Sprintf("definition %d-0", i),
					Examples:     []string{fmt.Sprintf("example with word%d", i)},
				},
				{
					ID:           uuid.New(),
					WordID:       wordID,
					OrdinalIndex: 1,
					PartOfSpeech: "verb",
					Definition:   fmt.Sprintf("definition %d-1", i),
				},
			},
		})
	}
	return batch
}

var errBoom = errors.New("boom")

func testLogger() *zap.Logger {
	return zap.NewNop()
}

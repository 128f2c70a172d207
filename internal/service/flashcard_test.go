package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibox/lexibox/internal/infra/snapshot"
)

func newFlashcardFixture(t *testing.T, batchSize int) (*FlashcardEngine, *fakeWordSource, *fakeRecorder, *snapshot.Store) {
	t.Helper()

	source := &fakeWordSource{batch: makeBatch(batchSize)}
	recorder := newFakeRecorder()
	snapshots := newTestSnapshots(t)

	engine := NewFlashcardEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	return engine, source, recorder, snapshots
}

func TestFlashcardStartEmptyBatch(t *testing.T) {
	engine, _, recorder, _ := newFlashcardFixture(t, 0)

	_, err := engine.Start(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrNoWordsToPractice)
	assert.Empty(t, recorder.sessionIDs)
}

func TestFlashcardFlipRecordsOnce(t *testing.T) {
	engine, _, recorder, _ := newFlashcardFixture(t, 3)
	ctx := context.Background()

	resumed, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, resumed)

	// Flip the first card three times: toggles the face but records once.
	require.NoError(t, engine.Flip(ctx))
	require.NoError(t, engine.Flip(ctx))
	require.NoError(t, engine.Flip(ctx))

	require.Len(t, recorder.recorded, 1)
	assert.True(t, recorder.recorded[0].IsCorrect)

	card, idx, total, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 3, total)
	assert.True(t, card.FlippedOnce)
	assert.True(t, card.Flipped) // odd number of flips
}

func TestFlashcardFullRun(t *testing.T) {
	engine, _, recorder, _ := newFlashcardFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Flip(ctx))
		require.NoError(t, engine.Next())
	}

	summary, err := engine.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Practiced)
	assert.Equal(t, 3, summary.Total)
	assert.True(t, summary.AnyFlipped)

	require.Len(t, recorder.completes, 1)
	done := recorder.completes[0]
	assert.Equal(t, 3, done.correctAnswers)
	assert.True(t, done.fullyCompleted)
	assert.Equal(t, 3, done.recordedCount)

	// Operations after completion report no active session.
	assert.ErrorIs(t, engine.Flip(ctx), ErrNoActiveSession)
	_, err = engine.Finish(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestFlashcardNextStopsAtLastCard(t *testing.T) {
	engine, _, _, _ := newFlashcardFixture(t, 2)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, engine.Next())
	require.NoError(t, engine.Next())
	require.NoError(t, engine.Next())

	_, idx, total, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, total)
}

func TestFlashcardBackWithoutFlips(t *testing.T) {
	engine, _, recorder, _ := newFlashcardFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	practiced, err := engine.Back(ctx)
	require.NoError(t, err)
	assert.False(t, practiced)

	// Nothing recorded: completion reports zero so the tracker deletes
	// instead of finalizing.
	require.Len(t, recorder.completes, 1)
	assert.Equal(t, 0, recorder.completes[0].recordedCount)
	assert.False(t, recorder.completes[0].fullyCompleted)
}

func TestFlashcardContinueStartsFreshSession(t *testing.T) {
	engine, source, recorder, _ := newFlashcardFixture(t, 2)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, engine.Flip(ctx))

	require.NoError(t, engine.Continue(ctx))

	assert.Equal(t, 2, source.calls)
	require.Len(t, recorder.sessionIDs, 2)
	require.Len(t, recorder.completes, 1)
	assert.Equal(t, recorder.sessionIDs[0], recorder.completes[0].sessionID)

	summary, err := engine.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SessionCount)
}

func TestFlashcardSnapshotResume(t *testing.T) {
	source := &fakeWordSource{batch: makeBatch(3)}
	recorder := newFakeRecorder()
	snapshots := newTestSnapshots(t)
	ctx := context.Background()

	engine := NewFlashcardEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, engine.Flip(ctx))
	require.NoError(t, engine.Next())

	// A new engine over the same store picks up where the first left off.
	revived := NewFlashcardEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	resumed, err := revived.Start(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, resumed)

	_, idx, total, err := revived.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, source.calls)

	// The recorded set survived the round-trip: re-flipping the first card
	// after going back there must not record again.
	require.Len(t, recorder.recorded, 1)
}

func TestFlashcardSnapshotOtherUserDiscarded(t *testing.T) {
	source := &fakeWordSource{batch: makeBatch(2)}
	recorder := newFakeRecorder()
	snapshots := newTestSnapshots(t)
	ctx := context.Background()

	engine := NewFlashcardEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	revived := NewFlashcardEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	resumed, err := revived.Start(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, 2, source.calls)
}

func TestFlashcardStartWhileActive(t *testing.T) {
	engine, _, _, _ := newFlashcardFixture(t, 2)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	_, err = engine.Start(ctx, "user-1")
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestFlashcardRecordFailureStaysRetryable(t *testing.T) {
	engine, _, recorder, _ := newFlashcardFixture(t, 2)
	recorder.recordOK = false
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, engine.Flip(ctx))
	assert.Empty(t, recorder.recorded)

	// The card is already practiced, so a later flip does not retry by
	// itself, but the completion sweep sees zero recorded words.
	practiced, err := engine.Back(ctx)
	require.NoError(t, err)
	assert.True(t, practiced)
	require.Len(t, recorder.completes, 1)
	assert.Equal(t, 0, recorder.completes[0].recordedCount)
}

func TestFlashcardSourceError(t *testing.T) {
	source := &fakeWordSource{err: errBoom}
	engine := NewFlashcardEngine(source, newFakeRecorder(), newTestSnapshots(t), 5, testRand(), testLogger())

	_, err := engine.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, errBoom)
}

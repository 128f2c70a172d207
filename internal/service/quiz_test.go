package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizFixture(t *testing.T, batchSize int) (*QuizEngine, *fakeWordSource, *fakeRecorder) {
	t.Helper()

	source := &fakeWordSource{batch: makeBatch(batchSize)}
	recorder := newFakeRecorder()
	engine := NewQuizEngine(source, recorder, newTestSnapshots(t), 5, testRand(), testLogger())
	return engine, source, recorder
}

// answerCurrent selects the given answer kind for the current question and
// returns whether it was the correct option.
func answerCurrent(t *testing.T, engine *QuizEngine, correct bool) {
	t.Helper()

	q, _, _, _, err := engine.Current()
	require.NoError(t, err)

	idx := q.CorrectIndex
	if !correct {
		idx = (q.CorrectIndex + 1) % len(q.Options)
	}
	require.NoError(t, engine.SelectOption(idx))
}

func TestQuizQuestionShape(t *testing.T) {
	engine, _, _ := newQuizFixture(t, 4)

	_, err := engine.Start(context.Background(), "user-1")
	require.NoError(t, err)

	q, selected, idx, total, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 4, total)
	assert.Equal(t, -1, selected)

	require.Len(t, q.Options, 4)
	assert.Contains(t, q.Prompt, "Which word means:")
	assert.True(t, q.CorrectIndex >= 0 && q.CorrectIndex < 4)

	// Options are distinct word texts.
	seen := map[string]bool{}
	for _, opt := range q.Options {
		assert.False(t, seen[opt], "duplicate option %q", opt)
		seen[opt] = true
	}
}

func TestQuizSelectOptionIsOneShot(t *testing.T) {
	engine, _, _ := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	q, _, _, _, err := engine.Current()
	require.NoError(t, err)

	require.NoError(t, engine.SelectOption(q.CorrectIndex))
	score, _ := engine.Score()
	assert.Equal(t, 1, score)

	// Re-selecting, correct or not, changes nothing.
	require.NoError(t, engine.SelectOption(q.CorrectIndex))
	require.NoError(t, engine.SelectOption((q.CorrectIndex+1)%4))

	score, _ = engine.Score()
	assert.Equal(t, 1, score)

	_, selected, _, _, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, q.CorrectIndex, selected)
}

func TestQuizSelectOptionOutOfRange(t *testing.T) {
	engine, _, _ := newQuizFixture(t, 2)

	_, err := engine.Start(context.Background(), "user-1")
	require.NoError(t, err)

	assert.ErrorIs(t, engine.SelectOption(-1), ErrInvalidOption)
	assert.ErrorIs(t, engine.SelectOption(4), ErrInvalidOption)
}

func TestQuizNextRecordsAnswerOnce(t *testing.T) {
	engine, _, recorder := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))
	require.Len(t, recorder.recorded, 1)
	assert.True(t, recorder.recorded[0].IsCorrect)

	// Going back and forward over the same question must not re-record.
	require.NoError(t, engine.Previous())
	require.NoError(t, engine.Next(ctx))
	require.Len(t, recorder.recorded, 1)
}

func TestQuizPreviousRestoresSelection(t *testing.T) {
	engine, _, _ := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	q, _, _, _, err := engine.Current()
	require.NoError(t, err)
	picked := (q.CorrectIndex + 1) % len(q.Options)
	require.NoError(t, engine.SelectOption(picked))
	require.NoError(t, engine.Next(ctx))

	require.NoError(t, engine.Previous())
	_, selected, idx, _, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, picked, selected)
}

func TestQuizFullRunScoring(t *testing.T) {
	engine, _, recorder := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))
	answerCurrent(t, engine, false)
	require.NoError(t, engine.Next(ctx))
	answerCurrent(t, engine, true)

	summary, err := engine.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 2, summary.TotalScore)
	assert.Equal(t, 3, summary.Total)

	// The last answer was flushed by Finish.
	require.Len(t, recorder.recorded, 3)
	require.Len(t, recorder.completes, 1)
	done := recorder.completes[0]
	assert.Equal(t, 2, done.correctAnswers)
	assert.True(t, done.fullyCompleted)
	assert.Equal(t, 3, done.recordedCount)
}

func TestQuizContinueCarriesTotalScore(t *testing.T) {
	engine, source, recorder := newQuizFixture(t, 2)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))
	answerCurrent(t, engine, true)

	require.NoError(t, engine.Continue(ctx))

	assert.Equal(t, 2, source.calls)
	require.Len(t, recorder.sessionIDs, 2)

	score, totalScore := engine.Score()
	assert.Equal(t, 0, score)
	assert.Equal(t, 2, totalScore)

	answerCurrent(t, engine, true)
	summary, err := engine.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 3, summary.TotalScore)
	assert.Equal(t, 1, summary.SessionCount)
}

func TestQuizBackFlushesPendingAnswer(t *testing.T) {
	engine, _, recorder := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)

	answered, err := engine.Back(ctx)
	require.NoError(t, err)
	assert.True(t, answered)

	require.Len(t, recorder.recorded, 1)
	require.Len(t, recorder.completes, 1)
	assert.False(t, recorder.completes[0].fullyCompleted)
	assert.Equal(t, 1, recorder.completes[0].recordedCount)
}

func TestQuizBackWithoutAnswers(t *testing.T) {
	engine, _, recorder := newQuizFixture(t, 3)
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answered, err := engine.Back(ctx)
	require.NoError(t, err)
	assert.False(t, answered)
	require.Len(t, recorder.completes, 1)
	assert.Equal(t, 0, recorder.completes[0].recordedCount)
}

func TestQuizBackReportsSelectionsDespiteRecordFailures(t *testing.T) {
	// The answered flag follows the in-memory selections, not the durable
	// writes: a user who picked answers gets acknowledged even when the
	// store rejected every record.
	engine, _, recorder := newQuizFixture(t, 3)
	recorder.recordOK = false
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)

	answered, err := engine.Back(ctx)
	require.NoError(t, err)
	assert.True(t, answered)

	assert.Empty(t, recorder.recorded)
	require.Len(t, recorder.completes, 1)
	assert.Equal(t, 0, recorder.completes[0].recordedCount)
}

func TestQuizSnapshotResume(t *testing.T) {
	source := &fakeWordSource{batch: makeBatch(3)}
	recorder := newFakeRecorder()
	snapshots := newTestSnapshots(t)
	ctx := context.Background()

	engine := NewQuizEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))

	revived := NewQuizEngine(source, recorder, snapshots, 5, testRand(), testLogger())
	resumed, err := revived.Start(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, resumed)

	_, selected, idx, total, err := revived.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 3, total)
	assert.Equal(t, -1, selected)
	assert.Equal(t, 1, source.calls)

	score, _ := revived.Score()
	assert.Equal(t, 1, score)

	// The recorded-answer set survived: revisiting question 0 and moving
	// forward again records nothing new.
	require.NoError(t, revived.Previous())
	require.NoError(t, revived.Next(ctx))
	require.Len(t, recorder.recorded, 1)
}

func TestQuizSameWordTwiceRecordsPerQuestion(t *testing.T) {
	// The same word in two questions of one session must record once per
	// question ordinal, not once overall.
	batch := makeBatch(1)
	dup := batch[0]
	batch = append(batch, dup)

	source := &fakeWordSource{batch: batch}
	recorder := newFakeRecorder()
	engine := NewQuizEngine(source, recorder, newTestSnapshots(t), 5, testRand(), testLogger())
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))
	answerCurrent(t, engine, true)
	_, err = engine.Finish(ctx)
	require.NoError(t, err)

	require.Len(t, recorder.recorded, 2)
	assert.Equal(t, recorder.recorded[0].WordID, recorder.recorded[1].WordID)
	assert.Equal(t, 2, recorder.completes[0].recordedCount)
}

func TestQuizOperationsOutsideSession(t *testing.T) {
	engine, _, _ := newQuizFixture(t, 2)
	ctx := context.Background()

	assert.ErrorIs(t, engine.SelectOption(0), ErrNoActiveSession)
	assert.ErrorIs(t, engine.Next(ctx), ErrNoActiveSession)
	assert.ErrorIs(t, engine.Previous(), ErrNoActiveSession)
	_, err := engine.Finish(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestQuizEmptyBatch(t *testing.T) {
	source := &fakeWordSource{}
	engine := NewQuizEngine(source, newFakeRecorder(), newTestSnapshots(t), 5, testRand(), testLogger())

	_, err := engine.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoWordsToPractice)
}

func TestQuizRecordFailureRetriesOnNextNavigation(t *testing.T) {
	engine, _, recorder := newQuizFixture(t, 2)
	recorder.recordOK = false
	ctx := context.Background()

	_, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)

	answerCurrent(t, engine, true)
	require.NoError(t, engine.Next(ctx))
	assert.Empty(t, recorder.recorded)

	// The key was never marked, so once the store recovers the answer is
	// written by the next navigation over the question.
	recorder.recordOK = true
	require.NoError(t, engine.Previous())
	require.NoError(t, engine.Next(ctx))
	require.Len(t, recorder.recorded, 1)
}

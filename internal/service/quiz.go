package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/snapshot"
)

const noSelection = -1

// AnsweredQuestion is the per-question record kept for review navigation.
type AnsweredQuestion struct {
	Ordinal        int  `json:"ordinal"`
	SelectedOption int  `json:"selectedOption"`
	IsCorrect      bool `json:"isCorrect"`
}

// quizState is the snapshot-serialized state of one quiz run.
// RecordedAnswerKeys is keyed by (question ordinal, word id), so the same
// word appearing in two questions of one session records once per
// question, never colliding across collections.
type quizState struct {
	UserID             string              `json:"userId"`
	SessionID          uuid.UUID           `json:"sessionId"`
	Questions          []entities.Question `json:"questions"`
	CurrentIndex       int                 `json:"currentIndex"`
	SelectedOption     int                 `json:"selectedOption"`
	Score              int                 `json:"score"`
	TotalScore         int                 `json:"totalScore"` // accumulated across continued sessions
	SessionCount       int                 `json:"sessionCount"`
	Answered           []AnsweredQuestion  `json:"answered"`
	RecordedAnswerKeys map[string]bool     `json:"recordedAnswerKeys"`
}

// QuizSummary reports the outcome of a finished quiz run.
type QuizSummary struct {
	Score        int `json:"score"`
	TotalScore   int `json:"totalScore"`
	Total        int `json:"total"`
	SessionCount int `json:"sessionCount"`
}

// QuizEngine drives a multiple-choice quiz over practice-eligible words.
// Selecting an option scores immediately; the durable record is written on
// navigation (next/finish/continue), idempotently per question.
type QuizEngine struct {
	mu sync.Mutex

	source    WordSource
	recorder  PracticeRecorder
	snapshots SnapshotStore
	options   *OptionGenerator
	logger    *zap.Logger
	rng       *rand.Rand
	capacity  int

	phase enginePhase
	state quizState
}

// NewQuizEngine creates a quiz engine. The random source drives meaning
// choice and option placement; tests inject a seeded one.
func NewQuizEngine(
	source WordSource,
	recorder PracticeRecorder,
	snapshots SnapshotStore,
	capacity int,
	rng *rand.Rand,
	logger *zap.Logger,
) *QuizEngine {
	return &QuizEngine{
		source:    source,
		recorder:  recorder,
		snapshots: snapshots,
		options:   NewOptionGenerator(rng),
		logger:    logger,
		rng:       rng,
		capacity:  capacity,
		phase:     phaseIdle,
	}
}

// quizSnapshotKey scopes the snapshot slot to one user, so one user's
// in-flight run never clobbers another's.
func quizSnapshotKey(userID string) string {
	return snapshot.KeyQuiz + "/" + userID
}

// Start begins a quiz run for the user, resuming a snapshotted session
// when one is still fresh. Returns whether the run was resumed.
func (e *QuizEngine) Start(ctx context.Context, userID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == phaseActive {
		return false, ErrSessionActive
	}

	var restored quizState
	if err := e.snapshots.Load(quizSnapshotKey(userID), &restored); err == nil {
		if restored.UserID == userID && len(restored.Questions) > 0 &&
			restored.CurrentIndex < len(restored.Questions) {
			e.state = restored
			if e.state.RecordedAnswerKeys == nil {
				e.state.RecordedAnswerKeys = make(map[string]bool)
			}
			e.phase = phaseActive
			return true, nil
		}
		_ = e.snapshots.Clear(quizSnapshotKey(userID))
	}

	if err := e.loadSession(ctx, userID, 0, 0); err != nil {
		return false, err
	}

	return false, nil
}

// loadSession fetches a batch, generates questions and opens a new durable
// session. Caller holds the lock.
func (e *QuizEngine) loadSession(ctx context.Context, userID string, sessionCount, totalScore int) error {
	batch, err := e.source.GetPracticeBatch(ctx, userID, e.capacity)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		e.phase = phaseClosed
		return ErrNoWordsToPractice
	}

	sessionID, err := e.recorder.Start(ctx, userID, entities.ModeQuiz, len(batch))
	if err != nil {
		e.phase = phaseClosed
		return err
	}

	questions := make([]entities.Question, 0, len(batch))
	for i, word := range batch {
		questions = append(questions, e.buildQuestion(i, word, batch))
	}

	e.state = quizState{
		UserID:             userID,
		SessionID:          sessionID,
		Questions:          questions,
		SelectedOption:     noSelection,
		TotalScore:         totalScore,
		SessionCount:       sessionCount,
		RecordedAnswerKeys: make(map[string]bool),
	}
	e.phase = phaseActive
	e.persist()

	return nil
}

// buildQuestion asks for the word matching one of its definitions. The
// meaning is chosen at random when the word has several.
func (e *QuizEngine) buildQuestion(ordinal int, word entities.PracticeWord, batch []entities.PracticeWord) entities.Question {
	var meaning entities.Meaning
	if n := len(word.Meanings); n > 0 {
		meaning = word.Meanings[e.rng.Intn(n)]
	}

	options, correctIndex := e.options.Generate(word, batch)

	return entities.Question{
		Ordinal:      ordinal,
		Prompt:       fmt.Sprintf("Which word means: %s", meaning.Definition),
		Options:      options,
		CorrectIndex: correctIndex,
		WordID:       word.WordID,
		MeaningID:    meaning.ID,
		CollectionID: word.CollectionID,
	}
}

// SelectOption picks an answer for the current question. Selection is a
// one-shot action per question: repeated calls while an option is already
// selected do not change the answer or the score.
func (e *QuizEngine) SelectOption(idx int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	q := e.state.Questions[e.state.CurrentIndex]
	if idx < 0 || idx >= len(q.Options) {
		return fmt.Errorf("%w: %d", ErrInvalidOption, idx)
	}

	if e.state.SelectedOption != noSelection {
		return nil
	}

	e.state.SelectedOption = idx
	isCorrect := idx == q.CorrectIndex
	if isCorrect {
		e.state.Score++
	}

	// The answered log is the selection memory for backwards navigation; it
	// is written here, not on recording, so a failed durable write still
	// keeps the user's pick visible when they revisit the question.
	e.state.Answered = append(e.state.Answered, AnsweredQuestion{
		Ordinal:        q.Ordinal,
		SelectedOption: idx,
		IsCorrect:      isCorrect,
	})

	e.persist()
	return nil
}

// answerKey dedups answer recording by session-local question ordinal and
// word id.
func answerKey(q entities.Question) string {
	return fmt.Sprintf("%d:%s", q.Ordinal, q.WordID)
}

// recordPending writes the durable record for the currently selected
// answer, once per question. Caller holds the lock.
func (e *QuizEngine) recordPending(ctx context.Context) {
	if e.state.SelectedOption == noSelection {
		return
	}

	q := e.state.Questions[e.state.CurrentIndex]
	key := answerKey(q)
	if e.state.RecordedAnswerKeys[key] {
		return
	}

	isCorrect := e.state.SelectedOption == q.CorrectIndex
	result := entities.NewPracticeSessionWord(
		e.state.SessionID,
		e.state.UserID,
		q.WordID,
		q.MeaningID,
		q.CollectionID,
		isCorrect,
	)

	// A failed write leaves the key unmarked, so the answer is retried on
	// the next navigation over this question.
	if e.recorder.Record(ctx, result) {
		e.state.RecordedAnswerKeys[key] = true
	}
}

// Next records the just-answered question and advances. A no-op past the
// last question.
func (e *QuizEngine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	e.recordPending(ctx)

	if e.state.CurrentIndex < len(e.state.Questions)-1 {
		e.state.CurrentIndex++
		e.state.SelectedOption = noSelection
	}

	e.persist()
	return nil
}

// Previous moves back one question and restores the earlier selection from
// the answered log. Best-effort: an unanswered question restores to no
// selection.
func (e *QuizEngine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	if e.state.CurrentIndex > 0 {
		e.state.CurrentIndex--
		e.state.SelectedOption = e.selectionFor(e.state.CurrentIndex)
	}

	e.persist()
	return nil
}

func (e *QuizEngine) selectionFor(ordinal int) int {
	for _, a := range e.state.Answered {
		if a.Ordinal == ordinal {
			return a.SelectedOption
		}
	}
	return noSelection
}

// Finish flushes the pending answer and ends the run as fully completed.
func (e *QuizEngine) Finish(ctx context.Context) (*QuizSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return nil, ErrNoActiveSession
	}

	e.recordPending(ctx)
	summary := e.summary()

	if err := e.complete(ctx, true); err != nil {
		return nil, err
	}

	return summary, nil
}

// Continue completes the current run and starts a fresh one, carrying the
// accumulated total score forward.
func (e *QuizEngine) Continue(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	e.recordPending(ctx)

	userID := e.state.UserID
	nextCount := e.state.SessionCount + 1
	totalScore := e.state.TotalScore + e.state.Score

	if err := e.complete(ctx, true); err != nil {
		return err
	}

	return e.loadSession(ctx, userID, nextCount, totalScore)
}

// Back ends the run early, flushing any pending answer first. Reports
// whether any question was answered, judged by the in-memory answered
// log: a selection counts even when its durable write failed.
func (e *QuizEngine) Back(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return false, ErrNoActiveSession
	}

	e.recordPending(ctx)
	answered := len(e.state.Answered) > 0

	if err := e.complete(ctx, false); err != nil {
		return false, err
	}

	return answered, nil
}

// complete runs the one-shot completion sweep. Caller holds the lock.
func (e *QuizEngine) complete(ctx context.Context, fullyCompleted bool) error {
	if e.phase != phaseActive {
		return ErrNoActiveSession
	}
	e.phase = phaseCompleting

	recorded := len(e.state.RecordedAnswerKeys)
	if err := e.recorder.Complete(ctx, e.state.SessionID, e.state.Score, fullyCompleted, recorded); err != nil {
		e.logger.Warn("complete quiz session failed",
			zap.String("session", e.state.SessionID.String()), zap.Error(err))
	}

	if err := e.snapshots.Clear(quizSnapshotKey(e.state.UserID)); err != nil {
		e.logger.Warn("clear quiz snapshot failed", zap.Error(err))
	}

	e.phase = phaseClosed
	return nil
}

// Current returns the question under review, the current selection and the
// run's position.
func (e *QuizEngine) Current() (*entities.Question, int, int, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return nil, 0, 0, 0, ErrNoActiveSession
	}

	q := e.state.Questions[e.state.CurrentIndex]
	return &q, e.state.SelectedOption, e.state.CurrentIndex, len(e.state.Questions), nil
}

// Score returns the current per-session and accumulated scores.
func (e *QuizEngine) Score() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Score, e.state.TotalScore
}

func (e *QuizEngine) summary() *QuizSummary {
	return &QuizSummary{
		Score:        e.state.Score,
		TotalScore:   e.state.TotalScore + e.state.Score,
		Total:        len(e.state.Questions),
		SessionCount: e.state.SessionCount,
	}
}

// persist snapshots the full state. Caller holds the lock.
func (e *QuizEngine) persist() {
	if err := e.snapshots.Save(quizSnapshotKey(e.state.UserID), e.state); err != nil {
		e.logger.Warn("save quiz snapshot failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/infra/snapshot"
)

// CardSide is the face of a flashcard shown before the first flip.
type CardSide string

const (
	SideWord       CardSide = "word"
	SideDefinition CardSide = "definition"
)

// FlashcardCard is one card of a flashcard run: a practice word with the
// meaning and example chosen for this session, plus per-card flip state.
type FlashcardCard struct {
	Word         entities.PracticeWord `json:"word"`
	MeaningIndex int                   `json:"meaningIndex"`
	ExampleIndex int                   `json:"exampleIndex"` // -1 when the meaning has no examples
	InitialSide  CardSide              `json:"initialSide"`
	Flipped      bool                  `json:"flipped"`
	FlippedOnce  bool                  `json:"flippedOnce"`
}

// Meaning returns the meaning chosen for this card.
func (c *FlashcardCard) Meaning() entities.Meaning {
	return c.Word.Meanings[c.MeaningIndex]
}

// flashcardState is the snapshot-serialized state of one flashcard run.
// RecordedWordKeys must survive snapshot round-trips verbatim: it is what
// prevents re-recording a card after a restore.
type flashcardState struct {
	UserID           string                `json:"userId"`
	SessionID        uuid.UUID             `json:"sessionId"`
	Cards            []FlashcardCard       `json:"cards"`
	CurrentIndex     int                   `json:"currentIndex"`
	PracticedWords   []uuid.UUID           `json:"practicedWords"`
	RecordedWordKeys map[string]bool       `json:"recordedWordKeys"`
	SessionCount     int                   `json:"sessionCount"`
	Mode             entities.PracticeMode `json:"mode"`
}

// FlashcardSummary reports the outcome of a finished flashcard run.
type FlashcardSummary struct {
	Practiced    int  `json:"practiced"`
	Total        int  `json:"total"`
	SessionCount int  `json:"sessionCount"`
	AnyFlipped   bool `json:"anyFlipped"`
}

// FlashcardEngine drives a sequence of flashcard reviews. It is
// presentation-independent: delivery only calls its operations and renders
// the returned state. State is snapshotted after every mutation so an
// in-progress run survives teardown within the staleness window.
type FlashcardEngine struct {
	mu sync.Mutex

	source    WordSource
	recorder  PracticeRecorder
	snapshots SnapshotStore
	logger    *zap.Logger
	rng       *rand.Rand
	capacity  int

	phase enginePhase
	state flashcardState
}

// NewFlashcardEngine creates a flashcard engine. The random source decides
// meaning/example picks and initial card faces; tests inject a seeded one.
func NewFlashcardEngine(
	source WordSource,
	recorder PracticeRecorder,
	snapshots SnapshotStore,
	capacity int,
	rng *rand.Rand,
	logger *zap.Logger,
) *FlashcardEngine {
	return &FlashcardEngine{
		source:    source,
		recorder:  recorder,
		snapshots: snapshots,
		logger:    logger,
		rng:       rng,
		capacity:  capacity,
		phase:     phaseIdle,
	}
}

// flashcardSnapshotKey scopes the snapshot slot to one user, so one
// user's in-flight run never clobbers another's.
func flashcardSnapshotKey(userID string) string {
	return snapshot.KeyFlashcard + "/" + userID
}

// Start begins a flashcard run for the user, resuming a snapshotted
// session when one is still fresh. Returns whether the run was resumed.
func (e *FlashcardEngine) Start(ctx context.Context, userID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == phaseActive {
		return false, ErrSessionActive
	}

	var restored flashcardState
	if err := e.snapshots.Load(flashcardSnapshotKey(userID), &restored); err == nil {
		if restored.UserID == userID && len(restored.Cards) > 0 &&
			restored.CurrentIndex < len(restored.Cards) {
			e.state = restored
			if e.state.RecordedWordKeys == nil {
				e.state.RecordedWordKeys = make(map[string]bool)
			}
			e.phase = phaseActive
			return true, nil
		}
		// A snapshot for another user or with out-of-range state is not
		// resumable.
		_ = e.snapshots.Clear(flashcardSnapshotKey(userID))
	}

	if err := e.loadSession(ctx, userID, 0); err != nil {
		return false, err
	}

	return false, nil
}

// loadSession fetches a fresh batch and opens a new durable session.
// Caller holds the lock.
func (e *FlashcardEngine) loadSession(ctx context.Context, userID string, sessionCount int) error {
	batch, err := e.source.GetPracticeBatch(ctx, userID, e.capacity)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		e.phase = phaseClosed
		return ErrNoWordsToPractice
	}

	sessionID, err := e.recorder.Start(ctx, userID, entities.ModeFlashcard, len(batch))
	if err != nil {
		e.phase = phaseClosed
		return err
	}

	cards := make([]FlashcardCard, 0, len(batch))
	for _, word := range batch {
		cards = append(cards, e.buildCard(word))
	}

	e.state = flashcardState{
		UserID:           userID,
		SessionID:        sessionID,
		Cards:            cards,
		RecordedWordKeys: make(map[string]bool),
		SessionCount:     sessionCount,
		Mode:             entities.ModeFlashcard,
	}
	e.phase = phaseActive
	e.persist()

	return nil
}

// buildCard picks a meaning, an example and the initial face for a card.
// A word with several meanings gets one chosen uniformly at random; the
// variety is intentional.
func (e *FlashcardEngine) buildCard(word entities.PracticeWord) FlashcardCard {
	card := FlashcardCard{
		Word:         word,
		ExampleIndex: -1,
		InitialSide:  SideWord,
	}

	if n := len(word.Meanings); n > 0 {
		card.MeaningIndex = e.rng.Intn(n)
		if examples := word.Meanings[card.MeaningIndex].Examples; len(examples) > 0 {
			card.ExampleIndex = e.rng.Intn(len(examples))
		}
	}

	if e.rng.Intn(2) == 0 {
		card.InitialSide = SideDefinition
	}

	return card
}

// Flip turns the current card. The first flip of a card marks it practiced
// and records the outcome exactly once; later flips only toggle the face.
func (e *FlashcardEngine) Flip(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	card := &e.state.Cards[e.state.CurrentIndex]
	card.Flipped = !card.Flipped

	if !card.FlippedOnce {
		card.FlippedOnce = true
		e.state.PracticedWords = append(e.state.PracticedWords, card.Word.WordID)
		e.recordCard(ctx, card)
	}

	e.persist()
	return nil
}

// recordCard records the card's practice outcome once per session. Caller
// holds the lock.
func (e *FlashcardEngine) recordCard(ctx context.Context, card *FlashcardCard) {
	key := card.Word.WordID.String()
	if e.state.RecordedWordKeys[key] {
		return
	}

	var meaningID uuid.UUID
	if len(card.Word.Meanings) > 0 {
		meaningID = card.Meaning().ID
	}

	result := entities.NewPracticeSessionWord(
		e.state.SessionID,
		e.state.UserID,
		card.Word.WordID,
		meaningID,
		card.Word.CollectionID,
		true, // flipping through a card counts as a successful review
	)

	// A failed write leaves the key unmarked, so the card stays retryable
	// on a later flip or during the completion sweep.
	if e.recorder.Record(ctx, result) {
		e.state.RecordedWordKeys[key] = true
	}
}

// Next advances to the following card. A no-op on the last card: the
// caller finishes or continues instead.
func (e *FlashcardEngine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return ErrNoActiveSession
	}

	if e.state.CurrentIndex < len(e.state.Cards)-1 {
		e.state.CurrentIndex++
		e.persist()
	}

	return nil
}

// Finish ends the run as fully completed.
func (e *FlashcardEngine) Finish(ctx context.Context) (*FlashcardSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	summary := e.summary()
	if err := e.complete(ctx, true); err != nil {
		return nil, err
	}

	return summary, nil
}

// Continue completes the current run and immediately starts a fresh one
// with a new word batch.
func (e *FlashcardEngine) Continue(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	userID := e.state.UserID
	nextCount := e.state.SessionCount + 1

	if err := e.complete(ctx, true); err != nil {
		return err
	}

	return e.loadSession(ctx, userID, nextCount)
}

// Back ends the run early. Reports whether any card was practiced, so the
// caller knows to show a completion acknowledgment.
func (e *FlashcardEngine) Back(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	practiced := len(e.state.PracticedWords) > 0
	if err := e.complete(ctx, false); err != nil {
		return false, err
	}

	return practiced, nil
}

// complete runs the one-shot completion sweep. Caller holds the lock.
func (e *FlashcardEngine) complete(ctx context.Context, fullyCompleted bool) error {
	if e.phase != phaseActive {
		return ErrNoActiveSession
	}
	e.phase = phaseCompleting

	recorded := len(e.state.RecordedWordKeys)
	if err := e.recorder.Complete(ctx, e.state.SessionID, recorded, fullyCompleted, recorded); err != nil {
		e.logger.Warn("complete flashcard session failed",
			zap.String("session", e.state.SessionID.String()), zap.Error(err))
	}

	if err := e.snapshots.Clear(flashcardSnapshotKey(e.state.UserID)); err != nil {
		e.logger.Warn("clear flashcard snapshot failed", zap.Error(err))
	}

	e.phase = phaseClosed
	return nil
}

// Current returns the card under review and the run's position.
func (e *FlashcardEngine) Current() (*FlashcardCard, int, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return nil, 0, 0, ErrNoActiveSession
	}

	card := e.state.Cards[e.state.CurrentIndex]
	return &card, e.state.CurrentIndex, len(e.state.Cards), nil
}

func (e *FlashcardEngine) summary() *FlashcardSummary {
	return &FlashcardSummary{
		Practiced:    len(e.state.PracticedWords),
		Total:        len(e.state.Cards),
		SessionCount: e.state.SessionCount,
		AnyFlipped:   len(e.state.PracticedWords) > 0,
	}
}

// persist snapshots the full state. Failures are logged, never fatal: the
// run continues in memory. Caller holds the lock.
func (e *FlashcardEngine) persist() {
	if err := e.snapshots.Save(flashcardSnapshotKey(e.state.UserID), e.state); err != nil {
		e.logger.Warn("save flashcard snapshot failed", zap.Error(err))
	}
}

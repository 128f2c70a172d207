package service

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// PracticeHub hands out the game engines, one pair per user. An engine
// holds the in-flight run of exactly one user, so sharing an instance
// across callers would let one user act on another's session; the hub
// keeps that from happening by scoping every engine to the identity that
// asked for it. Engines are created on first use and reused afterwards,
// which also preserves their in-memory run across requests.
type PracticeHub struct {
	mu sync.Mutex

	source    WordSource
	recorder  PracticeRecorder
	snapshots SnapshotStore
	capacity  int
	newRand   func() *rand.Rand
	logger    *zap.Logger

	flashcards map[string]*FlashcardEngine
	quizzes    map[string]*QuizEngine
}

// NewPracticeHub creates the per-user engine registry. newRand builds a
// private random source for each engine: rand.Rand is not safe for
// concurrent use, so engines never share one.
func NewPracticeHub(
	source WordSource,
	recorder PracticeRecorder,
	snapshots SnapshotStore,
	capacity int,
	newRand func() *rand.Rand,
	logger *zap.Logger,
) *PracticeHub {
	return &PracticeHub{
		source:     source,
		recorder:   recorder,
		snapshots:  snapshots,
		capacity:   capacity,
		newRand:    newRand,
		logger:     logger,
		flashcards: make(map[string]*FlashcardEngine),
		quizzes:    make(map[string]*QuizEngine),
	}
}

// Flashcards returns the user's flashcard engine, creating it on first use.
func (h *PracticeHub) Flashcards(userID string) *FlashcardEngine {
	h.mu.Lock()
	defer h.mu.Unlock()

	engine, ok := h.flashcards[userID]
	if !ok {
		engine = NewFlashcardEngine(
			h.source, h.recorder, h.snapshots, h.capacity, h.newRand(), h.logger)
		h.flashcards[userID] = engine
	}

	return engine
}

// Quizzes returns the user's quiz engine, creating it on first use.
func (h *PracticeHub) Quizzes(userID string) *QuizEngine {
	h.mu.Lock()
	defer h.mu.Unlock()

	engine, ok := h.quizzes[userID]
	if !ok {
		engine = NewQuizEngine(
			h.source, h.recorder, h.snapshots, h.capacity, h.newRand(), h.logger)
		h.quizzes[userID] = engine
	}

	return engine
}

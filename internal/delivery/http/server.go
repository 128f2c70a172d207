// Package http exposes the vocabulary services over a JSON API. Handlers
// are thin: they bind requests, call one service operation and render the
// result; all consistency rules live below.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
	"github.com/lexibox/lexibox/internal/service"
)

// userIDHeader carries the caller's identity. There is no auth layer; the
// identifier scopes all data access.
const userIDHeader = "X-User-ID"

// Vocabulary resolves words to dictionary-backed definitions. Analyze and
// generate also return related topics for follow-up suggestions; the
// extraction endpoints are only registered when ExtractionEnabled reports
// an extraction client is configured.
type Vocabulary interface {
	AnalyzeText(ctx context.Context, text string, limit int) ([]*entities.WordDefinition, []string, error)
	GenerateByTopic(ctx context.Context, topic string, limit int) ([]*entities.WordDefinition, []string, error)
	LookupWord(ctx context.Context, word string) (*entities.WordDefinition, error)
	ExtractionEnabled() bool
}

// Collections manages user collections and their words.
type Collections interface {
	GetOrCreateCollection(ctx context.Context, userID, name string) (*entities.Collection, error)
	GetCollection(ctx context.Context, id uuid.UUID, userID string) (*entities.Collection, error)
	ListCollections(ctx context.Context, userID string) ([]*entities.Collection, error)
	GetCollectionWords(ctx context.Context, collectionID uuid.UUID, userID string) ([]*entities.CollectionWord, error)
	AddWordToCollection(ctx context.Context, userID string, def *entities.WordDefinition, collectionID uuid.UUID) bool
	RemoveWordFromCollection(ctx context.Context, collectionID, wordID uuid.UUID, userID string) (bool, error)
}

// Server wires the services into a gin router. Game engines are resolved
// per request through the hub, keyed by the caller's identity, so one
// user's practice operations can never touch another user's run.
type Server struct {
	vocabulary  Vocabulary
	collections Collections
	hub         *service.PracticeHub
	logger      *zap.Logger
}

// NewServer creates the HTTP server facade.
func NewServer(
	vocabulary Vocabulary,
	collections Collections,
	hub *service.PracticeHub,
	logger *zap.Logger,
) *Server {
	return &Server{
		vocabulary:  vocabulary,
		collections: collections,
		hub:         hub,
		logger:      logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", s.requireUser)
	{
		if s.vocabulary.ExtractionEnabled() {
			api.POST("/analyze", s.handleAnalyze)
			api.POST("/topics", s.handleTopics)
		}
		api.GET("/words/:word", s.handleLookupWord)

		api.GET("/collections", s.handleListCollections)
		api.POST("/collections", s.handleCreateCollection)
		api.GET("/collections/:id", s.handleGetCollection)
		api.GET("/collections/:id/words", s.handleListCollectionWords)
		api.POST("/collections/:id/words", s.handleAddWord)
		api.DELETE("/collections/:id/words/:wordId", s.handleRemoveWord)

		flashcard := api.Group("/practice/flashcard")
		{
			flashcard.POST("/start", s.handleFlashcardStart)
			flashcard.GET("/current", s.handleFlashcardCurrent)
			flashcard.POST("/flip", s.handleFlashcardFlip)
			flashcard.POST("/next", s.handleFlashcardNext)
			flashcard.POST("/finish", s.handleFlashcardFinish)
			flashcard.POST("/continue", s.handleFlashcardContinue)
			flashcard.POST("/back", s.handleFlashcardBack)
		}

		quiz := api.Group("/practice/quiz")
		{
			quiz.POST("/start", s.handleQuizStart)
			quiz.GET("/current", s.handleQuizCurrent)
			quiz.POST("/select", s.handleQuizSelect)
			quiz.POST("/next", s.handleQuizNext)
			quiz.POST("/previous", s.handleQuizPrevious)
			quiz.POST("/finish", s.handleQuizFinish)
			quiz.POST("/continue", s.handleQuizContinue)
			quiz.POST("/back", s.handleQuizBack)
		}
	}

	return router
}

// requireUser rejects requests without a caller identity.
func (s *Server) requireUser(c *gin.Context) {
	if c.GetHeader(userIDHeader) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + userIDHeader + " header"})
		return
	}
	c.Next()
}

func userID(c *gin.Context) string {
	return c.GetHeader(userIDHeader)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// renderEngineError maps the shared engine errors onto HTTP statuses.
func (s *Server) renderEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoWordsToPractice):
		c.JSON(http.StatusNotFound, gin.H{"error": "no words available to practice"})
	case errors.Is(err, service.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{"error": "no active practice session"})
	case errors.Is(err, service.ErrSessionActive):
		c.JSON(http.StatusConflict, gin.H{"error": "a practice session is already active"})
	case errors.Is(err, service.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option index"})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexibox/lexibox/internal/service"
)

// flashcards resolves the caller's own flashcard engine.
func (s *Server) flashcards(c *gin.Context) *service.FlashcardEngine {
	return s.hub.Flashcards(userID(c))
}

// quizzes resolves the caller's own quiz engine.
func (s *Server) quizzes(c *gin.Context) *service.QuizEngine {
	return s.hub.Quizzes(userID(c))
}

// handleFlashcardStart handles POST /api/practice/flashcard/start.
func (s *Server) handleFlashcardStart(c *gin.Context) {
	resumed, err := s.flashcards(c).Start(c.Request.Context(), userID(c))
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumed": resumed})
}

// handleFlashcardCurrent handles GET /api/practice/flashcard/current.
func (s *Server) handleFlashcardCurrent(c *gin.Context) {
	card, index, total, err := s.flashcards(c).Current()
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card, "index": index, "total": total})
}

// handleFlashcardFlip handles POST /api/practice/flashcard/flip.
func (s *Server) handleFlashcardFlip(c *gin.Context) {
	if err := s.flashcards(c).Flip(c.Request.Context()); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleFlashcardCurrent(c)
}

// handleFlashcardNext handles POST /api/practice/flashcard/next.
func (s *Server) handleFlashcardNext(c *gin.Context) {
	if err := s.flashcards(c).Next(); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleFlashcardCurrent(c)
}

// handleFlashcardFinish handles POST /api/practice/flashcard/finish.
func (s *Server) handleFlashcardFinish(c *gin.Context) {
	summary, err := s.flashcards(c).Finish(c.Request.Context())
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleFlashcardContinue handles POST /api/practice/flashcard/continue.
func (s *Server) handleFlashcardContinue(c *gin.Context) {
	if err := s.flashcards(c).Continue(c.Request.Context()); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleFlashcardCurrent(c)
}

// handleFlashcardBack handles POST /api/practice/flashcard/back: leave the
// game early.
func (s *Server) handleFlashcardBack(c *gin.Context) {
	practiced, err := s.flashcards(c).Back(c.Request.Context())
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"practiced": practiced})
}

// handleQuizStart handles POST /api/practice/quiz/start.
func (s *Server) handleQuizStart(c *gin.Context) {
	resumed, err := s.quizzes(c).Start(c.Request.Context(), userID(c))
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumed": resumed})
}

// handleQuizCurrent handles GET /api/practice/quiz/current.
func (s *Server) handleQuizCurrent(c *gin.Context) {
	engine := s.quizzes(c)

	question, selected, index, total, err := engine.Current()
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	score, totalScore := engine.Score()
	c.JSON(http.StatusOK, gin.H{
		"question":   question,
		"selected":   selected,
		"index":      index,
		"total":      total,
		"score":      score,
		"totalScore": totalScore,
	})
}

// handleQuizSelect handles POST /api/practice/quiz/select.
func (s *Server) handleQuizSelect(c *gin.Context) {
	var req struct {
		Option *int `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.quizzes(c).SelectOption(*req.Option); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleQuizCurrent(c)
}

// handleQuizNext handles POST /api/practice/quiz/next.
func (s *Server) handleQuizNext(c *gin.Context) {
	if err := s.quizzes(c).Next(c.Request.Context()); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleQuizCurrent(c)
}

// handleQuizPrevious handles POST /api/practice/quiz/previous.
func (s *Server) handleQuizPrevious(c *gin.Context) {
	if err := s.quizzes(c).Previous(); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleQuizCurrent(c)
}

// handleQuizFinish handles POST /api/practice/quiz/finish.
func (s *Server) handleQuizFinish(c *gin.Context) {
	summary, err := s.quizzes(c).Finish(c.Request.Context())
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleQuizContinue handles POST /api/practice/quiz/continue.
func (s *Server) handleQuizContinue(c *gin.Context) {
	if err := s.quizzes(c).Continue(c.Request.Context()); err != nil {
		s.renderEngineError(c, err)
		return
	}

	s.handleQuizCurrent(c)
}

// handleQuizBack handles POST /api/practice/quiz/back: leave the game
// early.
func (s *Server) handleQuizBack(c *gin.Context) {
	answered, err := s.quizzes(c).Back(c.Request.Context())
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answered": answered})
}

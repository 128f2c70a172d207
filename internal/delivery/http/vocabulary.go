package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexibox/lexibox/internal/client/dictionary"
	"github.com/lexibox/lexibox/internal/domain/entities"
)

// defaultWordLimit bounds how many candidates one analyze/topic request
// may yield.
const defaultWordLimit = 10

type meaningPayload struct {
	PartOfSpeech string   `json:"partOfSpeech"`
	Definition   string   `json:"definition"`
	Examples     []string `json:"examples,omitempty"`
}

type definitionPayload struct {
	Word     string           `json:"word"`
	Phonetic string           `json:"phonetic,omitempty"`
	AudioURL string           `json:"audioUrl,omitempty"`
	Stems    []string         `json:"stems,omitempty"`
	Meanings []meaningPayload `json:"meanings"`
}

func toPayload(def *entities.WordDefinition) definitionPayload {
	meanings := make([]meaningPayload, 0, len(def.Meanings))
	for _, m := range def.Meanings {
		meanings = append(meanings, meaningPayload{
			PartOfSpeech: m.PartOfSpeech,
			Definition:   m.Definition,
			Examples:     m.Examples,
		})
	}
	return definitionPayload{
		Word:     def.Word,
		Phonetic: def.Phonetic,
		AudioURL: def.AudioURL,
		Stems:    def.Stems,
		Meanings: meanings,
	}
}

func (p definitionPayload) toEntity() *entities.WordDefinition {
	meanings := make([]entities.MeaningDefinition, 0, len(p.Meanings))
	for _, m := range p.Meanings {
		meanings = append(meanings, entities.MeaningDefinition{
			PartOfSpeech: m.PartOfSpeech,
			Definition:   m.Definition,
			Examples:     m.Examples,
		})
	}
	return &entities.WordDefinition{
		Word:     p.Word,
		Phonetic: p.Phonetic,
		AudioURL: p.AudioURL,
		Stems:    p.Stems,
		Meanings: meanings,
	}
}

func renderDefinitions(c *gin.Context, defs []*entities.WordDefinition, topics []string) {
	payloads := make([]definitionPayload, 0, len(defs))
	for _, def := range defs {
		payloads = append(payloads, toPayload(def))
	}
	if topics == nil {
		topics = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"words": payloads, "topics": topics})
}

// handleAnalyze handles POST /api/analyze: extract vocabulary from a text.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req struct {
		Text  string `json:"text" binding:"required"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 || req.Limit > defaultWordLimit {
		req.Limit = defaultWordLimit
	}

	defs, topics, err := s.vocabulary.AnalyzeText(c.Request.Context(), req.Text, req.Limit)
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	renderDefinitions(c, defs, topics)
}

// handleTopics handles POST /api/topics: generate vocabulary for a topic.
func (s *Server) handleTopics(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 || req.Limit > defaultWordLimit {
		req.Limit = defaultWordLimit
	}

	defs, topics, err := s.vocabulary.GenerateByTopic(c.Request.Context(), req.Topic, req.Limit)
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	renderDefinitions(c, defs, topics)
}

// handleLookupWord handles GET /api/words/:word.
func (s *Server) handleLookupWord(c *gin.Context) {
	def, err := s.vocabulary.LookupWord(c.Request.Context(), c.Param("word"))
	if err != nil {
		if errors.Is(err, dictionary.ErrNoEntry) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
			return
		}
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPayload(def))
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexibox/lexibox/internal/infra/postgres/repository"
)

// handleListCollections handles GET /api/collections.
func (s *Server) handleListCollections(c *gin.Context) {
	collections, err := s.collections.ListCollections(c.Request.Context(), userID(c))
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// handleCreateCollection handles POST /api/collections. Creating a
// collection that already exists returns the existing one.
func (s *Server) handleCreateCollection(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection, err := s.collections.GetOrCreateCollection(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, collection)
}

// handleGetCollection handles GET /api/collections/:id.
func (s *Server) handleGetCollection(c *gin.Context) {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	collection, err := s.collections.GetCollection(c.Request.Context(), collectionID, userID(c))
	if err != nil {
		if errors.Is(err, repository.ErrCollectionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, collection)
}

// handleListCollectionWords handles GET /api/collections/:id/words.
func (s *Server) handleListCollectionWords(c *gin.Context) {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	words, err := s.collections.GetCollectionWords(c.Request.Context(), collectionID, userID(c))
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"words": words})
}

// handleAddWord handles POST /api/collections/:id/words. The body carries
// the full definition as previously returned by analyze/topics/lookup.
func (s *Server) handleAddWord(c *gin.Context) {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req definitionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Word == "" || len(req.Meanings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word and meanings are required"})
		return
	}

	if !s.collections.AddWordToCollection(c.Request.Context(), userID(c), req.toEntity(), collectionID) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "word could not be stored"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": true})
}

// handleRemoveWord handles DELETE /api/collections/:id/words/:wordId.
func (s *Server) handleRemoveWord(c *gin.Context) {
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	wordID, ok := pathUUID(c, "wordId")
	if !ok {
		return
	}

	leftVocabulary, err := s.collections.RemoveWordFromCollection(c.Request.Context(), collectionID, wordID, userID(c))
	if err != nil {
		s.renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true, "leftVocabulary": leftVocabulary})
}

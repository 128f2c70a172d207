package entities

import "github.com/google/uuid"

// Question is one multiple-choice quiz question. Ordinal is the
// session-local position of the question; together with the word id it
// forms the dedup key for answer recording, so the same word sourced from
// two collections in one session records once per question.
type Question struct {
	Ordinal      int       `json:"ordinal"`
	Prompt       string    `json:"prompt"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correctIndex"`
	WordID       uuid.UUID `json:"wordId"`
	MeaningID    uuid.UUID `json:"meaningId"`
	CollectionID uuid.UUID `json:"collectionId"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Word is a dictionary word shared across all users.
// Text is unique across the store; callers must be prepared to receive an
// existing row when inserting a duplicate (insert-or-fetch).
type Word struct {
	ID        uuid.UUID
	Text      string
	Phonetic  string
	AudioURL  string
	Stems     []string
	CreatedAt time.Time
}

// Meaning is one definition+examples entry for a word. A word has one or
// more meanings, ordered by OrdinalIndex.
type Meaning struct {
	ID           uuid.UUID `json:"id"`
	WordID       uuid.UUID `json:"wordId"`
	OrdinalIndex int       `json:"ordinalIndex"`
	PartOfSpeech string    `json:"partOfSpeech"`
	Definition   string    `json:"definition"`
	Examples     []string  `json:"examples"`
}

// MeaningDefinition is one definition entry as returned by the dictionary
// lookup, before it is persisted as a Meaning.
type MeaningDefinition struct {
	PartOfSpeech string
	Definition   string
	Examples     []string
}

// WordDefinition is the lookup result for a single word: the structured
// dictionary entry that AddWordToCollection persists.
type WordDefinition struct {
	Word     string
	Phonetic string
	AudioURL string
	Stems    []string
	Meanings []MeaningDefinition
}

// NewWord creates a word from a dictionary definition.
func NewWord(def *WordDefinition) *Word {
	return &Word{
		ID:        uuid.New(),
		Text:      def.Word,
		Phonetic:  def.Phonetic,
		AudioURL:  def.AudioURL,
		Stems:     def.Stems,
		CreatedAt: time.Now(),
	}
}

// BuildMeanings materializes the definition entries as meanings of the word.
func (w *Word) BuildMeanings(defs []MeaningDefinition) []Meaning {
	meanings := make([]Meaning, 0, len(defs))
	for i, d := range defs {
		meanings = append(meanings, Meaning{
			ID:           uuid.New(),
			WordID:       w.ID,
			OrdinalIndex: i,
			PartOfSpeech: d.PartOfSpeech,
			Definition:   d.Definition,
			Examples:     d.Examples,
		})
	}
	return meanings
}

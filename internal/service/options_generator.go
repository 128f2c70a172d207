package service

import (
	"fmt"
	"math/rand"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

const optionCount = 4

// OptionGenerator builds the multiple-choice options for quiz questions:
// the target word among distractor words drawn from the rest of the batch.
type OptionGenerator struct {
	rng *rand.Rand
}

// NewOptionGenerator creates an option generator over the given random
// source. Tests inject a seeded one for determinism.
func NewOptionGenerator(rng *rand.Rand) *OptionGenerator {
	return &OptionGenerator{rng: rng}
}

// Generate returns optionCount word choices including the correct one, and
// the index of the correct answer.
func (g *OptionGenerator) Generate(correct entities.PracticeWord, pool []entities.PracticeWord) ([]string, int) {
	wrongOptions := g.generateWrongOptions(correct, pool, optionCount-1)

	correctIndex := g.rng.Intn(optionCount)

	options := make([]string, optionCount)
	wrongIdx := 0
	for i := 0; i < optionCount; i++ {
		if i == correctIndex {
			options[i] = correct.Text
		} else {
			options[i] = wrongOptions[wrongIdx]
			wrongIdx++
		}
	}

	return options, correctIndex
}

// generateWrongOptions picks distractor words different from the correct
// one, padding with generic placeholders when the pool is too small.
func (g *OptionGenerator) generateWrongOptions(correct entities.PracticeWord, pool []entities.PracticeWord, count int) []string {
	candidates := make([]entities.PracticeWord, 0, len(pool))
	for _, w := range pool {
		if w.WordID != correct.WordID && w.Text != correct.Text {
			candidates = append(candidates, w)
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	wrongOptions := make([]string, 0, count)
	seen := map[string]bool{correct.Text: true}
	for _, candidate := range candidates {
		if len(wrongOptions) >= count {
			break
		}
		if seen[candidate.Text] {
			continue
		}
		wrongOptions = append(wrongOptions, candidate.Text)
		seen[candidate.Text] = true
	}

	for len(wrongOptions) < count {
		wrongOptions = append(wrongOptions, fmt.Sprintf("option %c", 'A'+rune(len(wrongOptions))))
	}

	return wrongOptions
}

package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexibox/lexibox/internal/client/dictionary"
	"github.com/lexibox/lexibox/internal/domain/entities"
)

// VocabularyExtractor proposes candidate vocabulary words and related
// topics, either mined from a text or generated for a topic.
type VocabularyExtractor interface {
	ExtractFromText(ctx context.Context, text string, limit int) (*entities.Extraction, error)
	GenerateByTopic(ctx context.Context, topic string, limit int) (*entities.Extraction, error)
}

// DictionaryClient resolves one word to its structured dictionary entry.
type DictionaryClient interface {
	Lookup(ctx context.Context, word string) (*entities.WordDefinition, error)
}

// lookupConcurrency bounds parallel dictionary calls so a large candidate
// list does not hammer the upstream API.
const lookupConcurrency = 5

// ErrExtractionDisabled is returned by the extraction operations when no
// extraction client is configured.
var ErrExtractionDisabled = errors.New("vocabulary extraction is not configured")

// Enricher turns extractor candidates into dictionary-backed definitions.
// Candidates the dictionary does not know are dropped silently; the order
// of the surviving definitions follows the candidate order.
//
// The extractor is optional: with a nil one, dictionary lookups still work
// and the extraction operations report ErrExtractionDisabled.
type Enricher struct {
	extractor  VocabularyExtractor
	dictionary DictionaryClient
	logger     *zap.Logger
}

// NewEnricher creates a new Enricher.
func NewEnricher(extractor VocabularyExtractor, dict DictionaryClient, logger *zap.Logger) *Enricher {
	return &Enricher{
		extractor:  extractor,
		dictionary: dict,
		logger:     logger,
	}
}

// ExtractionEnabled reports whether an extraction client is configured.
// Delivery uses it to decide whether to expose the extraction endpoints.
func (e *Enricher) ExtractionEnabled() bool {
	return e.extractor != nil
}

// AnalyzeText extracts vocabulary candidates from the text and resolves
// them against the dictionary. The second return value lists related
// topics for follow-up generation.
func (e *Enricher) AnalyzeText(ctx context.Context, text string, limit int) ([]*entities.WordDefinition, []string, error) {
	if e.extractor == nil {
		return nil, nil, ErrExtractionDisabled
	}

	extraction, err := e.extractor.ExtractFromText(ctx, text, limit)
	if err != nil {
		return nil, nil, err
	}

	defs, err := e.lookupAll(ctx, extraction.Words)
	if err != nil {
		return nil, nil, err
	}

	return defs, extraction.Topics, nil
}

// GenerateByTopic asks the extractor for topic vocabulary and resolves it
// against the dictionary.
func (e *Enricher) GenerateByTopic(ctx context.Context, topic string, limit int) ([]*entities.WordDefinition, []string, error) {
	if e.extractor == nil {
		return nil, nil, ErrExtractionDisabled
	}

	extraction, err := e.extractor.GenerateByTopic(ctx, topic, limit)
	if err != nil {
		return nil, nil, err
	}

	defs, err := e.lookupAll(ctx, extraction.Words)
	if err != nil {
		return nil, nil, err
	}

	return defs, extraction.Topics, nil
}

// LookupWord resolves a single word directly, bypassing the extractor.
func (e *Enricher) LookupWord(ctx context.Context, word string) (*entities.WordDefinition, error) {
	return e.dictionary.Lookup(ctx, word)
}

// lookupAll resolves candidates concurrently, preserving candidate order
// and skipping words the dictionary has no entry for.
func (e *Enricher) lookupAll(ctx context.Context, candidates []string) ([]*entities.WordDefinition, error) {
	// Each goroutine writes its own slot, so the slice needs no locking.
	results := make([]*entities.WordDefinition, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			def, err := e.dictionary.Lookup(gctx, candidate)
			if err != nil {
				if errors.Is(err, dictionary.ErrNoEntry) {
					e.logger.Debug("dictionary has no entry", zap.String("word", candidate))
					return nil
				}
				return err
			}

			results[i] = def
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	definitions := make([]*entities.WordDefinition, 0, len(results))
	for _, def := range results {
		if def != nil {
			definitions = append(definitions, def)
		}
	}

	return definitions, nil
}

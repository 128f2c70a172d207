// Package extractor proposes vocabulary words with an OpenAI chat model:
// either mined from a user-provided text or generated for a topic.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

const systemPrompt = "You are a vocabulary assistant for English learners. " +
	"You respond with JSON only, in the shape " +
	"{\"words\": [\"...\"], \"topics\": [\"...\"]}. " +
	"Each word is a single lowercase English dictionary headword: no phrases, " +
	"no proper nouns, no duplicates. Topics are short related themes the " +
	"learner could explore next."

// OpenAIExtractor asks a chat model for vocabulary candidates.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates an extractor over the given API key and model, e.g.
// "gpt-4o-mini".
func New(apiKey, model string, logger *zap.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// ExtractFromText mines up to limit learning-worthy words from the text.
func (e *OpenAIExtractor) ExtractFromText(ctx context.Context, text string, limit int) (*entities.Extraction, error) {
	prompt := fmt.Sprintf(
		"Pick up to %d words from the following text that are most worth learning "+
			"for an intermediate English learner. Text:\n\n%s", limit, text)

	return e.complete(ctx, prompt, limit)
}

// GenerateByTopic produces up to limit words related to the topic.
func (e *OpenAIExtractor) GenerateByTopic(ctx context.Context, topic string, limit int) (*entities.Extraction, error) {
	prompt := fmt.Sprintf(
		"List up to %d English words related to the topic %q that are worth learning "+
			"for an intermediate English learner.", limit, topic)

	return e.complete(ctx, prompt, limit)
}

func (e *OpenAIExtractor) complete(ctx context.Context, prompt string, limit int) (*entities.Extraction, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	extraction, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Warn("unparseable extractor response",
			zap.String("content", resp.Choices[0].Message.Content))
		return nil, err
	}

	if len(extraction.Words) > limit {
		extraction.Words = extraction.Words[:limit]
	}

	return extraction, nil
}

// parseExtraction decodes the model's JSON answer, normalizing and
// deduplicating the word list.
func parseExtraction(content string) (*entities.Extraction, error) {
	var payload struct {
		Words  []string `json:"words"`
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}

	return &entities.Extraction{
		Words:  normalize(payload.Words),
		Topics: normalize(payload.Topics),
	}, nil
}

// normalize lowercases, trims and deduplicates while keeping order.
func normalize(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

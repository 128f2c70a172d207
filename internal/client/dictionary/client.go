// Package dictionary looks up English words against the free Dictionary
// API (dictionaryapi.dev) and flattens its response into the domain's
// definition shape.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lexibox/lexibox/internal/domain/entities"
)

// ErrNoEntry is returned when the dictionary has no entry for the word.
var ErrNoEntry = errors.New("no dictionary entry")

// maxExamplesPerMeaning caps how many usage examples one meaning keeps.
const maxExamplesPerMeaning = 3

// Client is an HTTP client for the Dictionary API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given API base URL, e.g.
// "https://api.dictionaryapi.dev/api/v2/entries/en".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// entry mirrors the API response: a list of entries, each with phonetics
// and per-part-of-speech meanings.
type entry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup fetches the entry for a word. A word unknown to the dictionary
// returns ErrNoEntry.
func (c *Client) Lookup(ctx context.Context, word string) (*entities.WordDefinition, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(strings.ToLower(strings.TrimSpace(word)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build dictionary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNoEntry
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary responded %d for %q", resp.StatusCode, word)
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dictionary response: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntry
	}

	def := flatten(entries)
	if len(def.Meanings) == 0 {
		return nil, ErrNoEntry
	}

	return def, nil
}

// flatten merges all entries for the word into one definition: meanings
// concatenated in response order, phonetic and audio taken from the first
// entry that has them.
func flatten(entries []entry) *entities.WordDefinition {
	def := &entities.WordDefinition{Word: entries[0].Word}

	for _, e := range entries {
		if def.Phonetic == "" {
			def.Phonetic = e.Phonetic
		}
		for _, p := range e.Phonetics {
			if def.Phonetic == "" {
				def.Phonetic = p.Text
			}
			if def.AudioURL == "" && p.Audio != "" {
				def.AudioURL = p.Audio
			}
		}

		for _, m := range e.Meanings {
			meaning := entities.MeaningDefinition{PartOfSpeech: m.PartOfSpeech}
			for i, d := range m.Definitions {
				if i == 0 {
					meaning.Definition = d.Definition
				}
				if d.Example != "" && len(meaning.Examples) < maxExamplesPerMeaning {
					meaning.Examples = append(meaning.Examples, d.Example)
				}
			}
			if meaning.Definition != "" {
				def.Meanings = append(def.Meanings, meaning)
			}
		}
	}

	return def
}

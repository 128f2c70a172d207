package entities

// Extraction is the raw result of a vocabulary-extraction call: candidate
// words to look up, plus related topics the caller may offer as follow-ups.
type Extraction struct {
	Words  []string
	Topics []string
}

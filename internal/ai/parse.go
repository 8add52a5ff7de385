package ai

import (
	"encoding/json"
	"strings"
)

// ExtractRecommendations pulls the first bracketed JSON array out of free
// text (the model wraps its answer in prose or markdown fences) and decodes
// it. Anything unparseable yields zero recommendations rather than an error.
func ExtractRecommendations(text string) []Recommendation {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(text[start:end+1]), &recs); err != nil {
		return nil
	}
	return recs
}

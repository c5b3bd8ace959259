package gemini

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates the JSON object embedded in free-form model output and
// decodes it. The match is greedy: everything between the first '{' and the
// last '}'. Model replies routinely wrap the object in prose or markdown
// fences, and routinely come back malformed; any failure yields an empty
// map, never an error.
func ExtractJSON(text string) map[string]any {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return map[string]any{}
	}
	if out == nil {
		return map[string]any{}
	}
	return out
}

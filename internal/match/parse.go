package match

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Selection is a parsed arbitration verdict.
type Selection struct {
	Index      int
	Reasoning  string
	Confidence float64
}

// parseSelection recovers the arbitration verdict from free-form LLM
// output: code fences are stripped and, failing a direct parse, the
// outermost JSON object is extracted. The boolean result is the explicit
// parse-failed marker; callers branch on it rather than on an error.
func parseSelection(raw string) (Selection, bool) {
	payload := extractJSONObject(raw)
	if payload == "" || !gjson.Valid(payload) {
		return Selection{}, false
	}
	idx := gjson.Get(payload, "selected_index")
	if !idx.Exists() {
		idx = gjson.Get(payload, "index")
	}
	if !idx.Exists() {
		return Selection{}, false
	}
	sel := Selection{
		Index:      int(idx.Int()),
		Reasoning:  strings.TrimSpace(gjson.Get(payload, "reasoning").String()),
		Confidence: gjson.Get(payload, "confidence").Float(),
	}
	if sel.Confidence < 0 {
		sel.Confidence = 0
	}
	if sel.Confidence > 1 {
		sel.Confidence = 1
	}
	return sel, true
}

func extractJSONObject(raw string) string {
	trimmed := strings.TrimSpace(stripCodeFence(raw))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' && gjson.Valid(trimmed) {
		return trimmed
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

package match

import "testing"

func TestParseSelectionPlainJSON(t *testing.T) {
	sel, ok := parseSelection(`{"selected_index": 2, "reasoning": "best visual fit", "confidence": 0.85}`)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if sel.Index != 2 || sel.Reasoning != "best visual fit" || sel.Confidence != 0.85 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestParseSelectionFencedJSON(t *testing.T) {
	raw := "```json\n{\"selected_index\": 0, \"reasoning\": \"ok\", \"confidence\": 0.7}\n```"
	sel, ok := parseSelection(raw)
	if !ok || sel.Index != 0 {
		t.Fatalf("fenced payload should parse: ok=%v sel=%+v", ok, sel)
	}
}

func TestParseSelectionProseWrappedJSON(t *testing.T) {
	raw := `Sure! Based on the narration I would pick:
{"selected_index": 1, "reasoning": "matches the market scene", "confidence": 0.9}
Hope that helps.`
	sel, ok := parseSelection(raw)
	if !ok || sel.Index != 1 {
		t.Fatalf("prose-wrapped payload should parse: ok=%v sel=%+v", ok, sel)
	}
}

func TestParseSelectionAlternateIndexKey(t *testing.T) {
	sel, ok := parseSelection(`{"index": 3, "confidence": 2.5}`)
	if !ok || sel.Index != 3 {
		t.Fatalf("alternate index key should parse: ok=%v sel=%+v", ok, sel)
	}
	if sel.Confidence != 1 {
		t.Fatalf("confidence must clamp to [0,1], got %v", sel.Confidence)
	}
}

func TestParseSelectionRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot decide.",
		"{not json at all",
		`{"reasoning": "missing index"}`,
	} {
		if _, ok := parseSelection(raw); ok {
			t.Fatalf("expected parse-failed marker for %q", raw)
		}
	}
}

func TestParseSelectionNegativeIndexSurvivesParse(t *testing.T) {
	sel, ok := parseSelection(`{"selected_index": -1, "reasoning": "nothing fits", "confidence": 0.2}`)
	if !ok {
		t.Fatal("a -1 verdict is a valid parse; rejection is the caller's decision")
	}
	if sel.Index != -1 {
		t.Fatalf("index = %d, want -1", sel.Index)
	}
}

package gemini

import "testing"

func TestExtractJSON_NoObject(t *testing.T) {
	cases := []string{
		"",
		"no json here",
		"unbalanced } first { never closes",
		"only an array: [1, 2, 3]",
	}
	for _, in := range cases {
		out := ExtractJSON(in)
		if len(out) != 0 {
			t.Fatalf("expected empty map for %q, got %v", in, out)
		}
	}
}

func TestExtractJSON_ProseWrapped(t *testing.T) {
	in := "Sure! Here is the analysis you asked for:\n```json\n" +
		`{"summary": "customer will pay", "repayment_date": "2025-06-05"}` +
		"\n```\nLet me know if you need anything else."
	out := ExtractJSON(in)
	if out["summary"] != "customer will pay" {
		t.Fatalf("expected summary field, got %v", out)
	}
	if out["repayment_date"] != "2025-06-05" {
		t.Fatalf("expected repayment_date field, got %v", out)
	}
}

func TestExtractJSON_NestedObject(t *testing.T) {
	in := `{"sentiment": {"tone": "Positive", "topics_discussed": ["loan"]}}`
	out := ExtractJSON(in)
	sentiment, ok := out["sentiment"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested sentiment object, got %v", out)
	}
	if sentiment["tone"] != "Positive" {
		t.Fatalf("expected tone Positive, got %v", sentiment)
	}
}

func TestExtractJSON_MalformedObject(t *testing.T) {
	out := ExtractJSON(`prefix {"summary": "oops", } suffix`)
	if len(out) != 0 {
		t.Fatalf("expected empty map for malformed JSON, got %v", out)
	}
}

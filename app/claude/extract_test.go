package claude

import (
	"errors"
	"strings"
	"testing"
)

type categoriesPayload struct {
	Categories []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"categories"`
}

func TestExtractJSON_BareJSON(t *testing.T) {
	var payload categoriesPayload
	err := ExtractJSON(`{"categories":[{"name":"AI","description":"Machine learning posts"}]}`, &payload)
	if err != nil {
		t.Fatalf("Expected bare JSON to parse, got error: %v", err)
	}
	if len(payload.Categories) != 1 || payload.Categories[0].Name != "AI" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here are the categories you asked for:\n\n" +
		"```json\n" +
		`{"categories":[{"name":"AI","description":"Machine learning posts"}]}` + "\n" +
		"```\n\n" +
		"Let me know if you need adjustments."

	var payload categoriesPayload
	if err := ExtractJSON(text, &payload); err != nil {
		t.Fatalf("Expected fenced JSON to parse, got error: %v", err)
	}
	if len(payload.Categories) != 1 {
		t.Errorf("Expected 1 category, got %d", len(payload.Categories))
	}
}

func TestExtractJSON_FencedBlockWithExtraFences(t *testing.T) {
	// A second fenced block after the JSON one: the backward scan must
	// still find the span that parses.
	text := "```json\n" +
		`{"categories":[{"name":"AI","description":"ML"}]}` + "\n" +
		"```\n" +
		"And here is an example:\n" +
		"```\nnot json at all\n```"

	var payload categoriesPayload
	if err := ExtractJSON(text, &payload); err != nil {
		t.Fatalf("Expected JSON to parse despite extra fences, got error: %v", err)
	}
	if len(payload.Categories) != 1 || payload.Categories[0].Name != "AI" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestExtractJSON_ProseWrapped(t *testing.T) {
	text := `Sure! Based on the posts, the result is {"categories":[{"name":"AI","description":"ML"}]} which should cover everything.`

	var payload categoriesPayload
	if err := ExtractJSON(text, &payload); err != nil {
		t.Fatalf("Expected prose-wrapped JSON to parse, got error: %v", err)
	}
	if len(payload.Categories) != 1 {
		t.Errorf("Expected 1 category, got %d", len(payload.Categories))
	}
}

func TestExtractJSON_Array(t *testing.T) {
	var ids []string
	if err := ExtractJSON(`The ids are ["1","2","3"] as requested.`, &ids); err != nil {
		t.Fatalf("Expected array to parse, got error: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("Expected 3 ids, got %d", len(ids))
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	longText := strings.Repeat("I am sorry, I cannot help with that. ", 20)

	var payload categoriesPayload
	err := ExtractJSON(longText, &payload)
	if err == nil {
		t.Fatal("Expected a parse error for text without JSON")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %T: %v", err, err)
	}
	if len(parseErr.Excerpt) != 200 {
		t.Errorf("Expected 200-char excerpt, got %d chars", len(parseErr.Excerpt))
	}
}

func TestExtractJSON_EmptyInput(t *testing.T) {
	var payload categoriesPayload
	if err := ExtractJSON("", &payload); err == nil {
		t.Fatal("Expected a parse error for empty input")
	}
}

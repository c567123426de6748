package claude

import "fmt"

// NotFoundError means no claude executable could be located.
type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "claude CLI not found. Install it with: npm install -g @anthropic-ai/claude-code"
}

// ParseError means no JSON payload could be extracted from a response.
// Excerpt holds the first 200 characters of the raw output.
type ParseError struct {
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not extract JSON from claude response. First 200 chars: %s", e.Excerpt)
}

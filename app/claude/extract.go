package claude

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe = regexp.MustCompile("```json\\s*")
	jsonSpanRe  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
)

// ExtractJSON pulls a JSON payload out of LLM output, which may be a
// fenced code block with trailing prose, JSON buried in explanatory
// text, or bare JSON. Strategies run in that order; candidate fence
// spans are tried from the last closing fence backward so prose after
// the block cannot poison the parse. Failing all three returns a
// ParseError carrying an excerpt of the raw text.
func ExtractJSON(text string, v any) error {
	if loc := fenceOpenRe.FindStringIndex(text); loc != nil {
		after := text[loc[1]:]

		var closings []int
		searchPos := 0
		for {
			pos := strings.Index(after[searchPos:], "```")
			if pos == -1 {
				break
			}
			closings = append(closings, searchPos+pos)
			searchPos += pos + 3
		}

		for i := len(closings) - 1; i >= 0; i-- {
			candidate := strings.TrimSpace(after[:closings[i]])
			if json.Unmarshal([]byte(candidate), v) == nil {
				return nil
			}
		}
	}

	if match := jsonSpanRe.FindString(text); match != "" {
		if json.Unmarshal([]byte(match), v) == nil {
			return nil
		}
	}

	if json.Unmarshal([]byte(strings.TrimSpace(text)), v) == nil {
		return nil
	}

	excerpt := text
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	return &ParseError{Excerpt: excerpt}
}

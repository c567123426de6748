package classify

import (
	"fmt"
	"strings"

	"github.com/serrrfirat/xmarks/app/database"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(value string) string {
	return xmlEscaper.Replace(value)
}

func buildDiscoveryPrompt(samples []database.SamplePost) string {
	var sampleText strings.Builder
	for _, post := range samples {
		fmt.Fprintf(&sampleText, "- @%s: %s\n", post.AuthorHandle, post.Text)
	}

	return strings.Join([]string{
		"You are classifying X/Twitter bookmarks into semantic topics.",
		fmt.Sprintf("Generate %d-%d broad, practical categories that can cover this dataset.", MinCategories, MaxCategories),
		"Each category must include:",
		"- name: concise title (2-4 words)",
		"- description: one sentence explaining inclusion criteria",
		"",
		"Return JSON only with this exact shape:",
		`{"categories":[{"name":"...","description":"..."}]}`,
		"",
		"Constraints:",
		fmt.Sprintf("- %d to %d categories exactly", MinCategories, MaxCategories),
		"- Non-overlapping where possible",
		`- Avoid overly generic buckets like "Misc"`,
		"",
		"Sample tweets:",
		strings.TrimRight(sampleText.String(), "\n"),
	}, "\n")
}

func buildPostsXML(batch []database.SamplePost) string {
	var b strings.Builder
	b.WriteString("<posts>\n")
	for _, post := range batch {
		fmt.Fprintf(&b, "  <post id=\"%s\">@%s: %s</post>\n",
			escapeXML(post.ID), escapeXML(post.AuthorHandle), escapeXML(post.Text))
	}
	b.WriteString("</posts>")
	return b.String()
}

func buildClassificationPrompt(categories []database.Category, postsXML string) string {
	var categoryList strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&categoryList, "- %s: %s\n", category.Name, category.Description)
	}

	return strings.Join([]string{
		"Assign each post to exactly one category from the list.",
		"If unsure, choose the closest category from the provided options.",
		"",
		"Categories:",
		strings.TrimRight(categoryList.String(), "\n"),
		"",
		"Posts (XML):",
		postsXML,
		"",
		"Return JSON only with this exact shape:",
		`{"assignments":[{"postId":"...","categoryName":"..."}]}`,
		"Only use categoryName values exactly as listed above.",
	}, "\n")
}

package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// blockTags end a line of text when converting HTML.
var blockTags = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, blockquote, pre, section, article"

// HTMLToText renders an HTML fragment as plain text. Block elements become
// line breaks; lines are not wrapped to any width.
func HTMLToText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CleanText(raw)
	}
	doc.Find("script, style").Remove()
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "br" {
			s.ReplaceWithHtml("\n")
			return
		}
		s.AppendHtml("\n")
	})

	var lines []string
	blank := false
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = CleanText(line)
		if line == "" {
			// collapse runs of empty lines into one paragraph break
			if len(lines) > 0 && !blank {
				lines = append(lines, "")
				blank = true
			}
			continue
		}
		lines = append(lines, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

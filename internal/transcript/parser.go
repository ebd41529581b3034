// Package transcript turns exported chat text into ordered message records.
package transcript

import (
	"strings"

	"chatview/internal/models"
)

// Parse runs every grammar over text and keeps the records of the one with
// the most matches. Unrecognised text yields no messages.
func Parse(text string) []models.Message {
	messages, _ := ParseWithGrammar(text)
	return messages
}

// ParseWithGrammar is Parse that also names the grammar it picked, or ""
// when none matched. Picking by match count is a best-effort heuristic:
// export formats do not mix within one file.
func ParseWithGrammar(text string) ([]models.Message, string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	best, name := []models.Message{}, ""
	for _, g := range Grammars {
		if found := g.Scan(text); len(found) > len(best) {
			best, name = found, g.Name
		}
	}
	return best, name
}

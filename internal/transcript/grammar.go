package transcript

import (
	"regexp"
	"strings"

	"chatview/internal/models"
)

const (
	slashDate = `\d{1,2}/\d{1,2}/\d{2,4}`
	dotDate   = `\d{1,2}\.\d{1,2}\.\d{2,4}`
	clock     = `\d{1,2}:\d{2}(?::\d{2})?(?:[ \x{202F}\x{00A0}]?[AaPp]\.?[Mm]\.?)?`
	// some exporters prefix each line with a directional mark
	dirMark = `[\x{200E}\x{200F}]?`
	// author runs to the first colon on the header line
	authorColon = `[ \t]+([^\n]+?):(?:[ \t]+|\n|$)`
)

// Grammar recognises one transcript line format. A line that starts with the
// grammar's timestamp and separator opens a new entry; everything up to the
// next such line (or the end of the text) belongs to it. A body line that
// merely begins with a date stays in the body.
type Grammar struct {
	Name      string
	lineStart *regexp.Regexp
	header    *regexp.Regexp
}

func newGrammar(name, linePrefix, header string) Grammar {
	return Grammar{
		Name:      name,
		lineStart: regexp.MustCompile(`(?m)^` + dirMark + linePrefix),
		header:    regexp.MustCompile(`^` + dirMark + header),
	}
}

// Grammars lists the supported export formats in preference order; on equal
// match counts the earlier grammar wins.
var Grammars = []Grammar{
	// [01/02/23, 10:00:00] Alice: hi
	newGrammar("bracket",
		`\[`+slashDate+`,?[ \t]+`+clock+`\]`,
		`\[(`+slashDate+`),?[ \t]+(`+clock+`)\]`+authorColon),
	// 01/02/23, 10:00 - Alice: hi
	newGrammar("dash",
		slashDate+`,?[ \t]+`+clock+`[ \t]+-`,
		`(`+slashDate+`),?[ \t]+(`+clock+`)[ \t]+-`+authorColon),
	// 01.02.23, 10:00 - Alice: hi
	newGrammar("dot",
		dotDate+`,?[ \t]+`+clock+`[ \t]+-`,
		`(`+dotDate+`),?[ \t]+(`+clock+`)[ \t]+-`+authorColon),
}

// Transcript noise that is never a user message.
var systemNotices = []string{
	"Messages and calls are end-to-end encrypted",
	"This message was deleted",
	"You deleted this message",
}

const systemSender = "WhatsApp"

func isNoise(author, body string) bool {
	if strings.Contains(author, systemSender) {
		return true
	}
	for _, notice := range systemNotices {
		if strings.Contains(body, notice) {
			return true
		}
	}
	return false
}

// Scan applies the grammar to the whole text and returns the user messages
// it recognises, in scan order with provisional ids.
func (g Grammar) Scan(text string) []models.Message {
	starts := g.lineStart.FindAllStringIndex(text, -1)
	messages := make([]models.Message, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		segment := text[loc[0]:end]
		m := g.header.FindStringSubmatchIndex(segment)
		if m == nil {
			// timestamped line without an author, e.g. a group event
			continue
		}
		author := segment[m[6]:m[7]]
		body := segment[m[1]:]
		if isNoise(author, body) {
			continue
		}
		messages = append(messages, models.Message{
			ID:      len(messages),
			Date:    strings.ReplaceAll(segment[m[2]:m[3]], ".", "/"),
			Time:    segment[m[4]:m[5]],
			Author:  strings.TrimSpace(author),
			Content: strings.TrimSpace(body),
		})
	}
	return messages
}

package archive

import (
	"strings"
	"unicode/utf8"
)

type transcriptMarker struct {
	name  string
	match func(entryName string) bool
}

// Specific export conventions come first, the generic text fallback last.
var transcriptMarkers = []transcriptMarker{
	{name: "_chat.txt", match: func(n string) bool { return strings.Contains(n, "_chat.txt") }},
	{name: "WhatsApp Chat", match: func(n string) bool { return strings.Contains(n, "WhatsApp Chat") }},
	{name: ".txt", match: func(n string) bool { return strings.HasSuffix(strings.ToLower(n), ".txt") }},
}

// LocateTranscript picks the chat transcript among the archive entries.
func LocateTranscript(entries []Entry) (Entry, error) {
	for _, marker := range transcriptMarkers {
		for _, e := range entries {
			if e.IsDir {
				continue
			}
			if marker.match(e.Name) {
				return e, nil
			}
		}
	}
	return Entry{}, &Error{
		Kind:   KindTranscriptNotFound,
		Detail: "no chat file (_chat.txt) found in the ZIP archive",
	}
}

const utf8BOM = "\uFEFF"

// DecodeTranscript reads the entry as UTF-8 text. Invalid byte sequences are
// replaced with U+FFFD; only an unreadable entry is an error.
func DecodeTranscript(e Entry) (string, error) {
	data, err := e.Read()
	if err != nil {
		return "", &Error{Kind: KindDecodeError, Detail: "unable to read the chat file content", Err: err}
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return strings.TrimPrefix(text, utf8BOM), nil
}

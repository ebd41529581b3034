// Package attachment classifies message bodies by the media they reference.
package attachment

import (
	"path/filepath"
	"regexp"
	"strings"

	"chatview/internal/models"
)

var attachedMarker = regexp.MustCompile(`(?i)<attached:\s*(.+?)>`)

type omission struct {
	phrase      string
	foldCase    bool
	kind        models.Kind
	placeholder string
}

// Scanned top to bottom, first hit wins.
var omissions = []omission{
	{phrase: "image omitted", kind: models.KindImage, placeholder: "image_omitted"},
	{phrase: "video omitted", kind: models.KindVideo, placeholder: "video_omitted"},
	{phrase: "audio omitted", kind: models.KindFile, placeholder: "audio_omitted"},
	{phrase: "document omitted", kind: models.KindFile, placeholder: "document_omitted"},
	{phrase: "sticker omitted", kind: models.KindImage, placeholder: "sticker_omitted"},
	{phrase: "GIF omitted", foldCase: true, kind: models.KindImage, placeholder: "gif_omitted"},
	{phrase: "file attached", foldCase: true, kind: models.KindFile, placeholder: "file_omitted"},
}

func (o omission) matches(body string) bool {
	if o.foldCase {
		return strings.Contains(strings.ToLower(body), strings.ToLower(o.phrase))
	}
	return strings.Contains(body, o.phrase)
}

// Classify maps a message body to its attachment classification.
func Classify(body string) models.Attachment {
	if m := attachedMarker.FindStringSubmatch(body); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return models.FileAttachment(KindForFile(name), name)
		}
	}
	for _, o := range omissions {
		if o.matches(body) {
			return models.FileAttachment(o.kind, o.placeholder)
		}
	}
	return models.TextAttachment(body)
}

// Extension returns the lower-cased extension including the dot.
func Extension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// KindForFile maps a file name to its media kind by extension.
func KindForFile(fileName string) models.Kind {
	if kind, ok := extensionKinds[Extension(fileName)]; ok {
		return kind
	}
	return models.KindFile
}

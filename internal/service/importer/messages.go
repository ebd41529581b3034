package importer

import (
	"chatview/internal/attachment"
	"chatview/internal/models"
	"chatview/internal/transcript"
)

// BuildMessages parses transcript text, classifies every message body and
// returns the messages in chronological order together with the name of the
// transcript grammar that matched.
func BuildMessages(text string) ([]models.Message, string) {
	messages, grammar := transcript.ParseWithGrammar(text)
	for i := range messages {
		messages[i].Processed = attachment.Classify(messages[i].Content)
	}
	transcript.Sort(messages)
	return messages, grammar
}

// Summarize computes the stats block of an import response.
func Summarize(messages []models.Message, extraction models.ExtractionResult) models.ImportStats {
	stats := models.ImportStats{
		TotalMessages:  len(messages),
		ExtractedFiles: extraction.ExtractedFileCount,
		FailedFiles:    len(extraction.Failures),
		ChatFileName:   extraction.TranscriptEntryName,
		ByType: map[models.Kind]int{
			models.KindText:  0,
			models.KindImage: 0,
			models.KindVideo: 0,
			models.KindFile:  0,
		},
	}
	authors := make(map[string]struct{})
	for _, m := range messages {
		stats.ByType[m.Processed.Kind]++
		authors[m.Author] = struct{}{}
	}
	stats.Authors = len(authors)
	return stats
}

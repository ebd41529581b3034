package models

import "time"

// ImportStats is the summary returned next to the message list.
type ImportStats struct {
	TotalMessages  int          `json:"totalMessages" yaml:"totalMessages"`
	ExtractedFiles int          `json:"extractedFiles" yaml:"extractedFiles"`
	FailedFiles    int          `json:"failedFiles" yaml:"failedFiles"`
	ChatFileName   string       `json:"chatFileName" yaml:"chatFileName"`
	Grammar        string       `json:"grammar" yaml:"grammar"`
	ByType         map[Kind]int `json:"byType" yaml:"byType"`
	Authors        int          `json:"authors" yaml:"authors"`
}

// ImportResult is the full response of a processed archive.
type ImportResult struct {
	Messages []Message   `json:"messages" yaml:"messages"`
	Stats    ImportStats `json:"stats" yaml:"stats"`
}

// ImportRecord is the persisted summary of a past import. Message bodies are never stored.
type ImportRecord struct {
	ID             int64     `json:"id"`
	ArchiveName    string    `json:"archive_name"`
	ChatFileName   string    `json:"chat_file_name"`
	TotalMessages  int       `json:"total_messages"`
	ExtractedFiles int       `json:"extracted_files"`
	FailedFiles    int       `json:"failed_files"`
	CreatedAt      time.Time `json:"created_at"`
}

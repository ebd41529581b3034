package models

import "time"

// StoredFile is an attachment that landed in the shared file store.
type StoredFile struct {
	Name      string `json:"name"`
	EntryName string `json:"entry_name"`
	Size      int64  `json:"size"`
	Kind      Kind   `json:"type"`
}

// ExtractFailure records one archive entry that could not be stored.
type ExtractFailure struct {
	EntryName string `json:"entry_name"`
	Reason    string `json:"reason"`
}

// ExtractionResult summarises one extraction run.
type ExtractionResult struct {
	ExtractedFileCount  int              `json:"extracted_file_count"`
	TranscriptEntryName string           `json:"transcript_entry_name"`
	Files               []StoredFile     `json:"files"`
	Failures            []ExtractFailure `json:"failures"`
}

// FileInfo describes a file already present in the store.
type FileInfo struct {
	FileName  string    `json:"filename"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Kind      Kind      `json:"type"`
	Extension string    `json:"extension,omitempty"`
}

package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"chatview/internal/archive"
	"chatview/internal/extract"
	"chatview/internal/models"
)

// Service runs the archive-to-message pipeline.
type Service struct {
	db         *sql.DB
	extractor  *extract.Extractor
	uploadsDir string
}

// NewService builds the pipeline. db may be nil, in which case imports are
// not recorded.
func NewService(db *sql.DB, extractor *extract.Extractor, uploadsDir string) *Service {
	return &Service{db: db, extractor: extractor, uploadsDir: uploadsDir}
}

// Upload is one archive handed to Import, either in memory or on disk.
type Upload struct {
	ArchiveName string
	Path        string
	Data        []byte
	// SkipExtract parses the transcript without writing attachments.
	SkipExtract bool
}

// Import processes one archive. Input-format problems are returned as
// *archive.Error; nothing is written to the file store before the
// transcript has been found and decoded.
func (s *Service) Import(ctx context.Context, up Upload) (*models.ImportResult, error) {
	reader, err := openUpload(up)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	entries := reader.Entries()
	chatEntry, err := archive.LocateTranscript(entries)
	if err != nil {
		return nil, err
	}
	text, err := archive.DecodeTranscript(chatEntry)
	if err != nil {
		return nil, err
	}

	extraction := models.ExtractionResult{TranscriptEntryName: chatEntry.Name}
	if !up.SkipExtract && s.extractor != nil {
		extraction = s.extractor.Extract(ctx, entries, chatEntry.Name)
	}

	messages, grammar := BuildMessages(text)
	result := &models.ImportResult{
		Messages: messages,
		Stats:    Summarize(messages, extraction),
	}
	result.Stats.Grammar = grammar

	if s.db != nil {
		if _, err := s.RecordImport(ctx, up.ArchiveName, extraction, result.Stats); err != nil {
			log.Printf("record import %s: %v", up.ArchiveName, err)
		}
	}
	return result, nil
}

func openUpload(up Upload) (*archive.Reader, error) {
	if up.Path != "" {
		return archive.OpenFile(up.Path)
	}
	if len(up.Data) == 0 {
		return nil, &archive.Error{Kind: archive.KindInvalidArchive, Detail: "the uploaded file is empty"}
	}
	return archive.Open(up.Data)
}

// NewUploadPath returns a fresh location for a transient uploaded archive.
func (s *Service) NewUploadPath(originalName string) (string, error) {
	if s.uploadsDir == "" {
		return "", errors.New("uploads directory not configured")
	}
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}
	ext := filepath.Ext(filepath.Base(originalName))
	if ext == "" {
		ext = ".zip"
	}
	return filepath.Join(s.uploadsDir, "zipfile-"+uuid.NewString()+ext), nil
}

// RemoveUpload deletes a transient archive. Failures are only logged.
func (s *Service) RemoveUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("clean up upload %s: %v", path, err)
	}
}

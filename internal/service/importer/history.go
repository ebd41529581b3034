package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatview/internal/models"
)

var ErrHistoryDisabled = errors.New("import history is not configured")

const defaultHistoryLimit = 50

// RecordImport stores the summary of an import and the files it produced.
func (s *Service) RecordImport(ctx context.Context, archiveName string, extraction models.ExtractionResult, stats models.ImportStats) (int64, error) {
	if s.db == nil {
		return 0, ErrHistoryDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (archive_name, chat_file_name, total_messages, extracted_files, failed_files, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		archiveName, stats.ChatFileName, stats.TotalMessages, stats.ExtractedFiles, stats.FailedFiles, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("import id: %w", err)
	}
	for _, f := range extraction.Files {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO stored_files (import_id, file_name, entry_name, kind, size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, f.Name, f.EntryName, string(f.Kind), f.Size, now,
		); err != nil {
			return 0, fmt.Errorf("insert stored file %s: %w", f.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return id, nil
}

// ListImports returns the most recent imports first.
func (s *Service) ListImports(ctx context.Context, limit int) ([]models.ImportRecord, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, archive_name, chat_file_name, total_messages, extracted_files, failed_files, created_at
		FROM imports ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	records := []models.ImportRecord{}
	for rows.Next() {
		var r models.ImportRecord
		if err := rows.Scan(&r.ID, &r.ArchiveName, &r.ChatFileName, &r.TotalMessages, &r.ExtractedFiles, &r.FailedFiles, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ImportFiles lists the stored files produced by one import.
func (s *Service) ImportFiles(ctx context.Context, importID int64) ([]models.StoredFile, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_name, entry_name, kind, size FROM stored_files WHERE import_id = ? ORDER BY id ASC`,
		importID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	defer rows.Close()

	files := []models.StoredFile{}
	for rows.Next() {
		var f models.StoredFile
		var kind string
		if err := rows.Scan(&f.Name, &f.EntryName, &kind, &f.Size); err != nil {
			return nil, fmt.Errorf("scan stored file: %w", err)
		}
		f.Kind = models.Kind(kind)
		files = append(files, f)
	}
	return files, rows.Err()
}

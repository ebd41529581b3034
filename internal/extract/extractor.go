// Package extract copies archive attachments into the shared file store.
package extract

import (
	"context"
	"fmt"
	"log"
	"sync"

	"chatview/internal/archive"
	"chatview/internal/attachment"
	"chatview/internal/filestore"
	"chatview/internal/models"
	"chatview/internal/worker"
)

// Saver is the part of the file store the extractor writes through.
type Saver interface {
	Save(desired string, data []byte) (string, error)
}

// Extractor writes every non-transcript entry into a Saver. A nil pool
// extracts sequentially in archive order.
type Extractor struct {
	store        Saver
	pool         *worker.Pool
	maxEntrySize int64
}

// New builds an extractor that reads at most archive.DefaultMaxEntrySize
// bytes per entry.
func New(store Saver, pool *worker.Pool) *Extractor {
	return &Extractor{store: store, pool: pool, maxEntrySize: archive.DefaultMaxEntrySize}
}

// WithMaxEntrySize caps the decompressed size of a single entry. Larger
// entries are recorded as failures. A non-positive n keeps the default.
func (x *Extractor) WithMaxEntrySize(n int64) *Extractor {
	if n > 0 {
		x.maxEntrySize = n
	}
	return x
}

type outcome struct {
	file    *models.StoredFile
	failure *models.ExtractFailure
}

// Extract stores all entries except directories and the transcript. Per-entry
// failures are recorded and skipped; only files that landed are counted.
func (x *Extractor) Extract(ctx context.Context, entries []archive.Entry, transcriptName string) models.ExtractionResult {
	var targets []archive.Entry
	for _, e := range entries {
		if e.IsDir || e.Name == transcriptName {
			continue
		}
		targets = append(targets, e)
	}

	outcomes := make([]outcome, len(targets))
	if x.pool == nil || x.pool.Size() <= 1 {
		for i, e := range targets {
			if err := ctx.Err(); err != nil {
				outcomes[i] = failed(e, err)
				continue
			}
			outcomes[i] = x.extractOne(e)
		}
	} else {
		var wg sync.WaitGroup
		for i, e := range targets {
			i, e := i, e
			wg.Add(1)
			err := x.pool.Submit(ctx, func() {
				defer wg.Done()
				outcomes[i] = x.extractOne(e)
			})
			if err != nil {
				wg.Done()
				outcomes[i] = failed(e, err)
			}
		}
		wg.Wait()
	}

	result := models.ExtractionResult{
		TranscriptEntryName: transcriptName,
		Files:               []models.StoredFile{},
		Failures:            []models.ExtractFailure{},
	}
	for _, o := range outcomes {
		if o.file != nil {
			result.Files = append(result.Files, *o.file)
			continue
		}
		log.Printf("extract %s failed: %s", o.failure.EntryName, o.failure.Reason)
		result.Failures = append(result.Failures, *o.failure)
	}
	result.ExtractedFileCount = len(result.Files)
	return result
}

func (x *Extractor) extractOne(e archive.Entry) outcome {
	name, err := filestore.BaseName(e.Name)
	if err != nil {
		return failed(e, err)
	}
	data, err := e.ReadLimit(x.maxEntrySize)
	if err != nil {
		return failed(e, err)
	}
	stored, err := x.store.Save(name, data)
	if err != nil {
		return failed(e, fmt.Errorf("store: %w", err))
	}
	return outcome{file: &models.StoredFile{
		Name:      stored,
		EntryName: e.Name,
		Size:      int64(len(data)),
		Kind:      attachment.KindForFile(stored),
	}}
}

func failed(e archive.Entry, err error) outcome {
	return outcome{failure: &models.ExtractFailure{EntryName: e.Name, Reason: err.Error()}}
}

package importer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultUploadTTL           = time.Hour
	DefaultUploadCleanInterval = 15 * time.Minute
)

// StartUploadCleaner periodically removes transient archives that outlived
// ttl, e.g. after a crash mid-request.
func (s *Service) StartUploadCleaner(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	if interval <= 0 {
		interval = DefaultUploadCleanInterval
	}
	go s.cleanupLoop(ctx, ttl, interval)
}

func (s *Service) cleanupLoop(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.cleanupStaleUploads(time.Now().Add(-ttl)); err != nil {
				log.Printf("cleanup uploads error: %v", err)
			} else if n > 0 {
				log.Printf("removed %d stale uploads", n)
			}
		}
	}
}

func (s *Service) cleanupStaleUploads(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "zipfile-") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		p := filepath.Join(s.uploadsDir, e.Name())
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("remove stale upload %s failed: %v", p, err)
			continue
		}
		removed++
	}
	return removed, nil
}

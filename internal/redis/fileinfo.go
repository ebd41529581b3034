package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"chatview/internal/models"
)

const (
	fileInfoPrefix     = "chatview:fileinfo:"
	DefaultFileInfoTTL = time.Hour
)

// FileInfoCache remembers stored file metadata. Stored files are never
// rewritten, so entries only expire by TTL. A nil cache or client is a no-op.
type FileInfoCache struct {
	client *Client
	ttl    time.Duration
}

// NewFileInfoCache caches through client; a non-positive ttl uses DefaultFileInfoTTL.
func NewFileInfoCache(client *Client, ttl time.Duration) *FileInfoCache {
	if ttl <= 0 {
		ttl = DefaultFileInfoTTL
	}
	return &FileInfoCache{client: client, ttl: ttl}
}

// Load returns the cached info for name. Entries that fail to decode are dropped.
func (fc *FileInfoCache) Load(ctx context.Context, name string) (*models.FileInfo, bool) {
	if fc == nil || fc.client == nil || fc.client.inner == nil {
		return nil, false
	}
	var info models.FileInfo
	key := fileInfoPrefix + name
	if err := fc.client.GetJSON(ctx, key, &info); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false
		}
		log.Printf("file info cache load %s: %v", name, err)
		if errors.Is(err, ErrCorrupt) {
			if err := fc.client.Del(ctx, key); err != nil {
				log.Printf("file info cache drop %s: %v", name, err)
			}
		}
		return nil, false
	}
	return &info, true
}

// Store caches info under its file name.
func (fc *FileInfoCache) Store(ctx context.Context, info *models.FileInfo) {
	if fc == nil || fc.client == nil || fc.client.inner == nil || info == nil {
		return
	}
	if err := fc.client.SetJSON(ctx, fileInfoPrefix+info.FileName, info, fc.ttl); err != nil {
		log.Printf("file info cache store %s: %v", info.FileName, err)
	}
}

package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"chatview/internal/attachment"
	"chatview/internal/models"
)

const maxCreateAttempts = 64

// Store is a flat, append-only directory of extracted attachments.
type Store struct {
	dir string
}

// New prepares the store directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create file store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir is the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// dirNames checks the directory itself on every lookup, so a name taken by a
// concurrent request is always seen.
type dirNames string

func (d dirNames) Has(name string) bool {
	_, err := os.Lstat(filepath.Join(string(d), name))
	return err == nil
}

// Save writes data under desired, or under the next free disambiguated name.
// It returns the name the bytes actually landed under.
func (s *Store) Save(desired string, data []byte) (string, error) {
	if err := ValidateName(desired); err != nil {
		return "", fmt.Errorf("save %q: %w", desired, err)
	}
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name := NextAvailableName(dirNames(s.dir), desired)
		target := filepath.Join(s.dir, name)
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				// lost the race for this name, look again
				continue
			}
			return "", fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			_ = os.Remove(target)
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(target)
			return "", fmt.Errorf("close %s: %w", name, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("save %q: no free name after %d attempts", desired, maxCreateAttempts)
}

// Path resolves a stored file name to its location on disk.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Stat describes one stored file.
func (s *Store) Stat(name string) (*models.FileInfo, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}
	return describe(info), nil
}

// List describes every stored file, sorted by name.
func (s *Store) List() ([]models.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.FileInfo{}, nil
		}
		return nil, fmt.Errorf("list file store: %w", err)
	}
	files := make([]models.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fi := describe(info)
		fi.Extension = ""
		files = append(files, *fi)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })
	return files, nil
}

func describe(info os.FileInfo) *models.FileInfo {
	return &models.FileInfo{
		FileName:  info.Name(),
		Size:      info.Size(),
		Modified:  info.ModTime().UTC(),
		Kind:      attachment.KindForFile(info.Name()),
		Extension: attachment.Extension(info.Name()),
	}
}

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxEntrySize bounds how much of a single entry is held in memory.
const DefaultMaxEntrySize int64 = 256 << 20

var ErrEntryTooLarge = errors.New("archive entry exceeds size limit")

// Entry is one record of the container. Data is read lazily through Read.
// Size is the uncompressed size declared by the archive.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64

	file *zip.File
}

// Read materialises the entry contents, up to DefaultMaxEntrySize.
func (e Entry) Read() ([]byte, error) {
	return e.ReadLimit(DefaultMaxEntrySize)
}

// ReadLimit materialises the entry contents and fails with ErrEntryTooLarge
// when the entry holds more than limit bytes. Both the declared size and the
// decompressed stream are checked. A non-positive limit means
// DefaultMaxEntrySize.
func (e Entry) ReadLimit(limit int64) ([]byte, error) {
	if e.file == nil {
		return nil, fmt.Errorf("read %s: entry has no data", e.Name)
	}
	if limit <= 0 {
		limit = DefaultMaxEntrySize
	}
	if e.Size > limit {
		return nil, fmt.Errorf("read %s: %w (%d > %d bytes)", e.Name, ErrEntryTooLarge, e.Size, limit)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("read %s: %w (more than %d bytes)", e.Name, ErrEntryTooLarge, limit)
	}
	return data, nil
}

// Reader is an opened archive. The central directory has already been
// validated by the time a Reader exists.
type Reader struct {
	entries []Entry
	closer  io.Closer
}

// Open parses an in-memory archive.
func Open(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &Error{Kind: KindInvalidArchive, Detail: "the uploaded file is not a valid ZIP archive", Err: err}
	}
	return newReader(zr.File, nil), nil
}

// OpenFile parses an archive on disk. The caller must Close the Reader.
func OpenFile(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArchive, Detail: "the uploaded file is not a valid ZIP archive", Err: err}
	}
	return newReader(zr.File, zr), nil
}

func newReader(files []*zip.File, closer io.Closer) *Reader {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Size:  int64(f.UncompressedSize64),
			file:  f,
		})
	}
	return &Reader{entries: entries, closer: closer}
}

// Entries lists the container records in archive order.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Close releases the underlying file of an archive opened with OpenFile.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

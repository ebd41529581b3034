package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatview/internal/archive"
	"chatview/internal/config"
	"chatview/internal/extract"
	"chatview/internal/filestore"
	"chatview/internal/models"
	"chatview/internal/storage"
)

type zipFile struct {
	name string
	body string
}

func buildZip(t *testing.T, files ...zipFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("create %s: %v", f.name, err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			t.Fatalf("write %s: %v", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, db *sql.DB) (*Service, *filestore.Store) {
	t.Helper()
	root := t.TempDir()
	store, err := filestore.New(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewService(db, extract.New(store, nil), filepath.Join(root, "uploads")), store
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{Databases: map[string]config.DatabaseConfig{
		"sqlite3": {DSN: filepath.Join(t.TempDir(), "history.db")},
	}}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func storeContents(t *testing.T, store *filestore.Store) []string {
	t.Helper()
	files, err := store.List()
	if err != nil {
		t.Fatalf("list store: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.FileName)
	}
	return names
}

const sampleTranscript = "[01/02/23, 10:00:00] Alice: hi\n" +
	"[01/02/23, 09:00:00] Bob: hey\n" +
	"[01/02/23, 10:05:00] Bob: <attached: photo.png>\n" +
	"[01/02/23, 10:06:00] Alice: video omitted\n" +
	"[01/02/23, 10:07:00] Alice: This message was deleted\n"

func TestImportEndToEnd(t *testing.T) {
	svc, store := newTestService(t, nil)
	data := buildZip(t,
		zipFile{name: "Chat/_chat.txt", body: sampleTranscript},
		zipFile{name: "Chat/photo.png", body: "png-bytes"},
		zipFile{name: "Chat/other/photo.png", body: "second"},
	)

	result, err := svc.Import(context.Background(), Upload{ArchiveName: "export.zip", Data: data})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	stats := result.Stats
	if stats.TotalMessages != 4 || stats.ExtractedFiles != 2 || stats.ChatFileName != "Chat/_chat.txt" || stats.Grammar != "bracket" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Authors != 2 || stats.ByType[models.KindText] != 2 || stats.ByType[models.KindImage] != 1 || stats.ByType[models.KindVideo] != 1 {
		t.Fatalf("unexpected breakdown %+v", stats)
	}

	msgs := result.Messages
	if msgs[0].Author != "Bob" || msgs[0].Content != "hey" || msgs[1].Author != "Alice" {
		t.Fatalf("messages not in chronological order: %+v", msgs)
	}
	for i, m := range msgs {
		if m.ID != i {
			t.Fatalf("id %d at position %d", m.ID, i)
		}
	}
	if msgs[2].Processed != models.FileAttachment(models.KindImage, "photo.png") {
		t.Fatalf("attachment not classified: %+v", msgs[2].Processed)
	}
	if msgs[3].Processed != models.FileAttachment(models.KindVideo, "video_omitted") {
		t.Fatalf("omission not classified: %+v", msgs[3].Processed)
	}

	got := strings.Join(storeContents(t, store), ",")
	if got != "photo.png,photo_1.png" {
		t.Fatalf("unexpected store contents %s", got)
	}
}

func TestImportRejectsNonArchive(t *testing.T) {
	svc, store := newTestService(t, nil)
	for _, data := range [][]byte{nil, []byte("definitely not a zip")} {
		_, err := svc.Import(context.Background(), Upload{Data: data})
		if !errors.Is(err, archive.ErrInvalidArchive) {
			t.Fatalf("expected invalid archive, got %v", err)
		}
	}
	if names := storeContents(t, store); len(names) != 0 {
		t.Fatalf("store must stay empty, got %v", names)
	}
}

func TestImportWithoutTranscriptWritesNothing(t *testing.T) {
	svc, store := newTestService(t, nil)
	data := buildZip(t, zipFile{name: "photo.png", body: "x"})
	_, err := svc.Import(context.Background(), Upload{Data: data})
	if archive.KindOf(err) != archive.KindTranscriptNotFound {
		t.Fatalf("expected transcript not found, got %v", err)
	}
	if names := storeContents(t, store); len(names) != 0 {
		t.Fatalf("store must stay empty, got %v", names)
	}
}

func TestImportBannerOnly(t *testing.T) {
	svc, _ := newTestService(t, nil)
	data := buildZip(t, zipFile{
		name: "_chat.txt",
		body: "[01/02/23, 10:00:00] Group: \u200eMessages and calls are end-to-end encrypted. No one outside of this chat, not even WhatsApp, can read or listen to them.",
	})
	result, err := svc.Import(context.Background(), Upload{Data: data})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stats.TotalMessages != 0 || result.Stats.Grammar != "" || result.Messages == nil || len(result.Messages) != 0 {
		t.Fatalf("expected zero messages, got %+v", result)
	}
}

func TestImportSkipExtract(t *testing.T) {
	svc, store := newTestService(t, nil)
	data := buildZip(t,
		zipFile{name: "_chat.txt", body: sampleTranscript},
		zipFile{name: "photo.png", body: "x"},
	)
	result, err := svc.Import(context.Background(), Upload{Data: data, SkipExtract: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stats.ExtractedFiles != 0 || result.Stats.ChatFileName != "_chat.txt" {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	if names := storeContents(t, store); len(names) != 0 {
		t.Fatalf("store must stay empty, got %v", names)
	}
}

func TestImportFromUploadPath(t *testing.T) {
	svc, _ := newTestService(t, nil)
	path, err := svc.NewUploadPath("my export.zip")
	if err != nil {
		t.Fatalf("upload path: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "zipfile-") || filepath.Ext(path) != ".zip" {
		t.Fatalf("unexpected upload path %s", path)
	}
	if err := os.WriteFile(path, buildZip(t, zipFile{name: "_chat.txt", body: sampleTranscript}), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	result, err := svc.Import(context.Background(), Upload{Path: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stats.TotalMessages != 4 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	svc.RemoveUpload(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("upload not removed: %v", err)
	}
	svc.RemoveUpload(path)
}

func TestImportHistory(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)
	data := buildZip(t,
		zipFile{name: "_chat.txt", body: sampleTranscript},
		zipFile{name: "media/photo.png", body: "x"},
	)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Import(ctx, Upload{ArchiveName: "export.zip", Data: data}); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}

	records, err := svc.ListImports(ctx, 0)
	if err != nil {
		t.Fatalf("list imports: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(records))
	}
	latest := records[0]
	if latest.ArchiveName != "export.zip" || latest.TotalMessages != 4 || latest.ExtractedFiles != 1 {
		t.Fatalf("unexpected record %+v", latest)
	}

	files, err := svc.ImportFiles(ctx, latest.ID)
	if err != nil {
		t.Fatalf("import files: %v", err)
	}
	if len(files) != 1 || files[0].Name != "photo_1.png" || files[0].EntryName != "media/photo.png" || files[0].Kind != models.KindImage {
		t.Fatalf("unexpected files %+v", files)
	}

	if records, err := svc.ListImports(ctx, 1); err != nil || len(records) != 1 {
		t.Fatalf("limit ignored: %v %d", err, len(records))
	}
}

func TestHistoryDisabledWithoutDB(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.ListImports(context.Background(), 10); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.ImportFiles(context.Background(), 1); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestCleanupStaleUploads(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if n, err := svc.cleanupStaleUploads(time.Now()); err != nil || n != 0 {
		t.Fatalf("missing uploads dir: %d %v", n, err)
	}
	if err := os.MkdirAll(svc.uploadsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	old := filepath.Join(svc.uploadsDir, "zipfile-old.zip")
	fresh := filepath.Join(svc.uploadsDir, "zipfile-fresh.zip")
	keep := filepath.Join(svc.uploadsDir, "unrelated.zip")
	for _, p := range []string{old, fresh, keep} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{old, keep} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	n, err := svc.cleanupStaleUploads(time.Now().Add(-time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 removal, got %d %v", n, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("stale upload kept")
	}
	for _, p := range []string{fresh, keep} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s removed: %v", p, err)
		}
	}
}

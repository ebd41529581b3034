package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"chatview/internal/models"
)

func writeArchive(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"WhatsApp Chat with Bob.txt": "01/02/2023, 10:00 - Alice: hi\n01/02/2023, 09:00 - Bob: IMG-1.jpg (file attached)",
		"IMG-1.jpg":                  "jpeg",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	p := filepath.Join(dir, "export.zip")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := importCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestImportCommandJSON(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeArchive(t, dir)
	filesDir := filepath.Join(dir, "files")

	out, err := runCLI(t, archivePath, "--files-dir", filesDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var result models.ImportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Stats.TotalMessages != 2 || result.Stats.ExtractedFiles != 1 || result.Stats.Grammar != "dash" {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	if result.Messages[0].Author != "Bob" || result.Messages[0].Processed.Kind != models.KindFile {
		t.Fatalf("unexpected first message %+v", result.Messages[0])
	}
	if _, err := os.Stat(filepath.Join(filesDir, "IMG-1.jpg")); err != nil {
		t.Fatalf("attachment not extracted: %v", err)
	}
}

func TestImportCommandYAMLNoExtract(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeArchive(t, dir)
	filesDir := filepath.Join(dir, "files")

	out, err := runCLI(t, archivePath, "--files-dir", filesDir, "--no-extract", "--format", "yaml")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var doc struct {
		Messages []struct {
			Author    string            `yaml:"author"`
			Processed map[string]string `yaml:"processed"`
		} `yaml:"messages"`
		Stats struct {
			TotalMessages  int `yaml:"totalMessages"`
			ExtractedFiles int `yaml:"extractedFiles"`
		} `yaml:"stats"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out)
	}
	if doc.Stats.TotalMessages != 2 || doc.Stats.ExtractedFiles != 0 {
		t.Fatalf("unexpected stats %+v", doc.Stats)
	}
	if doc.Messages[1].Processed["type"] != "text" || doc.Messages[1].Processed["content"] != "hi" {
		t.Fatalf("unexpected processed block %+v", doc.Messages[1].Processed)
	}
	if _, err := os.Stat(filesDir); !os.IsNotExist(err) {
		t.Fatalf("files dir must not be created with --no-extract")
	}
}

func TestImportCommandErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, filepath.Join(dir, "missing.zip"), "--files-dir", filepath.Join(dir, "files")); err == nil || !strings.Contains(err.Error(), "invalid_archive") {
		t.Fatalf("expected invalid archive error, got %v", err)
	}
	archivePath := writeArchive(t, dir)
	if _, err := runCLI(t, archivePath, "--format", "xml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestImportCommandVersion(t *testing.T) {
	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Fatalf("version missing from %q", out)
	}
}

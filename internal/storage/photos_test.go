package storage_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/devtrails/campdir/internal/storage"
)

func uploadHeader(t *testing.T, payload []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="photo.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("part write error: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("PUT", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, header, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("FormFile error: %v", err)
	}
	return header
}

func TestSave_WritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	s := storage.NewPhotoStore(dir)

	header := uploadHeader(t, []byte("jpegdata"))

	if err := s.Save(header, "photo_abc.jpg"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo_abc.jpg"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	s := storage.NewPhotoStore(dir)

	if err := s.Save(uploadHeader(t, []byte("old")), "photo.jpg"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(uploadHeader(t, []byte("new")), "photo.jpg"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	if string(data) != "new" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := storage.NewPhotoStore(dir)

	if err := s.Save(uploadHeader(t, []byte("x")), "photo.jpg"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "photo.jpg" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

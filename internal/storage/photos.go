// Package storage persists uploaded bootcamp photos on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

type PhotoStore struct {
	dir string
}

func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{dir: dir}
}

// Save writes the uploaded file as <name> under the store directory. The
// write goes to a temp file first and only renames into place on success, so
// a failed upload never leaves a partial photo behind.
func (s *PhotoStore) Save(file *multipart.FileHeader, name string) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()

	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}

	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")

	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, src); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("flush upload: %w", err)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}

	return nil
}

func (s *PhotoStore) Dir() string {
	return s.dir
}

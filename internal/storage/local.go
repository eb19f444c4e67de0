package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalPhotoStore writes photos into a directory served by the HTTP app under URLPrefix.
type LocalPhotoStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

func NewLocalPhotoStore(dir, urlPrefix string, maxBytes int64) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalPhotoStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Dir is the directory photos are written to.
func (s *LocalPhotoStore) Dir() string { return s.dir }

func (s *LocalPhotoStore) Save(_ context.Context, photo PhotoUpload) (string, error) {
	ext, _, err := ValidatePhoto(photo, s.maxBytes)
	if err != nil {
		return "", err
	}
	name := objectName(ext)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := f.Write(photo.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write photo file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close photo file: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalPhotoStore) Delete(_ context.Context, ref string) error {
	name := path.Base(ref)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid photo reference %q", ref)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete photo %s: %w", name, err)
	}
	return nil
}

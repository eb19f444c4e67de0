// Package storage keeps uploaded profile photos. The user record only stores the reference
// returned by Save.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resumebuilder/internal/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxPhotoBytes is the upload limit for profile photos.
const DefaultMaxPhotoBytes = 5 * 1024 * 1024

var allowedPhotoTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// PhotoUpload is a profile photo received from a client.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// PhotoStore persists profile photos and returns a reference (URL or path) to them.
type PhotoStore interface {
	Save(ctx context.Context, photo PhotoUpload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ValidatePhoto checks size, extension and sniffed content type. It returns the
// normalized extension and content type.
func ValidatePhoto(photo PhotoUpload, maxBytes int64) (ext, contentType string, err error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	if len(photo.Data) == 0 {
		return "", "", apperrors.Validation("photo is empty")
	}
	if int64(len(photo.Data)) > maxBytes {
		return "", "", apperrors.Validation(fmt.Sprintf("photo exceeds the %d byte limit", maxBytes))
	}

	ext = strings.ToLower(filepath.Ext(photo.Filename))
	expected, ok := allowedPhotoTypes[ext]
	if !ok {
		return "", "", apperrors.Validation("only image files are allowed")
	}
	detected := mimetype.Detect(photo.Data)
	if !detected.Is(expected) {
		return "", "", apperrors.Validation("only image files are allowed")
	}
	return ext, expected, nil
}

func objectName(ext string) string {
	return "profile-" + uuid.NewString() + ext
}

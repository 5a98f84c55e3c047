// Package uploads stores profile photos and hands back the URL the rest of
// the system treats as an opaque asset reference.
package uploads

import (
	"context"
	"errors"
	"io"
	"strings"
)

// MaxPhotoBytes caps uploads at 5 MiB; the same limit applies on the client
// before any bytes are sent.
const MaxPhotoBytes = 5 << 20

var (
	ErrNotImage = errors.New("file must be an image")
	ErrTooLarge = errors.New("image must be 5 MB or smaller")
)

// Store persists a photo and returns its public URL. Nothing is stored when
// an error is returned.
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ValidatePhoto enforces the upload preconditions. Size -1 means unknown and
// is left for the store to police while copying.
func ValidatePhoto(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > MaxPhotoBytes {
		return ErrTooLarge
	}
	return nil
}

// ExtensionFor picks a filename extension from the MIME type; unknown image
// types fall back to .img so the key stays unambiguous.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

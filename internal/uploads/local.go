package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes photos to a directory served under BaseURL. It is the
// default backend for development and single-node deployments.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if err := ValidatePhoto(contentType, size); err != nil {
		return "", err
	}

	path := filepath.Join(s.Dir, filepath.Base(key))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}

	// Copy with a hard cap so a lying Content-Length cannot blow the limit.
	n, err := io.Copy(f, io.LimitReader(body, MaxPhotoBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxPhotoBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return s.BaseURL + "/" + filepath.Base(key), nil
}

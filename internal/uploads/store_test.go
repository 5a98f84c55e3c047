package uploads

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePhoto(t *testing.T) {
	if err := ValidatePhoto("image/jpeg", 4<<20); err != nil {
		t.Fatalf("4 MiB jpeg: %v", err)
	}
	if err := ValidatePhoto("image/jpeg", 6<<20); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("6 MiB jpeg: got %v", err)
	}
	if err := ValidatePhoto("application/pdf", 1024); !errors.Is(err, ErrNotImage) {
		t.Fatalf("pdf: got %v", err)
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.Repeat([]byte{0xAB}, 1024)
	url, err := s.Save(context.Background(), "p1.jpg", "image/jpeg", bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "http://localhost:8080/uploads/p1.jpg" {
		t.Fatalf("url = %q", url)
	}

	saved, err := os.ReadFile(filepath.Join(dir, "p1.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, body) {
		t.Fatal("stored bytes differ")
	}
}

func TestLocalStoreRejectsOversizeBody(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://x/u")
	if err != nil {
		t.Fatal(err)
	}

	// Declared size is small, the body is not: the copy cap must catch it and
	// leave nothing behind.
	big := strings.NewReader(strings.Repeat("a", MaxPhotoBytes+2))
	_, err = s.Save(context.Background(), "liar.jpg", "image/jpeg", big, 1024)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "liar.jpg")); !os.IsNotExist(err) {
		t.Fatal("partial file left behind")
	}
}

func TestExtensionFor(t *testing.T) {
	if got := ExtensionFor("image/png"); got != ".png" {
		t.Fatalf("png: %q", got)
	}
	if got := ExtensionFor("image/x-exotic"); got != ".img" {
		t.Fatalf("fallback: %q", got)
	}
}

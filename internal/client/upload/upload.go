// Package upload manages the profile photo on the client side: local
// validation, an instant preview, and the background transmit to the server.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"signupflow/internal/uploads"
)

// Uploader sends the photo bytes to the server and returns the stored
// reference. The api client satisfies this.
type Uploader interface {
	UploadPhoto(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// Handler owns the current photo selection. Selecting a new photo while a
// previous transmit is still in flight supersedes it: only the result of the
// latest selection is ever kept.
type Handler struct {
	uploader Uploader

	mu         sync.Mutex
	generation uint64
	preview    string
	url        string

	// Guarded by mu; installed via SetCallbacks, invoked outside the lock
	// once a transmit settles.
	onStored func(url string)
	onFailed func(err error)
}

func NewHandler(u Uploader) *Handler {
	return &Handler{uploader: u}
}

// SetCallbacks installs the transmit callbacks. Either may be nil. Safe to
// call while a transmit is in flight; a superseded transmit never fires them.
func (h *Handler) SetCallbacks(stored func(url string), failed func(err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStored = stored
	h.onFailed = failed
}

// Select validates the photo, builds the preview, and starts the transmit.
// The preview is available immediately, independent of the network; the
// stored reference arrives through the stored callback. On validation failure nothing
// changes: no preview, no transmit, prior reference kept.
func (h *Handler) Select(ctx context.Context, filename, contentType string, data []byte) error {
	if err := uploads.ValidatePhoto(contentType, int64(len(data))); err != nil {
		return err
	}

	h.mu.Lock()
	h.generation++
	gen := h.generation
	h.preview = dataURL(contentType, data)
	h.mu.Unlock()

	go h.transmit(ctx, gen, filename, contentType, data)
	return nil
}

func (h *Handler) transmit(ctx context.Context, gen uint64, filename, contentType string, data []byte) {
	url, err := h.uploader.UploadPhoto(ctx, filename, contentType, bytes.NewReader(data))

	h.mu.Lock()
	if gen != h.generation {
		// A newer selection superseded this transmit; drop the result.
		h.mu.Unlock()
		return
	}
	if err == nil {
		h.url = url
	}
	onStored, onFailed := h.onStored, h.onFailed
	h.mu.Unlock()

	if err != nil {
		if onFailed != nil {
			onFailed(err)
		}
		return
	}
	if onStored != nil {
		onStored(url)
	}
}

// Preview returns the data URL of the latest valid selection, usable before
// the transmit finishes.
func (h *Handler) Preview() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.preview
}

// URL returns the stored reference of the last successfully transmitted
// photo, or the empty string.
func (h *Handler) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.url
}

// Restore seeds the handler with a reference from a saved draft.
func (h *Handler) Restore(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.url = url
}

func dataURL(contentType string, data []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "data:%s;base64,", contentType)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Package draft persists the in-progress registration form between runs so an
// interrupted signup resumes at the step it left off.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"signupflow/internal/rules"
)

// Draft is the typed snapshot of the wizard state. One struct, one JSON blob;
// partial or per-field persistence is deliberately not supported.
type Draft struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	PhoneNumber     string   `json:"phoneNumber"`
	Country         string   `json:"country"`
	City            string   `json:"city"`
	Gender          string   `json:"gender"`
	DateOfBirth     string   `json:"dateOfBirth"`
	Interests       []string `json:"interests"`
	PhotoURL        string   `json:"photoUrl"`

	CurrentStep int `json:"currentStep"`
}

// Fresh returns an empty draft positioned at the first step.
func Fresh() *Draft {
	return &Draft{CurrentStep: 1}
}

// Store reads and writes the draft as a single JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the draft under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "signupflow", "draft.json"), nil
}

// Load returns the stored draft. A missing or unreadable file yields a fresh
// draft rather than an error: a corrupt draft must never block registration.
// A step outside the wizard's range counts as corrupt too, so a hand-edited
// blob can never strand the step machine.
func (s *Store) Load() *Draft {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Fresh()
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil ||
		d.CurrentStep < rules.FirstStep || d.CurrentStep > rules.LastStep {
		return Fresh()
	}
	return &d
}

// Save writes the draft atomically: temp file in the same directory, then
// rename over the target.
func (s *Store) Save(d *Draft) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".draft-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Clear removes the stored draft. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Package theme switches between the two looks of the client and resolves
// category styles to colors.
package theme

import (
	"fmt"
	"sync"
)

type Mode string

const (
	Pixel  Mode = "pixel"
	Starry Mode = "starry"

	Default = Pixel
	// StorageKey is the local storage key holding the mode.
	StorageKey = "theme"
)

func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case Pixel, Starry:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Storage is the local storage the switcher persists to.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type Switcher struct {
	mu    sync.Mutex
	store Storage
	mode  Mode
}

// NewSwitcher restores the stored mode, falling back to Default for
// missing or unknown values.
func NewSwitcher(store Storage) *Switcher {
	s := &Switcher{store: store, mode: Default}
	if v, ok := store.Get(StorageKey); ok {
		if m, err := Parse(v); err == nil {
			s.mode = m
		}
	}
	return s
}

func (s *Switcher) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Switcher) Set(m Mode) error {
	if _, err := Parse(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(StorageKey, string(m)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.mode = m
	return nil
}

// Toggle flips between pixel and starry and returns the new mode.
func (s *Switcher) Toggle() (Mode, error) {
	next := Starry
	if s.Mode() == Starry {
		next = Pixel
	}
	if err := s.Set(next); err != nil {
		return s.Mode(), err
	}
	return next, nil
}

// Palette of the current mode.
func (s *Switcher) Palette() Palette {
	return PaletteFor(s.Mode())
}

package languageconfig

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Loader returns the settings currently in force.
type Loader func(ctx context.Context) (Settings, error)

// StoredOr loads the settings stored in repo, or seed while none are stored.
func StoredOr(repo Repository, seed Settings) Loader {
	return func(ctx context.Context) (Settings, error) {
		settings, err := repo.Get(ctx)
		if errors.Is(err, ErrSettingsNotFound) {
			return seed, nil
		}
		return settings, err
	}
}

// State provides a concurrency-safe view of the current language settings.
type State struct {
	current   atomic.Pointer[Settings]
	refreshMu sync.Mutex
}

// NewState constructs a new state seeded with settings.
func NewState(settings Settings) *State {
	st := &State{}
	st.Set(settings)
	return st
}

// Settings returns a copy of the current settings.
func (s *State) Settings() Settings {
	if s == nil {
		return Settings{}
	}
	current := s.current.Load()
	if current == nil {
		return Settings{}
	}
	return current.clone()
}

// PlaceholdersEnabled reports whether the placeholder hook should run.
func (s *State) PlaceholdersEnabled() bool {
	if s == nil {
		return false
	}
	current := s.current.Load()
	return current != nil && current.PlaceholdersEnabled
}

// Set replaces the current settings.
func (s *State) Set(settings Settings) {
	if s == nil {
		return
	}
	normalized := settings.Normalized()
	s.current.Store(&normalized)
}

// Refresh replaces the current settings with the ones load returns. Refreshes
// are serialised, so the last one to finish applied the newest stored value.
// A failed load keeps the current settings.
func (s *State) Refresh(ctx context.Context, load Loader) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	settings, err := load(ctx)
	if err != nil {
		return err
	}
	s.Set(settings)
	return nil
}

// Follow refreshes from load on every event until events closes or ctx ends.
// Events only signal a change; their payload is not applied, so an event
// that arrives late cannot roll the state back.
func (s *State) Follow(ctx context.Context, events <-chan ChangeEvent, load Loader) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			_ = s.Refresh(ctx, load)
		}
	}
}

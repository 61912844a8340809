package languageconfig

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepository_CRUDEvents(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	settings := Settings{
		DefaultLanguage:     "en",
		SupportedLanguages:  []string{"en", "es", "es-MX"},
		PlaceholdersEnabled: true,
	}
	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	assertEvent(t, events, ChangeCreated)

	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() repeat error = %v", err)
	}
	assertNoEvent(t, events)

	settings.SupportedLanguages = append(settings.SupportedLanguages, "fr")
	if _, err := repo.Upsert(ctx, settings); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	evt := assertEvent(t, events, ChangeUpdated)
	if len(evt.Settings.SupportedLanguages) != 4 {
		t.Fatalf("expected event to carry updated languages, got %v", evt.Settings.SupportedLanguages)
	}

	fetched, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !fetched.Equal(settings) {
		t.Fatalf("Get() returned %+v, want %+v", fetched, settings)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)
}

func TestMemoryRepository_DeleteMissing(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.Delete(context.Background()); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func TestSettingsNormalized(t *testing.T) {
	got := Settings{DefaultLanguage: " en ", SupportedLanguages: []string{"en", " ", "fr", "en"}}.Normalized()
	want := Settings{DefaultLanguage: "en", SupportedLanguages: []string{"en", "fr"}}
	if !got.Equal(want) {
		t.Fatalf("Normalized() = %+v, want %+v", got, want)
	}
}

func TestStateFollowsEvents(t *testing.T) {
	repo := NewMemoryRepository()
	seed := Settings{DefaultLanguage: "en", SupportedLanguages: []string{"en"}}
	state := NewState(seed)
	if state.PlaceholdersEnabled() {
		t.Fatalf("expected placeholders disabled by seed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan ChangeEvent)
	done := make(chan struct{})
	go func() {
		state.Follow(ctx, events, StoredOr(repo, seed))
		close(done)
	}()

	stored := Settings{DefaultLanguage: "fr", SupportedLanguages: []string{"fr"}, PlaceholdersEnabled: true}
	if _, err := repo.Upsert(ctx, stored); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	events <- ChangeEvent{Type: ChangeCreated, Settings: stored}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	events <- ChangeEvent{Type: ChangeDeleted}
	// A late event must not bring back settings that are no longer stored.
	events <- ChangeEvent{Type: ChangeUpdated, Settings: stored}
	close(events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Follow did not return after channel close")
	}
	if state.Settings().DefaultLanguage != "en" || state.PlaceholdersEnabled() {
		t.Fatalf("expected seed restored after delete, got %+v", state.Settings())
	}
}

func TestStateRefreshKeepsSettingsWhenLoadFails(t *testing.T) {
	seed := Settings{DefaultLanguage: "en", SupportedLanguages: []string{"en"}, PlaceholdersEnabled: true}
	state := NewState(seed)
	loadErr := errors.New("settings unavailable")

	err := state.Refresh(context.Background(), func(context.Context) (Settings, error) {
		return Settings{}, loadErr
	})
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	if !state.Settings().Equal(seed) {
		t.Fatalf("expected settings kept, got %+v", state.Settings())
	}
}

func TestBroadcasterKeepsLatestPendingEvent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for _, def := range []string{"en", "es", "fr"} {
		if _, err := repo.Upsert(ctx, Settings{DefaultLanguage: def, SupportedLanguages: []string{"en", "es", "fr"}}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", def, err)
		}
	}

	evt := assertEvent(t, events, ChangeUpdated)
	if evt.Settings.DefaultLanguage != "fr" {
		t.Fatalf("expected pending event for the last write, got %q", evt.Settings.DefaultLanguage)
	}
	assertNoEvent(t, events)
}

func TestStateFollowAppliesLastOfBurst(t *testing.T) {
	repo := NewMemoryRepository()
	seed := Settings{DefaultLanguage: "en", SupportedLanguages: []string{"en"}}
	state := NewState(seed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	writes := []Settings{
		{DefaultLanguage: "en", SupportedLanguages: []string{"en", "es"}, PlaceholdersEnabled: true},
		{DefaultLanguage: "es", SupportedLanguages: []string{"en", "es"}, PlaceholdersEnabled: true},
		{DefaultLanguage: "es", SupportedLanguages: []string{"es"}, PlaceholdersEnabled: false},
	}
	for _, settings := range writes {
		if _, err := repo.Upsert(ctx, settings); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	go state.Follow(ctx, events, StoredOr(repo, seed))

	deadline := time.Now().Add(time.Second)
	for state.Settings().DefaultLanguage != "es" {
		if time.Now().After(deadline) {
			t.Fatalf("state did not apply the burst, got %+v", state.Settings())
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := state.Settings()
	if !got.Equal(writes[2]) || state.PlaceholdersEnabled() {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}

func assertEvent(t *testing.T, events <-chan ChangeEvent, want ChangeType) ChangeEvent {
	t.Helper()
	select {
	case evt := <-events:
		if evt.Type != want {
			t.Fatalf("expected event %s, got %s", want, evt.Type)
		}
		return evt
	default:
		t.Fatalf("expected event %s, got none", want)
	}
	return ChangeEvent{}
}

func assertNoEvent(t *testing.T, events <-chan ChangeEvent) {
	t.Helper()
	select {
	case evt := <-events:
		t.Fatalf("expected no event, got %s", evt.Type)
	default:
	}
}

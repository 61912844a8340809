package locales

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-treesync/internal/identity"
)

func TestMemoryRepositoryLookups(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, code := range []string{"fr", "en", "es-MX"} {
		if _, err := repo.Create(ctx, New(code, "")); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	byCode, err := repo.GetByCode(ctx, "ES-mx")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if byCode.ID != identity.LocaleUUID("es-MX") || byCode.Display != "es-MX" {
		t.Fatalf("unexpected locale: %+v", byCode)
	}

	byID, err := repo.GetByID(ctx, byCode.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Code != "es-MX" {
		t.Fatalf("expected es-MX, got %s", byID.Code)
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 || all[0].Code != "en" || all[2].Code != "fr" {
		t.Fatalf("expected code ordering, got %+v", all)
	}

	subset, _ := repo.ListByCodes(ctx, []string{"fr", "de", "en", "fr"})
	if len(subset) != 2 || subset[0].Code != "en" || subset[1].Code != "fr" {
		t.Fatalf("expected en and fr, got %+v", subset)
	}
}

func TestMemoryRepositoryErrors(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, &Locale{}); !errors.Is(err, ErrLocaleCodeRequired) {
		t.Fatalf("expected ErrLocaleCodeRequired, got %v", err)
	}
	if _, err := repo.GetByCode(ctx, " "); !errors.Is(err, ErrLocaleCodeRequired) {
		t.Fatalf("expected ErrLocaleCodeRequired, got %v", err)
	}
	if _, err := repo.GetByCode(ctx, "de"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIDsSkipsNil(t *testing.T) {
	en := New("en", "English")
	ids := IDs(en, nil)
	if len(ids) != 1 || ids[0] != en.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

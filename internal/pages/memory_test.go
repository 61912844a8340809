package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryRepositoryRejectsDuplicateTranslation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	key := uuid.New()
	locale := uuid.New()

	if _, err := repo.Create(ctx, &Page{TranslationKey: key, LocaleID: locale, Depth: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &Page{TranslationKey: key, LocaleID: locale, Depth: 2}); !errors.Is(err, ErrDuplicateTranslation) {
		t.Fatalf("expected ErrDuplicateTranslation, got %v", err)
	}
}

func TestMemoryRepositoryListFiltersAndOrders(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := uuid.New()

	mustCreate := func(p *Page) *Page {
		t.Helper()
		created, err := repo.Create(ctx, p)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return created
	}

	root := mustCreate(&Page{TranslationKey: uuid.New(), LocaleID: uuid.New(), Depth: 1, CreatedAt: base})
	child := mustCreate(&Page{TranslationKey: uuid.New(), LocaleID: uuid.New(), Depth: 3, CreatedAt: base})
	home := mustCreate(&Page{TranslationKey: uuid.New(), LocaleID: uuid.New(), Depth: 2, CreatedAt: base.Add(time.Second)})
	alias := mustCreate(&Page{TranslationKey: uuid.New(), LocaleID: uuid.New(), Depth: 2, AliasOfID: &source, CreatedAt: base})

	all, err := repo.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].ID != root.ID || all[3].ID != child.ID {
		t.Fatalf("unexpected ordering: %+v", all)
	}

	realRows, err := repo.List(ctx, ListOptions{Aliases: AliasesExcluded, MinDepth: RootDepth})
	if err != nil {
		t.Fatalf("list real: %v", err)
	}
	if len(realRows) != 2 || realRows[0].ID != home.ID || realRows[1].ID != child.ID {
		t.Fatalf("expected home then child, got %+v", realRows)
	}

	aliases, err := repo.List(ctx, ListOptions{Aliases: AliasesOnly})
	if err != nil {
		t.Fatalf("list aliases: %v", err)
	}
	if len(aliases) != 1 || aliases[0].ID != alias.ID {
		t.Fatalf("expected alias only, got %+v", aliases)
	}
}

func TestMemoryRepositoryLocalesForKey(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	key := uuid.New()
	realLocale := uuid.New()
	aliasLocale := uuid.New()
	source := uuid.New()

	if _, err := repo.Create(ctx, &Page{TranslationKey: key, LocaleID: realLocale}); err != nil {
		t.Fatalf("create real: %v", err)
	}
	if _, err := repo.Create(ctx, &Page{TranslationKey: key, LocaleID: aliasLocale, AliasOfID: &source}); err != nil {
		t.Fatalf("create alias: %v", err)
	}

	realIDs, _ := repo.LocalesForKey(ctx, key, AliasesExcluded)
	if len(realIDs) != 1 || realIDs[0] != realLocale {
		t.Fatalf("expected real locale only, got %v", realIDs)
	}
	aliased, _ := repo.LocalesForKey(ctx, key, AliasesOnly)
	if len(aliased) != 1 || aliased[0] != aliasLocale {
		t.Fatalf("expected alias locale only, got %v", aliased)
	}
	all, _ := repo.LocalesForKey(ctx, key, AliasesIncluded)
	if len(all) != 2 {
		t.Fatalf("expected both locales, got %v", all)
	}
}

func TestMemoryRepositoryUpdateAliasOf(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	oldSource := uuid.New()
	newSource := uuid.New()

	created, err := repo.Create(ctx, &Page{TranslationKey: uuid.New(), LocaleID: uuid.New(), AliasOfID: &oldSource})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateAliasOf(ctx, created.ID, newSource); err != nil {
		t.Fatalf("update alias: %v", err)
	}
	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.AliasOfID == nil || *fetched.AliasOfID != newSource {
		t.Fatalf("expected alias to point at %s, got %v", newSource, fetched.AliasOfID)
	}
	if err := repo.UpdateAliasOf(ctx, uuid.New(), newSource); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

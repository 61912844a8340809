package synctree

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-treesync/internal/fallback"
	"github.com/goliatone/go-treesync/internal/languages"
	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/google/uuid"
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	pages    *pages.MemoryRepository
	locales  *locales.MemoryRepository
	service  pages.Service
	resolver *fallback.Resolver
	byCode   map[string]*locales.Locale
	root     *pages.Page
}

func newFixture(t *testing.T, supported []string, defaultCode string) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		t:       t,
		ctx:     ctx,
		pages:   pages.NewMemoryRepository(),
		locales: locales.NewMemoryRepository(),
		byCode:  map[string]*locales.Locale{},
	}
	f.service = pages.NewService(f.pages, pages.WithClock(steppingClock()))

	for _, code := range supported {
		created, err := f.locales.Create(ctx, locales.New(code, ""))
		if err != nil {
			t.Fatalf("create locale %s: %v", code, err)
		}
		f.byCode[code] = created
	}

	table, err := languages.Default()
	if err != nil {
		t.Fatalf("language table: %v", err)
	}
	f.resolver, err = fallback.New(table, f.locales, fallback.WithLanguages(supported, defaultCode))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	f.root, err = f.service.Create(ctx, pages.CreatePageRequest{
		LocaleID:    f.byCode[defaultCode].ID,
		ContentType: "root",
		Title:       "Root",
		Slug:        "root",
	})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	return f
}

func steppingClock() func() time.Time {
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func (f *fixture) locale(code string) *locales.Locale {
	f.t.Helper()
	loc, ok := f.byCode[code]
	if !ok {
		f.t.Fatalf("unknown locale %s", code)
	}
	return loc
}

// create adds a real row. A zero key starts a new logical page.
func (f *fixture) create(code string, parent *pages.Page, key uuid.UUID, slug, contentType string) *pages.Page {
	f.t.Helper()
	req := pages.CreatePageRequest{
		TranslationKey: key,
		LocaleID:       f.locale(code).ID,
		ContentType:    contentType,
		Title:          slug,
		Slug:           slug,
		Live:           true,
	}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	page, err := f.service.Create(f.ctx, req)
	if err != nil {
		f.t.Fatalf("create %s/%s: %v", code, slug, err)
	}
	return page
}

func (f *fixture) translation(key uuid.UUID, code string) (*pages.Page, bool) {
	f.t.Helper()
	page, err := f.pages.GetTranslation(f.ctx, key, f.locale(code).ID)
	if pages.IsNotFound(err) {
		return nil, false
	}
	if err != nil {
		f.t.Fatalf("get translation: %v", err)
	}
	return page, true
}

func (f *fixture) synchronizer() *Synchronizer {
	return NewSynchronizer(f.pages, f.locales, f.service, f.resolver, WithSynchronizerClock(steppingClock()))
}

// localizedTree mirrors a site with an English source tree, French and
// Canadian French homepages, a French about page with a Canadian French
// placeholder, and a page that only exists in Canadian French.
type localizedTree struct {
	home       *pages.Page
	frHome     *pages.Page
	frCAHome   *pages.Page
	about      *pages.Page
	frAbout    *pages.Page
	frCAAbout  *pages.Page
	canadaOnly *pages.Page
}

func (f *fixture) buildLocalizedTree() localizedTree {
	f.t.Helper()
	var tree localizedTree
	tree.home = f.create("en", f.root, uuid.Nil, "home", "home_page")
	tree.frHome = f.create("fr", f.root, tree.home.TranslationKey, "accueil", "home_page")
	tree.frCAHome = f.create("fr-CA", f.root, tree.home.TranslationKey, "accueil", "home_page")
	tree.about = f.create("en", tree.home, uuid.Nil, "about", "page")
	tree.frAbout = f.create("fr", tree.frHome, tree.about.TranslationKey, "a-propos", "page")

	var err error
	tree.frCAAbout, err = f.service.CopyForTranslation(f.ctx, tree.frAbout, f.locale("fr-CA").ID, pages.CopyOptions{Alias: true})
	if err != nil {
		f.t.Fatalf("copy fr-CA about: %v", err)
	}
	tree.canadaOnly = f.create("fr-CA", tree.frCAHome, uuid.Nil, "only-canada", "page")
	return tree
}

package synctree

import (
	"context"

	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/logging"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/google/uuid"
)

// FeatureGates exposes the toggles the hook consults on every save.
type FeatureGates struct {
	PlaceholdersEnabled func() bool
}

func (g FeatureGates) placeholdersEnabled() bool {
	return g.PlaceholdersEnabled != nil && g.PlaceholdersEnabled()
}

// Classification describes the role of a saved row within its translation key.
type Classification string

const (
	// ClassSource marks the only real row of its key.
	ClassSource Classification = "source"
	// ClassTranslation marks a real row alongside other real rows.
	ClassTranslation Classification = "translation"
	// ClassAlias marks a placeholder row.
	ClassAlias Classification = "alias"
)

// HookOption configures the hook.
type HookOption func(*Hook)

// WithHookLogger injects the hook logger.
func WithHookLogger(logger interfaces.Logger) HookOption {
	return func(h *Hook) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithFeatureGates overrides the hook's feature gates.
func WithFeatureGates(gates FeatureGates) HookOption {
	return func(h *Hook) {
		h.gates = gates
	}
}

// Hook keeps placeholders current as pages are saved. It queries live storage
// on every event rather than an index snapshot.
type Hook struct {
	pages    PageStore
	locales  LocaleStore
	copier   Copier
	resolver FallbackResolver
	gates    FeatureGates
	logger   interfaces.Logger
}

var _ pages.SaveObserver = (*Hook)(nil)

// NewHook wires the hook collaborators. The hook is disabled until a
// PlaceholdersEnabled gate reporting true is supplied.
func NewHook(pageStore PageStore, localeStore LocaleStore, copier Copier, resolver FallbackResolver, opts ...HookOption) *Hook {
	h := &Hook{
		pages:    pageStore,
		locales:  localeStore,
		copier:   copier,
		resolver: resolver,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// PageSaved implements pages.SaveObserver. Placeholder saves are ignored so
// the placeholders this hook creates never re-trigger it.
func (h *Hook) PageSaved(ctx context.Context, event pages.SaveEvent) error {
	if !h.gates.placeholdersEnabled() {
		return nil
	}
	page := event.Page
	if page == nil || page.IsAlias() || page.IsRoot() {
		return nil
	}
	if !event.Created && !event.Converted {
		return nil
	}

	realLocales, err := h.pages.LocalesForKey(ctx, page.TranslationKey, pages.AliasesExcluded)
	if err != nil {
		return err
	}
	aliasedLocales, err := h.pages.LocalesForKey(ctx, page.TranslationKey, pages.AliasesOnly)
	if err != nil {
		return err
	}
	class := classify(page, realLocales)

	if err := h.createMissingPlaceholders(ctx, page, realLocales, aliasedLocales); err != nil {
		return err
	}
	if class != ClassTranslation {
		return nil
	}
	return h.repointPlaceholders(ctx, page, realLocales, aliasedLocales)
}

// classify reports the role of page given the locales holding real rows for
// its key.
func classify(page *pages.Page, realLocales []uuid.UUID) Classification {
	if page.IsAlias() {
		return ClassAlias
	}
	for _, id := range realLocales {
		if id != page.LocaleID {
			return ClassTranslation
		}
	}
	return ClassSource
}

func (h *Hook) createMissingPlaceholders(ctx context.Context, page *pages.Page, realLocales, aliasedLocales []uuid.UUID) error {
	all, err := h.locales.List(ctx)
	if err != nil {
		return err
	}
	for _, locale := range all {
		if locale.ID == page.LocaleID || containsID(realLocales, locale.ID) || containsID(aliasedLocales, locale.ID) {
			continue
		}
		placeholder, err := h.copier.CopyForTranslation(ctx, page, locale.ID, pages.CopyOptions{
			CopyParents: true,
			Alias:       true,
			KeepLive:    true,
		})
		if err != nil {
			return &EntryError{TranslationKey: page.TranslationKey, LocaleCode: locale.Code, Err: err}
		}
		logging.WithSyncContext(h.logger.WithContext(ctx), locale.Code, page.TranslationKey.String(), "create_placeholder").
			Info("synctree.hook.placeholder_created",
				"page_id", placeholder.ID,
				"source_page_id", page.ID,
			)
	}
	return nil
}

// repointPlaceholders makes page the source of every placeholder whose best
// fallback is now page's locale. Content and position of a repointed
// placeholder are left as they were; a full SynchronizeAll run does not
// refresh them either.
func (h *Hook) repointPlaceholders(ctx context.Context, page *pages.Page, realLocales, aliasedLocales []uuid.UUID) error {
	for _, localeID := range aliasedLocales {
		locale, err := h.locales.GetByID(ctx, localeID)
		if err != nil {
			return err
		}
		best, err := h.bestSource(ctx, locale, realLocales)
		if err != nil {
			return err
		}
		if best == nil || best.ID != page.LocaleID {
			continue
		}
		placeholder, err := h.pages.GetTranslation(ctx, page.TranslationKey, localeID)
		if err != nil {
			return err
		}
		if !placeholder.IsAlias() || *placeholder.AliasOfID == page.ID {
			continue
		}
		if err := h.pages.UpdateAliasOf(ctx, placeholder.ID, page.ID); err != nil {
			return &EntryError{TranslationKey: page.TranslationKey, LocaleCode: locale.Code, Err: err}
		}
		// TODO: refresh the repointed placeholder's title, slug and parent from the new source.
		logging.WithSyncContext(h.logger.WithContext(ctx), locale.Code, page.TranslationKey.String(), "repoint_placeholder").
			Info("synctree.hook.placeholder_repointed",
				"page_id", placeholder.ID,
				"previous_source_page_id", *placeholder.AliasOfID,
				"source_page_id", page.ID,
				"resync_pending", true,
			)
	}
	return nil
}

func (h *Hook) bestSource(ctx context.Context, locale *locales.Locale, candidates []uuid.UUID) (*locales.Locale, error) {
	if h.resolver == nil {
		return nil, nil
	}
	return h.resolver.BestFallbackLocale(ctx, locale, candidates)
}

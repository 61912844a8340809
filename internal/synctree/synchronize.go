package synctree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/logging"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/google/uuid"
)

// PageStore is the page storage surface used by the synchroniser and hook.
type PageStore interface {
	PageReader
	GetTranslation(ctx context.Context, translationKey, localeID uuid.UUID) (*pages.Page, error)
	UpdateAliasOf(ctx context.Context, id, aliasOfID uuid.UUID) error
}

// LocaleStore lists and resolves locales.
type LocaleStore interface {
	List(ctx context.Context) ([]*locales.Locale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*locales.Locale, error)
}

// Copier materialises a page into another locale.
type Copier interface {
	CopyForTranslation(ctx context.Context, source *pages.Page, targetLocaleID uuid.UUID, opts pages.CopyOptions) (*pages.Page, error)
}

// FallbackResolver picks the preferred source locale among candidates.
type FallbackResolver interface {
	BestFallbackLocale(ctx context.Context, locale *locales.Locale, candidates []uuid.UUID) (*locales.Locale, error)
}

// TreeResult summarises one locale's synchronisation.
type TreeResult struct {
	LocaleID   uuid.UUID
	LocaleCode string
	// Considered counts entries without a real row in the locale.
	Considered int
	// Created counts placeholders created by this pass.
	Created int
	// Skipped counts entries that already had a placeholder.
	Skipped int
}

// RunReport summarises a full synchronisation run.
type RunReport struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Entries   int
	Orphans   int
	Trees     []TreeResult
}

// Created returns the number of placeholders created across every locale.
func (r RunReport) Created() int {
	total := 0
	for _, tree := range r.Trees {
		total += tree.Created
	}
	return total
}

// SynchronizerOption configures the synchroniser.
type SynchronizerOption func(*Synchronizer)

// WithSynchronizerLogger injects the synchroniser logger.
func WithSynchronizerLogger(logger interfaces.Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSynchronizerClock overrides the clock used for run reports.
func WithSynchronizerClock(clock func() time.Time) SynchronizerOption {
	return func(s *Synchronizer) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Synchronizer brings every locale tree to structural parity by creating
// placeholders for pages a locale has not translated.
type Synchronizer struct {
	pages    PageStore
	locales  LocaleStore
	copier   Copier
	resolver FallbackResolver
	logger   interfaces.Logger
	now      func() time.Time
}

// NewSynchronizer wires the synchroniser collaborators.
func NewSynchronizer(pageStore PageStore, localeStore LocaleStore, copier Copier, resolver FallbackResolver, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		pages:    pageStore,
		locales:  localeStore,
		copier:   copier,
		resolver: resolver,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SynchronizeTree creates a placeholder in locale for every entry of index
// the locale has not translated. Entries are processed in index order, so a
// sorted index creates parents before children. Copy failures abort the pass.
func (s *Synchronizer) SynchronizeTree(ctx context.Context, index *Index, locale *locales.Locale) (TreeResult, error) {
	if index == nil {
		return TreeResult{}, ErrIndexRequired
	}
	if locale == nil {
		return TreeResult{}, ErrLocaleRequired
	}
	result := TreeResult{LocaleID: locale.ID, LocaleCode: locale.Code}

	for _, entry := range index.NotTranslatedInto(locale.ID).Entries() {
		result.Considered++
		if entry.IsAliasedIn(locale.ID) {
			result.Skipped++
			continue
		}
		created, err := s.synchronizeEntry(ctx, entry, locale)
		if err != nil {
			return result, &EntryError{TranslationKey: entry.TranslationKey, LocaleCode: locale.Code, Err: err}
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func (s *Synchronizer) synchronizeEntry(ctx context.Context, entry Entry, locale *locales.Locale) (bool, error) {
	if len(entry.Locales) == 0 {
		return false, ErrNoSourceLocale
	}

	// The index is a snapshot; a placeholder may have been created since.
	if _, err := s.pages.GetTranslation(ctx, entry.TranslationKey, locale.ID); err == nil {
		return false, nil
	} else if !pages.IsNotFound(err) {
		return false, err
	}

	sourceLocale, err := s.sourceLocale(ctx, entry, locale)
	if err != nil {
		return false, err
	}
	source, err := s.pages.GetTranslation(ctx, entry.TranslationKey, sourceLocale)
	if err != nil {
		return false, err
	}

	placeholder, err := s.copier.CopyForTranslation(ctx, source, locale.ID, pages.CopyOptions{
		CopyParents: true,
		Alias:       true,
	})
	if err != nil {
		return false, err
	}

	logging.WithSyncContext(s.logger.WithContext(ctx), locale.Code, entry.TranslationKey.String(), "create_placeholder").
		Info("synctree.sync.placeholder_created",
			"page_id", placeholder.ID,
			"source_page_id", source.ID,
			"source_locale_id", sourceLocale,
		)
	return true, nil
}

// sourceLocale picks the best fallback among the real locales, or the lowest
// locale id when the fallback chain matches none of them.
func (s *Synchronizer) sourceLocale(ctx context.Context, entry Entry, locale *locales.Locale) (uuid.UUID, error) {
	if s.resolver != nil {
		best, err := s.resolver.BestFallbackLocale(ctx, locale, entry.Locales)
		if err != nil {
			return uuid.Nil, err
		}
		if best != nil {
			return best.ID, nil
		}
	}
	return sortIDs(entry.Locales)[0], nil
}

// SynchronizeAll builds and sorts the index, then synchronises every known
// locale against it. Orphans are reported, never fatal.
func (s *Synchronizer) SynchronizeAll(ctx context.Context) (RunReport, error) {
	return s.run(ctx, nil)
}

// SynchronizeLocales is SynchronizeAll restricted to the locales with the
// given codes (case-insensitive). Unknown codes fail before any write.
func (s *Synchronizer) SynchronizeLocales(ctx context.Context, codes []string) (RunReport, error) {
	if len(codes) == 0 {
		return s.SynchronizeAll(ctx)
	}
	return s.run(ctx, codes)
}

func (s *Synchronizer) run(ctx context.Context, codes []string) (RunReport, error) {
	report := RunReport{RunID: uuid.New(), StartedAt: s.now().UTC()}
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": report.RunID.String()})
	logger := s.logger.WithContext(ctx)

	targets, err := s.targetLocales(ctx, codes)
	if err != nil {
		return report, err
	}

	built, err := BuildFromStorage(ctx, s.pages)
	if err != nil {
		return report, err
	}
	index := built.SortByTreePosition()
	report.Entries = built.Len()
	report.Orphans = len(index.Orphans())
	if report.Orphans > 0 {
		orphanKeys := make([]string, 0, report.Orphans)
		for _, orphan := range index.Orphans() {
			orphanKeys = append(orphanKeys, orphan.TranslationKey.String())
		}
		logger.Warn("synctree.index.orphans", "count", report.Orphans, "translation_keys", orphanKeys)
	}

	for _, locale := range targets {
		tree, err := s.SynchronizeTree(ctx, index, locale)
		report.Trees = append(report.Trees, tree)
		if err != nil {
			report.Duration = s.now().Sub(report.StartedAt)
			return report, err
		}
		logger.Debug("synctree.sync.locale_done",
			"locale", locale.Code,
			"considered", tree.Considered,
			"created", tree.Created,
			"skipped", tree.Skipped,
		)
	}

	report.Duration = s.now().Sub(report.StartedAt)
	logger.Info("synctree.sync.completed",
		"entries", report.Entries,
		"orphans", report.Orphans,
		"created", report.Created(),
		"locales", len(targets),
	)
	return report, nil
}

func (s *Synchronizer) targetLocales(ctx context.Context, codes []string) ([]*locales.Locale, error) {
	all, err := s.locales.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return all, nil
	}
	byCode := make(map[string]*locales.Locale, len(all))
	for _, locale := range all {
		byCode[strings.ToLower(locale.Code)] = locale
	}
	out := make([]*locales.Locale, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		key := strings.ToLower(strings.TrimSpace(code))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		locale, ok := byCode[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
		}
		out = append(out, locale)
	}
	return out, nil
}

package fallback

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-treesync/internal/languageconfig"
	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/logging"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoised chains.
const DefaultCacheSize = 1000

// ErrLocaleRequired indicates a locale-based lookup was called without a locale.
var ErrLocaleRequired = errors.New("fallback: locale is required")

// LocaleLookup resolves language codes to locale records.
type LocaleLookup interface {
	ListByCodes(ctx context.Context, codes []string) ([]*locales.Locale, error)
}

// Option configures the resolver.
type Option func(*Resolver)

// WithCacheSize overrides DefaultCacheSize. Non-positive values are ignored.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

// WithLogger injects the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLanguages seeds the supported languages and the global default.
func WithLanguages(supported []string, defaultCode string) Option {
	return func(r *Resolver) {
		r.supported = normalizeSupported(supported)
		r.defaultCode = strings.TrimSpace(defaultCode)
	}
}

// Resolver derives ordered fallback chains for language codes and maps them
// onto locale records. Chains are memoised until the language configuration
// changes.
type Resolver struct {
	mu          sync.RWMutex
	refreshMu   sync.Mutex
	table       interfaces.LanguageTable
	locales     LocaleLookup
	supported   []string
	defaultCode string

	cacheSize int
	cache     *lru.Cache[string, []string]
	logger    interfaces.Logger
}

// New constructs a resolver over the language table and locale store.
func New(table interfaces.LanguageTable, lookup LocaleLookup, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		table:     table,
		locales:   lookup,
		cacheSize: DefaultCacheSize,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	cache, err := lru.New[string, []string](r.cacheSize)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

// Chain returns the ordered fallback codes for code: explicit table
// fallbacks, the generic language, other supported regional variants of it in
// configured order, then the supported variant of the global default. The
// input code and duplicates are removed.
func (r *Resolver) Chain(code string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cached, ok := r.cache.Get(code); ok {
		return append([]string(nil), cached...)
	}
	chain := r.buildChain(code)
	r.cache.Add(code, chain)
	return append([]string(nil), chain...)
}

// FallbackLocales resolves the chain of locale into locale records in chain
// order. Codes without a locale record are skipped.
func (r *Resolver) FallbackLocales(ctx context.Context, locale *locales.Locale) ([]*locales.Locale, error) {
	if locale == nil {
		return nil, ErrLocaleRequired
	}
	chain := r.Chain(locale.Code)
	if len(chain) == 0 || r.locales == nil {
		return []*locales.Locale{}, nil
	}
	found, err := r.locales.ListByCodes(ctx, chain)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*locales.Locale, len(found))
	for _, loc := range found {
		if loc == nil {
			continue
		}
		byCode[strings.ToLower(loc.Code)] = loc
	}
	out := make([]*locales.Locale, 0, len(found))
	for _, code := range chain {
		if loc, ok := byCode[strings.ToLower(code)]; ok {
			out = append(out, loc)
			delete(byCode, strings.ToLower(code))
		}
	}
	return out, nil
}

// BestFallbackLocale returns the first fallback of locale whose id is among
// candidates, or nil when none qualifies.
func (r *Resolver) BestFallbackLocale(ctx context.Context, locale *locales.Locale, candidates []uuid.UUID) (*locales.Locale, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	chain, err := r.FallbackLocales(ctx, locale)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uuid.UUID]struct{}, len(candidates))
	for _, id := range candidates {
		allowed[id] = struct{}{}
	}
	for _, loc := range chain {
		if _, ok := allowed[loc.ID]; ok {
			return loc, nil
		}
	}
	return nil, nil
}

// BestFallbackLocaleOf is BestFallbackLocale for candidate locale records.
func (r *Resolver) BestFallbackLocaleOf(ctx context.Context, locale *locales.Locale, candidates []*locales.Locale) (*locales.Locale, error) {
	return r.BestFallbackLocale(ctx, locale, locales.IDs(candidates...))
}

// Configure replaces the language configuration and clears memoised chains.
func (r *Resolver) Configure(supported []string, defaultCode string) {
	r.mu.Lock()
	r.supported = normalizeSupported(supported)
	r.defaultCode = strings.TrimSpace(defaultCode)
	r.cache.Purge()
	r.mu.Unlock()

	r.logger.Debug("fallback.configured",
		"supported_languages", supported,
		"default_language", defaultCode,
	)
}

// Reset clears memoised chains without changing the configuration.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache.Purge()
	r.mu.Unlock()
	r.logger.Debug("fallback.cache_reset")
}

// Languages reports the current configuration.
func (r *Resolver) Languages() (supported []string, defaultCode string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.supported...), r.defaultCode
}

// Refresh configures the resolver from the settings load returns. Refreshes
// are serialised, so the last one to finish applied the newest stored value.
func (r *Resolver) Refresh(ctx context.Context, load languageconfig.Loader) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	settings, err := load(ctx)
	if err != nil {
		return err
	}
	r.Configure(settings.SupportedLanguages, settings.DefaultLanguage)
	return nil
}

// Watch refreshes the resolver on every settings event until events is closed
// or ctx ends. A failed load keeps the previous configuration.
func (r *Resolver) Watch(ctx context.Context, events <-chan languageconfig.ChangeEvent, load languageconfig.Loader) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := r.Refresh(ctx, load); err != nil {
				r.logger.Warn("fallback.refresh_failed", "event", string(evt.Type), "error", err)
			}
		}
	}
}

func (r *Resolver) buildChain(code string) []string {
	candidates := make([]string, 0, len(r.supported)+4)
	if r.table != nil {
		candidates = append(candidates, r.table.Fallbacks(code)...)
	}

	generic := genericCode(code)
	candidates = append(candidates, generic)

	prefix := strings.ToLower(generic) + "-"
	for _, supported := range r.supported {
		if strings.HasPrefix(strings.ToLower(supported), prefix) {
			candidates = append(candidates, supported)
		}
	}

	if variant := r.supportedVariant(r.defaultCode); variant != "" {
		candidates = append(candidates, variant)
	}

	seen := map[string]struct{}{strings.ToLower(code): {}}
	chain := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		key := strings.ToLower(strings.TrimSpace(candidate))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		chain = append(chain, candidate)
	}
	return chain
}

// supportedVariant maps code onto the supported language that serves it: the
// code itself, one of its explicit fallbacks, its generic form, then any
// supported regional variant of the generic form. Without a match the code is
// returned unchanged.
func (r *Resolver) supportedVariant(code string) string {
	if code == "" {
		return ""
	}
	if len(r.supported) == 0 {
		return code
	}
	possible := []string{code}
	if r.table != nil {
		possible = append(possible, r.table.Fallbacks(code)...)
	}
	generic := genericCode(code)
	possible = append(possible, generic)
	for _, candidate := range possible {
		for _, supported := range r.supported {
			if strings.EqualFold(candidate, supported) {
				return supported
			}
		}
	}
	prefix := strings.ToLower(generic) + "-"
	for _, supported := range r.supported {
		if strings.HasPrefix(strings.ToLower(supported), prefix) {
			return supported
		}
	}
	return code
}

func genericCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if idx := strings.Index(trimmed, "-"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func normalizeSupported(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		key := strings.ToLower(code)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, code)
	}
	return out
}

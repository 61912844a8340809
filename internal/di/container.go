package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	synctreecmd "github.com/goliatone/go-treesync/internal/commands/synctree"
	"github.com/goliatone/go-treesync/internal/fallback"
	"github.com/goliatone/go-treesync/internal/languageconfig"
	"github.com/goliatone/go-treesync/internal/languages"
	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/logging"
	"github.com/goliatone/go-treesync/internal/logging/gologger"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/goliatone/go-treesync/internal/runtimeconfig"
	"github.com/goliatone/go-treesync/internal/synctree"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/goliatone/go-treesync/pkg/storage"
	"github.com/uptrace/bun"
)

// ErrBunDBRequired indicates the bun storage provider was selected without a
// database handle or DSN.
var ErrBunDBRequired = errors.New("di: bun storage provider requires a database or dsn")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	localeRepo   locales.Repository
	pageRepo     pages.Repository
	settingsRepo languageconfig.Repository
	settings     *liveSettings

	table        *languages.Table
	state        *languageconfig.State
	pageSvc      pages.Service
	resolver     *fallback.Resolver
	synchronizer *synctree.Synchronizer
	hook         *synctree.Hook
	syncHandler  *synctreecmd.SyncLocaleTreesHandler

	reportSink func(synctree.RunReport)

	stopWatch context.CancelFunc
	closeOnce sync.Once
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB selects bun repositories backed by the provided database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider used for module loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLocaleRepository overrides the locale repository.
func WithLocaleRepository(repo locales.Repository) Option {
	return func(c *Container) {
		c.localeRepo = repo
	}
}

// WithPageRepository overrides the page repository.
func WithPageRepository(repo pages.Repository) Option {
	return func(c *Container) {
		c.pageRepo = repo
	}
}

// WithSettingsRepository overrides the language settings repository.
func WithSettingsRepository(repo languageconfig.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithLanguageTable overrides the language table otherwise loaded from
// Config.Languages.File or the embedded defaults.
func WithLanguageTable(table *languages.Table) Option {
	return func(c *Container) {
		c.table = table
	}
}

// WithReportSink receives the report of every run triggered through the sync command.
func WithReportSink(sink func(synctree.RunReport)) Option {
	return func(c *Container) {
		c.reportSink = sink
	}
}

// NewContainer validates cfg, opens storage, seeds locales and language
// settings, and wires the synchronisation services.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()

	if err := c.seedLocales(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureLanguages(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.watchSettings(); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Info("treesync.container.ready",
		"storage", c.Config.StorageProvider(),
		"locales", strings.Join(c.Config.SupportedLocales(), ","),
		"placeholders", c.state.PlaceholdersEnabled(),
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "treesync")
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil && c.Config.StorageProvider() != runtimeconfig.StorageBun {
		return nil
	}
	if c.bunDB == nil {
		if strings.TrimSpace(c.Config.Storage.DSN) == "" {
			return ErrBunDBRequired
		}
		db, err := storage.Open(ctx, storage.Config{
			Driver: c.Config.Storage.Driver,
			DSN:    c.Config.Storage.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if err := storage.CreateSchema(ctx, c.bunDB); err != nil {
		c.Close()
		return err
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("treesync.container.cache_disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.localeRepo == nil {
			c.localeRepo = locales.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.pageRepo == nil {
			c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.settingsRepo == nil {
			c.settingsRepo = languageconfig.NewBunRepository(c.bunDB)
		}
		return
	}

	if c.localeRepo == nil {
		c.localeRepo = locales.NewMemoryRepository()
	}
	if c.pageRepo == nil {
		c.pageRepo = pages.NewMemoryRepository()
	}
	if c.settingsRepo == nil {
		c.settingsRepo = languageconfig.NewMemoryRepository()
	}
}

func (c *Container) seedLocales(ctx context.Context) error {
	logger := logging.LocalesLogger(c.loggerProvider)
	seen := map[string]struct{}{}
	for _, code := range c.Config.SupportedLocales() {
		lower := strings.ToLower(code)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}

		if _, err := c.localeRepo.GetByCode(ctx, code); err == nil {
			continue
		} else if !locales.IsNotFound(err) {
			return fmt.Errorf("di: seed locale %q: %w", code, err)
		}

		record := locales.New(code, code)
		record.IsDefault = strings.EqualFold(code, c.Config.DefaultLocale)
		if _, err := c.localeRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("di: seed locale %q: %w", code, err)
		}
		logger.Info("locales.seeded", "code", record.Code, "default", record.IsDefault)
	}
	return nil
}

// configureLanguages loads the language table and the persisted settings.
// Settings already stored take precedence over the configuration seed.
func (c *Container) configureLanguages(ctx context.Context) error {
	if c.table == nil {
		var (
			table *languages.Table
			err   error
		)
		if path := strings.TrimSpace(c.Config.Languages.File); path != "" {
			table, err = languages.NewLoader(path).Load(ctx)
		} else {
			table, err = languages.Default()
		}
		if err != nil {
			return err
		}
		c.table = table
	}

	settings, err := c.settingsRepo.Get(ctx)
	switch {
	case err == nil:
	case errors.Is(err, languageconfig.ErrSettingsNotFound):
		settings, err = c.settingsRepo.Upsert(ctx, c.seedSettings())
		if err != nil {
			return fmt.Errorf("di: seed language settings: %w", err)
		}
	default:
		return fmt.Errorf("di: load language settings: %w", err)
	}
	c.state = languageconfig.NewState(settings)
	return nil
}

func (c *Container) seedSettings() languageconfig.Settings {
	return languageconfig.Settings{
		DefaultLanguage:     c.Config.DefaultLocale,
		SupportedLanguages:  c.Config.SupportedLocales(),
		PlaceholdersEnabled: c.Config.Features.Placeholders,
	}.Normalized()
}

func (c *Container) configureServices() error {
	provider := c.loggerProvider

	c.pageSvc = pages.NewService(c.pageRepo, pages.WithLogger(logging.PagesLogger(provider)))

	settings := c.state.Settings()
	resolver, err := fallback.New(c.table, c.localeRepo,
		fallback.WithCacheSize(c.Config.Cache.FallbackSize),
		fallback.WithLanguages(settings.SupportedLanguages, settings.DefaultLanguage),
		fallback.WithLogger(logging.FallbackLogger(provider)),
	)
	if err != nil {
		return err
	}
	c.resolver = resolver

	syncLogger := logging.SynctreeLogger(provider)
	c.synchronizer = synctree.NewSynchronizer(c.pageRepo, c.localeRepo, c.pageSvc, c.resolver,
		synctree.WithSynchronizerLogger(syncLogger),
	)
	c.hook = synctree.NewHook(c.pageRepo, c.localeRepo, c.pageSvc, c.resolver,
		synctree.WithHookLogger(syncLogger),
		synctree.WithFeatureGates(synctree.FeatureGates{
			PlaceholdersEnabled: c.state.PlaceholdersEnabled,
		}),
	)
	c.pageSvc.Observe(c.hook)

	handlerOpts := []synctreecmd.HandlerOption{}
	if c.reportSink != nil {
		handlerOpts = append(handlerOpts, synctreecmd.WithReportSink(c.reportSink))
	}
	c.syncHandler = synctreecmd.NewSyncLocaleTreesHandler(c.synchronizer, c.commandLogger(), handlerOpts...)
	return nil
}

// watchSettings keeps the resolver and the feature gate in step with the
// persisted language settings.
func (c *Container) watchSettings() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopWatch = cancel

	load := languageconfig.StoredOr(c.settingsRepo, c.seedSettings())
	resolverEvents, err := c.settingsRepo.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("di: subscribe language settings: %w", err)
	}
	stateEvents, err := c.settingsRepo.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("di: subscribe language settings: %w", err)
	}

	go c.resolver.Watch(ctx, resolverEvents, load)
	go c.state.Follow(ctx, stateEvents, load)
	c.settings = &liveSettings{Repository: c.settingsRepo, container: c, load: load}
	return nil
}

func (c *Container) commandLogger() interfaces.Logger {
	return logging.CommandLogger(c.loggerProvider, "synctree")
}

// Close stops the settings watchers and closes a database opened by the container.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.stopWatch != nil {
			c.stopWatch()
		}
		if c.ownsDB && c.bunDB != nil {
			err = c.bunDB.Close()
		}
	})
	return err
}

// BunDB exposes the database handle when the bun provider is active.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// LoggerProvider exposes the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// LocaleRepository exposes the configured locale repository.
func (c *Container) LocaleRepository() locales.Repository {
	return c.localeRepo
}

// PageRepository exposes the configured page repository.
func (c *Container) PageRepository() pages.Repository {
	return c.pageRepo
}

// SettingsRepository exposes the language settings repository. Writes made
// through it have reconfigured the resolver and the feature gate by the time
// they return.
func (c *Container) SettingsRepository() languageconfig.Repository {
	if c.settings == nil {
		return c.settingsRepo
	}
	return c.settings
}

// LanguageSettings exposes the live language settings.
func (c *Container) LanguageSettings() *languageconfig.State {
	return c.state
}

// LanguageTable exposes the loaded language table.
func (c *Container) LanguageTable() *languages.Table {
	return c.table
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// FallbackResolver returns the configured fallback resolver.
func (c *Container) FallbackResolver() *fallback.Resolver {
	return c.resolver
}

// Synchronizer returns the tree synchroniser.
func (c *Container) Synchronizer() *synctree.Synchronizer {
	return c.synchronizer
}

// Hook returns the reactive save hook registered on the page service.
func (c *Container) Hook() *synctree.Hook {
	return c.hook
}

// SyncCommandHandler returns the command handler for SyncLocaleTreesCommand.
func (c *Container) SyncCommandHandler() *synctreecmd.SyncLocaleTreesHandler {
	return c.syncHandler
}

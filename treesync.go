package treesync

import (
	"context"

	synctreecmd "github.com/goliatone/go-treesync/internal/commands/synctree"
	"github.com/goliatone/go-treesync/internal/di"
	"github.com/goliatone/go-treesync/internal/fallback"
	"github.com/goliatone/go-treesync/internal/languageconfig"
	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/goliatone/go-treesync/internal/synctree"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/uptrace/bun"
)

// PageService exports the page service contract.
type PageService = pages.Service

// PageRepository exports the page storage contract.
type PageRepository = pages.Repository

// LocaleRepository exports the locale storage contract.
type LocaleRepository = locales.Repository

// SettingsRepository exports the language settings storage contract.
type SettingsRepository = languageconfig.Repository

// LanguageSettings exports the persisted language settings.
type LanguageSettings = languageconfig.Settings

// Resolver exports the fallback resolver.
type Resolver = *fallback.Resolver

// Synchronizer exports the locale tree synchroniser.
type Synchronizer = *synctree.Synchronizer

// Hook exports the reactive save hook.
type Hook = *synctree.Hook

// RunReport exports the summary of a synchronisation run.
type RunReport = synctree.RunReport

// SyncLocaleTreesCommand exports the command that triggers a synchronisation run.
type SyncLocaleTreesCommand = synctreecmd.SyncLocaleTreesCommand

// SyncCommandHandler exports the handler for SyncLocaleTreesCommand.
type SyncCommandHandler = *synctreecmd.SyncLocaleTreesHandler

// Option customises the underlying container.
type Option = di.Option

// WithBunDB backs pages, locales and settings with the provided database.
func WithBunDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

// WithLoggerProvider overrides the logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithReportSink receives the report of every command-triggered run.
func WithReportSink(sink func(RunReport)) Option {
	return di.WithReportSink(sink)
}

// Module represents the top level treesync runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases watchers and any database the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}

// SyncAll creates every missing placeholder in every locale tree.
func (m *Module) SyncAll(ctx context.Context) (RunReport, error) {
	return m.container.Synchronizer().SynchronizeAll(ctx)
}

// SyncLocales creates missing placeholders in the listed locale trees only.
func (m *Module) SyncLocales(ctx context.Context, codes ...string) (RunReport, error) {
	return m.container.Synchronizer().SynchronizeLocales(ctx, codes)
}

// Pages returns the page service. Saves through it trigger the reactive hook.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// PageRepository returns the configured page repository.
func (m *Module) PageRepository() PageRepository {
	return m.container.PageRepository()
}

// Locales returns the locale repository.
func (m *Module) Locales() LocaleRepository {
	return m.container.LocaleRepository()
}

// Settings returns the language settings repository. An Upsert or Delete made
// through it has reconfigured the resolver and the placeholder feature gate
// when it returns, so a following SyncAll uses the new chains.
func (m *Module) Settings() SettingsRepository {
	return m.container.SettingsRepository()
}

// PlaceholdersEnabled reports the live placeholder feature gate.
func (m *Module) PlaceholdersEnabled() bool {
	return m.container.LanguageSettings().PlaceholdersEnabled()
}

// Resolver returns the fallback resolver.
func (m *Module) Resolver() Resolver {
	return m.container.FallbackResolver()
}

// Synchronizer returns the locale tree synchroniser.
func (m *Module) Synchronizer() Synchronizer {
	return m.container.Synchronizer()
}

// Hook returns the reactive save hook.
func (m *Module) Hook() Hook {
	return m.container.Hook()
}

// SyncCommand returns the command handler, ready to be subscribed on a go-command dispatcher.
func (m *Module) SyncCommand() SyncCommandHandler {
	return m.container.SyncCommandHandler()
}

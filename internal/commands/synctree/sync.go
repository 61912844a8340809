package synctreecmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-treesync/internal/commands"
	"github.com/goliatone/go-treesync/internal/synctree"
	"github.com/goliatone/go-treesync/pkg/interfaces"
)

const syncLocaleTreesMessageType = "treesync.synctree.sync_locale_trees"

// SyncLocaleTreesCommand requests a full placeholder synchronisation run.
// Locales narrows the run to the given codes; empty means every locale.
type SyncLocaleTreesCommand struct {
	Locales []string `json:"locales,omitempty"`
}

// Type implements command.Message.
func (SyncLocaleTreesCommand) Type() string { return syncLocaleTreesMessageType }

// Validate rejects blank locale codes.
func (m SyncLocaleTreesCommand) Validate() error {
	errs := validation.Errors{}
	for _, code := range m.Locales {
		if strings.TrimSpace(code) == "" {
			errs["locales"] = validation.NewError("treesync.synctree.locale_blank", "locales cannot contain blank codes")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Runner executes synchronisation runs.
type Runner interface {
	SynchronizeAll(ctx context.Context) (synctree.RunReport, error)
	SynchronizeLocales(ctx context.Context, codes []string) (synctree.RunReport, error)
}

// HandlerOption configures SyncLocaleTreesHandler.
type HandlerOption func(*SyncLocaleTreesHandler)

// WithReportSink receives the report of every successful run.
func WithReportSink(sink func(synctree.RunReport)) HandlerOption {
	return func(h *SyncLocaleTreesHandler) {
		h.sink = sink
	}
}

// WithCommandOptions forwards options to the shared command handler.
func WithCommandOptions(opts ...commands.HandlerOption[SyncLocaleTreesCommand]) HandlerOption {
	return func(h *SyncLocaleTreesHandler) {
		h.commandOpts = append(h.commandOpts, opts...)
	}
}

// SyncLocaleTreesHandler runs synchronisation through the shared command handler foundation.
type SyncLocaleTreesHandler struct {
	inner       *commands.Handler[SyncLocaleTreesCommand]
	sink        func(synctree.RunReport)
	commandOpts []commands.HandlerOption[SyncLocaleTreesCommand]
}

// NewSyncLocaleTreesHandler constructs a handler wired to the synchroniser.
func NewSyncLocaleTreesHandler(runner Runner, logger interfaces.Logger, opts ...HandlerOption) *SyncLocaleTreesHandler {
	h := &SyncLocaleTreesHandler{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	exec := func(ctx context.Context, msg SyncLocaleTreesCommand) error {
		var (
			report synctree.RunReport
			err    error
		)
		if len(msg.Locales) == 0 {
			report, err = runner.SynchronizeAll(ctx)
		} else {
			report, err = runner.SynchronizeLocales(ctx, msg.Locales)
		}
		if err != nil {
			return err
		}
		if h.sink != nil {
			h.sink(report)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncLocaleTreesCommand]{
		commands.WithLogger[SyncLocaleTreesCommand](logger),
		commands.WithOperation[SyncLocaleTreesCommand]("synctree.sync_locale_trees"),
		// A full run touches every page of every locale.
		commands.WithTimeout[SyncLocaleTreesCommand](0),
		commands.WithMessageFields(func(msg SyncLocaleTreesCommand) map[string]any {
			if len(msg.Locales) == 0 {
				return map[string]any{"scope": "all"}
			}
			return map[string]any{"scope": "locales", "locales": strings.Join(msg.Locales, ",")}
		}),
	}
	handlerOpts = append(handlerOpts, h.commandOpts...)
	h.inner = commands.NewHandler(exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[SyncLocaleTreesCommand].Execute.
func (h *SyncLocaleTreesHandler) Execute(ctx context.Context, msg SyncLocaleTreesCommand) error {
	return h.inner.Execute(ctx, msg)
}

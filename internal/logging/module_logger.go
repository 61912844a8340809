package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-treesync/pkg/interfaces"
)

const (
	rootModule     = "treesync"
	synctreeModule = "treesync.synctree"
	fallbackModule = "treesync.fallback"
	pagesModule    = "treesync.pages"
	localesModule  = "treesync.locales"
	commandsModule = "treesync.commands"
)

const (
	fieldLocale         = "locale"
	fieldTranslationKey = "translation_key"
	fieldSyncAction     = "sync_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SynctreeLogger returns the logger namespace reserved for tree synchronisation.
func SynctreeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, synctreeModule)
}

// FallbackLogger returns the logger namespace reserved for fallback resolution.
func FallbackLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fallbackModule)
}

// PagesLogger returns the logger namespace reserved for page storage.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// LocalesLogger returns the logger namespace reserved for locale storage.
func LocalesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localesModule)
}

// CommandLogger returns the logger for the command handlers of module,
// tagged so command entries can be told apart from service entries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return WithFields(ModuleLogger(provider, commandsModule+"."+name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

// WithSyncContext enriches the provided logger with the locale, translation key
// and sync action being processed. Empty values are ignored.
func WithSyncContext(logger interfaces.Logger, locale, translationKey, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(translationKey); trimmed != "" {
		fields[fieldTranslationKey] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

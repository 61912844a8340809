package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrDefaultLocaleRequired     = errors.New("treesync config: default locale is required")
	ErrDefaultLocaleNotSupported = errors.New("treesync config: default locale must be one of the configured locales")
	ErrLocaleCodeInvalid         = errors.New("treesync config: locale code is invalid")
	ErrStorageProviderUnknown    = errors.New("treesync config: storage provider is invalid")
	ErrFallbackCacheSizeInvalid  = errors.New("treesync config: fallback cache size must be zero or positive")
	ErrCacheTTLInvalid           = errors.New("treesync config: cache ttl must be zero or positive")
	ErrLoggingProviderRequired   = errors.New("treesync config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown    = errors.New("treesync config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("treesync config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("treesync config: logging format is invalid")
)

// Storage providers understood by the container.
const (
	StorageMemory = "memory"
	StorageBun    = "bun"
)

var localeCodePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// Config aggregates feature flags and adapter bindings for the sync module.
type Config struct {
	DefaultLocale string
	I18N          I18NConfig
	Languages     LanguagesConfig
	Storage       StorageConfig
	Cache         CacheConfig
	Features      Features
	Logging       LoggingConfig
}

// I18NConfig lists the locales served by the site. The first run seeds one
// locale record per entry.
type I18NConfig struct {
	Locales []string
}

// LanguagesConfig points at an optional language table overriding the
// embedded defaults.
type LanguagesConfig struct {
	File string
}

// StorageConfig selects the repositories backing pages, locales and settings.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled      bool
	DefaultTTL   time.Duration
	FallbackSize int
}

// Features toggles module functionality.
type Features struct {
	Placeholders bool
	Logger       bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns an in-memory configuration serving English only.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		I18N: I18NConfig{
			Locales: []string{"en"},
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:      true,
			DefaultTTL:   time.Minute,
			FallbackSize: 1000,
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "",
		},
	}
}

// SupportedLocales returns I18N.Locales, falling back to the default locale
// when none are listed.
func (cfg Config) SupportedLocales() []string {
	out := make([]string, 0, len(cfg.I18N.Locales)+1)
	for _, code := range cfg.I18N.Locales {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		if def := strings.TrimSpace(cfg.DefaultLocale); def != "" {
			out = append(out, def)
		}
	}
	return out
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	defaultLocale := strings.TrimSpace(cfg.DefaultLocale)
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}

	supported := cfg.SupportedLocales()
	for _, code := range supported {
		if err := validation.Validate(code, validation.Match(localeCodePattern)); err != nil {
			return fmt.Errorf("%w: %s", ErrLocaleCodeInvalid, code)
		}
	}
	if !containsFold(supported, defaultLocale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotSupported, defaultLocale)
	}

	switch normalizeProvider(cfg.Storage.Provider) {
	case "", StorageMemory, StorageBun:
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.FallbackSize < 0 {
		return ErrFallbackCacheSizeInvalid
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageProvider returns the normalised storage provider, defaulting to memory.
func (cfg Config) StorageProvider() string {
	if provider := normalizeProvider(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return StorageMemory
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

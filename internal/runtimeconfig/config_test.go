package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-treesync/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "missing default locale",
			mutate: func(cfg *runtimeconfig.Config) { cfg.DefaultLocale = " " },
			want:   runtimeconfig.ErrDefaultLocaleRequired,
		},
		{
			name: "default locale outside configured locales",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.DefaultLocale = "de"
				cfg.I18N.Locales = []string{"en", "fr"}
			},
			want: runtimeconfig.ErrDefaultLocaleNotSupported,
		},
		{
			name:   "malformed locale code",
			mutate: func(cfg *runtimeconfig.Config) { cfg.I18N.Locales = []string{"en", "fr_CA"} },
			want:   runtimeconfig.ErrLocaleCodeInvalid,
		},
		{
			name:   "unknown storage provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Storage.Provider = "redis" },
			want:   runtimeconfig.ErrStorageProviderUnknown,
		},
		{
			name:   "negative fallback cache",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Cache.FallbackSize = -1 },
			want:   runtimeconfig.ErrFallbackCacheSizeInvalid,
		},
		{
			name: "logging provider required",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Provider = ""
			},
			want: runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name: "unknown logging provider",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Provider = "syslog"
			},
			want: runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name: "invalid logging level",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Level = "loud"
			},
			want: runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid logging format",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateAcceptsRegionalLocales(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultLocale = "EN"
	cfg.I18N.Locales = []string{"en", "fr", "fr-CA", "zh-hans"}
	cfg.Storage.Provider = "BUN"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if got := cfg.StorageProvider(); got != runtimeconfig.StorageBun {
		t.Fatalf("expected bun provider, got %q", got)
	}
}

func TestSupportedLocalesFallsBackToDefault(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultLocale = "fr"
	cfg.I18N.Locales = []string{" ", ""}

	got := cfg.SupportedLocales()
	if len(got) != 1 || got[0] != "fr" {
		t.Fatalf("expected [fr], got %v", got)
	}
}

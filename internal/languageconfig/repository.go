package languageconfig

import (
	"context"
	"errors"
	"strings"
)

// ErrSettingsNotFound indicates that language settings have not been configured yet.
var ErrSettingsNotFound = errors.New("languageconfig: settings not found")

// Settings capture the site language configuration consumed by the fallback
// resolver and the placeholder hook.
type Settings struct {
	DefaultLanguage     string
	SupportedLanguages  []string
	PlaceholdersEnabled bool
}

// Normalized trims codes and drops empty or repeated supported entries while
// keeping the configured order.
func (s Settings) Normalized() Settings {
	out := Settings{
		DefaultLanguage:     strings.TrimSpace(s.DefaultLanguage),
		PlaceholdersEnabled: s.PlaceholdersEnabled,
	}
	seen := make(map[string]struct{}, len(s.SupportedLanguages))
	for _, code := range s.SupportedLanguages {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out.SupportedLanguages = append(out.SupportedLanguages, code)
	}
	return out
}

// Equal reports whether both settings describe the same configuration.
func (s Settings) Equal(other Settings) bool {
	if s.DefaultLanguage != other.DefaultLanguage || s.PlaceholdersEnabled != other.PlaceholdersEnabled {
		return false
	}
	if len(s.SupportedLanguages) != len(other.SupportedLanguages) {
		return false
	}
	for i := range s.SupportedLanguages {
		if s.SupportedLanguages[i] != other.SupportedLanguages[i] {
			return false
		}
	}
	return true
}

func (s Settings) clone() Settings {
	copied := s
	if s.SupportedLanguages != nil {
		copied.SupportedLanguages = append([]string(nil), s.SupportedLanguages...)
	}
	return copied
}

// Repository persists language settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates settings change events.
type ChangeType string

const (
	// ChangeCreated indicates settings were first persisted.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates settings were updated.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates settings were cleared.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports settings mutations to interested subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Settings Settings
}

func newChangeEvent(changeType ChangeType, settings Settings) ChangeEvent {
	return ChangeEvent{
		Type:     changeType,
		Settings: settings.clone(),
	}
}

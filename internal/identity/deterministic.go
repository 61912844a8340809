package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LocaleUUID returns the stable identifier for a locale code. Codes are
// compared case-insensitively so "es-MX" and "es-mx" share an id.
func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-treesync:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}

// TranslationKey returns a stable translation key for a logical page path,
// letting fixtures and imports address the same node across runs.
func TranslationKey(scope string) uuid.UUID {
	return UUID("go-treesync:translation_key:" + strings.TrimSpace(scope))
}

package synctree

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNoSourceLocale indicates an indexed entry has no real row in any locale.
	// Indexed entries are built from real rows, so this signals corrupted data.
	ErrNoSourceLocale = errors.New("synctree: entry has no real translation to copy from")
	// ErrLocaleRequired indicates a synchronisation was requested without a target locale.
	ErrLocaleRequired = errors.New("synctree: target locale is required")
	// ErrUnknownLocale indicates a requested locale code has no locale record.
	ErrUnknownLocale = errors.New("synctree: unknown locale")
	// ErrIndexRequired indicates a synchronisation was requested without an index.
	ErrIndexRequired = errors.New("synctree: index is required")
)

// EntryError ties a failure to the translation key and locale being processed.
type EntryError struct {
	TranslationKey uuid.UUID
	LocaleCode     string
	Err            error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("synctree: %s into %q: %v", e.TranslationKey, e.LocaleCode, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

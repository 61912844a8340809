package locales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-treesync/internal/identity"
	"github.com/google/uuid"
)

// ErrLocaleCodeRequired indicates locale writes and lookups require a non-empty code.
var ErrLocaleCodeRequired = errors.New("locales: locale code is required")

// Repository persists locales and resolves them by id or code.
type Repository interface {
	Create(ctx context.Context, locale *Locale) (*Locale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Locale, error)
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
	ListByCodes(ctx context.Context, codes []string) ([]*Locale, error)
}

// NotFoundError represents missing locale lookups.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locales: locale %q not found", e.Key)
}

// IsNotFound reports whether err is a missing locale.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// New builds a locale record with a deterministic id derived from the code.
func New(code, display string) *Locale {
	trimmed := strings.TrimSpace(code)
	if display == "" {
		display = trimmed
	}
	return &Locale{
		ID:       identity.LocaleUUID(trimmed),
		Code:     trimmed,
		Display:  display,
		IsActive: true,
	}
}

func prepareLocale(locale *Locale) (*Locale, error) {
	if locale == nil || strings.TrimSpace(locale.Code) == "" {
		return nil, ErrLocaleCodeRequired
	}
	record := cloneLocale(locale)
	record.Code = strings.TrimSpace(record.Code)
	if record.ID == uuid.Nil {
		record.ID = identity.LocaleUUID(record.Code)
	}
	if strings.TrimSpace(record.Display) == "" {
		record.Display = record.Code
	}
	return record, nil
}

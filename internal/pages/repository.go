package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrDuplicateTranslation indicates a row already exists for the translation key and locale.
	ErrDuplicateTranslation = errors.New("pages: translation already exists for locale")
	// ErrParentNotTranslated indicates a copy needs a parent that is missing in the target locale.
	ErrParentNotTranslated = errors.New("pages: parent page is not translated into target locale")
	// ErrCopySourceRequired indicates a copy was requested without a source row.
	ErrCopySourceRequired = errors.New("pages: copy source is required")
)

// AliasFilter narrows queries by placeholder status.
type AliasFilter int

const (
	// AliasesIncluded returns real and placeholder rows.
	AliasesIncluded AliasFilter = iota
	// AliasesExcluded returns only real rows.
	AliasesExcluded
	// AliasesOnly returns only placeholder rows.
	AliasesOnly
)

// ListOptions filters page listings.
type ListOptions struct {
	Aliases AliasFilter
	// MinDepth excludes rows at or above the given depth when positive.
	MinDepth int
}

// Repository is the storage query surface used by the synchroniser and the copier.
type Repository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetTranslation(ctx context.Context, translationKey, localeID uuid.UUID) (*Page, error)
	List(ctx context.Context, opts ListOptions) ([]*Page, error)
	LocalesForKey(ctx context.Context, translationKey uuid.UUID, filter AliasFilter) ([]uuid.UUID, error)
	UpdateAliasOf(ctx context.Context, id, aliasOfID uuid.UUID) error
}

// NotFoundError represents missing page lookups.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pages: page %q not found", e.Key)
}

// IsNotFound reports whether err is a missing page.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func translationLookupKey(translationKey, localeID uuid.UUID) string {
	return translationKey.String() + "/" + localeID.String()
}

func matchesAliasFilter(page *Page, filter AliasFilter) bool {
	switch filter {
	case AliasesExcluded:
		return !page.IsAlias()
	case AliasesOnly:
		return page.IsAlias()
	default:
		return true
	}
}

// NewPageRepository builds the generic bun repository for pages.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Page) string {
			if p == nil {
				return ""
			}
			return p.ID.String()
		},
	})
}

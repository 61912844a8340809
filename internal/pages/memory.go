package pages

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory page store for scaffolding/tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	pages    map[uuid.UUID]*Page
	keyIndex map[string]uuid.UUID
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pages:    make(map[uuid.UUID]*Page),
		keyIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied page.
func (m *MemoryRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lookup := translationLookupKey(record.TranslationKey, record.LocaleID)
	if _, exists := m.keyIndex[lookup]; exists {
		return nil, ErrDuplicateTranslation
	}
	copied := clonePage(record)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.pages[copied.ID] = copied
	m.keyIndex[lookup] = copied.ID
	return clonePage(copied), nil
}

// Update persists mutable fields for a page.
func (m *MemoryRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.pages[record.ID]
	if !ok {
		return nil, &NotFoundError{Key: record.ID.String()}
	}
	updated := clonePage(current)
	updated.Title = record.Title
	updated.Slug = record.Slug
	updated.Path = record.Path
	updated.Live = record.Live
	updated.AliasOfID = cloneUUIDPointer(record.AliasOfID)
	updated.UpdatedAt = record.UpdatedAt
	m.pages[record.ID] = updated
	return clonePage(updated), nil
}

// GetByID retrieves a page by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return clonePage(page), nil
}

// GetTranslation retrieves the row of a translation key in a locale.
func (m *MemoryRepository) GetTranslation(_ context.Context, translationKey, localeID uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lookup := translationLookupKey(translationKey, localeID)
	id, ok := m.keyIndex[lookup]
	if !ok {
		return nil, &NotFoundError{Key: lookup}
	}
	return clonePage(m.pages[id]), nil
}

// List returns pages ordered by depth, creation time and id.
func (m *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0, len(m.pages))
	for _, record := range m.pages {
		if opts.MinDepth > 0 && record.Depth <= opts.MinDepth {
			continue
		}
		if !matchesAliasFilter(record, opts.Aliases) {
			continue
		}
		out = append(out, clonePage(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return lessPage(out[i], out[j])
	})
	return out, nil
}

// LocalesForKey lists the locale ids holding a row for the translation key,
// ordered by id.
func (m *MemoryRepository) LocalesForKey(_ context.Context, translationKey uuid.UUID, filter AliasFilter) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []uuid.UUID{}
	for _, record := range m.pages {
		if record.TranslationKey != translationKey || !matchesAliasFilter(record, filter) {
			continue
		}
		out = append(out, record.LocaleID)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out, nil
}

// UpdateAliasOf repoints a placeholder to a new source row.
func (m *MemoryRepository) UpdateAliasOf(_ context.Context, id, aliasOfID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.pages[id]
	if !ok {
		return &NotFoundError{Key: id.String()}
	}
	source := aliasOfID
	record.AliasOfID = &source
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func lessPage(a, b *Page) bool {
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

package locales

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository stores locales in-memory for scaffolding/tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Locale
	codeIdx map[string]uuid.UUID
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*Locale),
		codeIdx: make(map[string]uuid.UUID),
	}
}

// Create inserts or replaces a locale keyed by code.
func (m *MemoryRepository) Create(_ context.Context, locale *Locale) (*Locale, error) {
	record, err := prepareLocale(locale)
	if err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[record.ID] = record
	m.codeIdx[strings.ToLower(record.Code)] = record.ID
	return cloneLocale(record), nil
}

// GetByID resolves a locale by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneLocale(loc), nil
}

// GetByCode resolves a locale by code (case-insensitive).
func (m *MemoryRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrLocaleCodeRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codeIdx[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, &NotFoundError{Key: code}
	}
	return cloneLocale(m.byID[id]), nil
}

// List returns every locale ordered by code.
func (m *MemoryRepository) List(_ context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.byID))
	for _, loc := range m.byID {
		out = append(out, cloneLocale(loc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ListByCodes returns the locales matching the supplied codes, ordered by code.
// Unknown codes are skipped.
func (m *MemoryRepository) ListByCodes(_ context.Context, codes []string) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{}, len(codes))
	out := make([]*Locale, 0, len(codes))
	for _, code := range codes {
		id, ok := m.codeIdx[strings.ToLower(strings.TrimSpace(code))]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, cloneLocale(m.byID[id]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

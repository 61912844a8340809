package synctree

import (
	"bytes"
	"context"
	"sort"

	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/google/uuid"
)

// Entry is the index record for one logical page. Locales holds the locales
// with a real row and AliasedLocales those with a placeholder; both are sorted
// by id and never overlap.
type Entry struct {
	ContentType          string
	TranslationKey       uuid.UUID
	SourceLocale         uuid.UUID
	ParentTranslationKey *uuid.UUID
	Locales              []uuid.UUID
	AliasedLocales       []uuid.UUID
}

// IsRoot reports whether the entry is a locale homepage.
func (e Entry) IsRoot() bool {
	return e.ParentTranslationKey == nil
}

// HasLocale reports whether localeID holds a real row.
func (e Entry) HasLocale(localeID uuid.UUID) bool {
	return containsID(e.Locales, localeID)
}

// IsAliasedIn reports whether localeID holds a placeholder.
func (e Entry) IsAliasedIn(localeID uuid.UUID) bool {
	return containsID(e.AliasedLocales, localeID)
}

func (e Entry) clone() Entry {
	copied := e
	if e.ParentTranslationKey != nil {
		parent := *e.ParentTranslationKey
		copied.ParentTranslationKey = &parent
	}
	copied.Locales = append([]uuid.UUID(nil), e.Locales...)
	copied.AliasedLocales = append([]uuid.UUID(nil), e.AliasedLocales...)
	return copied
}

// PageReader is the storage query surface the index is built from.
type PageReader interface {
	List(ctx context.Context, opts pages.ListOptions) ([]*pages.Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	LocalesForKey(ctx context.Context, translationKey uuid.UUID, filter pages.AliasFilter) ([]uuid.UUID, error)
}

// Index is an immutable snapshot of the logical page tree. Derived indexes
// share no mutable state with their parent.
type Index struct {
	entries []Entry
	byKey   map[uuid.UUID]int
	orphans []Entry
}

// NewIndex builds an index from entries, keeping the first entry per key.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[uuid.UUID]int, len(entries)),
	}
	for _, entry := range entries {
		if _, dup := idx.byKey[entry.TranslationKey]; dup {
			continue
		}
		idx.byKey[entry.TranslationKey] = len(idx.entries)
		idx.entries = append(idx.entries, entry.clone())
	}
	return idx
}

// BuildFromStorage reads every real row below the absolute root and folds
// them into one entry per translation key. The first row per key, in storage
// order, provides the content type, source locale and parent key.
func BuildFromStorage(ctx context.Context, store PageReader) (*Index, error) {
	rows, err := store.List(ctx, pages.ListOptions{
		Aliases:  pages.AliasesExcluded,
		MinDepth: pages.RootDepth,
	})
	if err != nil {
		return nil, err
	}

	keysByRow := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		keysByRow[row.ID] = row.TranslationKey
	}

	entries := make([]Entry, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.TranslationKey]; dup {
			continue
		}
		seen[row.TranslationKey] = struct{}{}

		entry := Entry{
			ContentType:    row.ContentType,
			TranslationKey: row.TranslationKey,
			SourceLocale:   row.LocaleID,
		}
		if row.Depth > pages.HomepageDepth && row.ParentID != nil {
			parentKey, err := parentTranslationKey(ctx, store, keysByRow, *row.ParentID)
			if err != nil {
				return nil, err
			}
			entry.ParentTranslationKey = &parentKey
		}

		realLocales, err := store.LocalesForKey(ctx, row.TranslationKey, pages.AliasesExcluded)
		if err != nil {
			return nil, err
		}
		aliasedLocales, err := store.LocalesForKey(ctx, row.TranslationKey, pages.AliasesOnly)
		if err != nil {
			return nil, err
		}
		entry.Locales = sortIDs(realLocales)
		entry.AliasedLocales = sortIDs(subtractIDs(aliasedLocales, entry.Locales))
		entries = append(entries, entry)
	}
	return NewIndex(entries), nil
}

// parentTranslationKey resolves the parent row's key. Parents of real rows
// may be placeholders, which are not part of the listing.
func parentTranslationKey(ctx context.Context, store PageReader, known map[uuid.UUID]uuid.UUID, parentID uuid.UUID) (uuid.UUID, error) {
	if key, ok := known[parentID]; ok {
		return key, nil
	}
	parent, err := store.GetByID(ctx, parentID)
	if err != nil {
		return uuid.Nil, err
	}
	known[parentID] = parent.TranslationKey
	return parent.TranslationKey, nil
}

// SortByTreePosition returns a new index ordered depth-first from every root
// so that parents always precede their children. Entries never reached from
// a root are orphans: they are left out of the result and reported through
// Orphans.
func (idx *Index) SortByTreePosition() *Index {
	children := make(map[uuid.UUID][]int, len(idx.entries))
	roots := make([]int, 0)
	for i, entry := range idx.entries {
		if entry.ParentTranslationKey == nil {
			roots = append(roots, i)
			continue
		}
		parent := *entry.ParentTranslationKey
		children[parent] = append(children[parent], i)
	}

	sorted := make([]Entry, 0, len(idx.entries))
	visited := make(map[uuid.UUID]struct{}, len(idx.entries))
	stack := make([]int, 0, len(idx.entries))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry := idx.entries[pos]
		if _, done := visited[entry.TranslationKey]; done {
			continue
		}
		visited[entry.TranslationKey] = struct{}{}
		sorted = append(sorted, entry)

		kids := children[entry.TranslationKey]
		for i := len(kids) - 1; i >= 0; i-- {
			if _, done := visited[idx.entries[kids[i]].TranslationKey]; !done {
				stack = append(stack, kids[i])
			}
		}
	}

	out := NewIndex(sorted)
	for _, entry := range idx.entries {
		if _, ok := visited[entry.TranslationKey]; !ok {
			out.orphans = append(out.orphans, entry.clone())
		}
	}
	return out
}

// NotTranslatedInto keeps the entries without a real row in localeID.
// Entries that only hold a placeholder there are kept.
func (idx *Index) NotTranslatedInto(localeID uuid.UUID) *Index {
	filtered := make([]Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		if !entry.HasLocale(localeID) {
			filtered = append(filtered, entry)
		}
	}
	return NewIndex(filtered)
}

// Get returns the entry for translationKey.
func (idx *Index) Get(translationKey uuid.UUID) (Entry, bool) {
	pos, ok := idx.byKey[translationKey]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos].clone(), true
}

// Children returns the entries whose parent is parentKey, in index order.
func (idx *Index) Children(parentKey uuid.UUID) []Entry {
	out := []Entry{}
	for _, entry := range idx.entries {
		if entry.ParentTranslationKey != nil && *entry.ParentTranslationKey == parentKey {
			out = append(out, entry.clone())
		}
	}
	return out
}

// Entries returns a copy of the entries in index order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	for i, entry := range idx.entries {
		out[i] = entry.clone()
	}
	return out
}

// Len reports the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Orphans returns the entries SortByTreePosition could not reach.
func (idx *Index) Orphans() []Entry {
	out := make([]Entry, len(idx.orphans))
	for i, entry := range idx.orphans {
		out[i] = entry.clone()
	}
	return out
}

func containsID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func subtractIDs(ids, remove []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !containsID(remove, id) {
			out = append(out, id)
		}
	}
	return out
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	out := append([]uuid.UUID(nil), ids...)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	if out == nil {
		out = []uuid.UUID{}
	}
	return out
}

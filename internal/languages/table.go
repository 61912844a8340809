package languages

import (
	"sort"
	"strings"
)

// Info describes a language known to the platform.
type Info struct {
	Code      string   `json:"-"`
	Name      string   `json:"name"`
	NameLocal string   `json:"name_local,omitempty"`
	Bidi      bool     `json:"bidi,omitempty"`
	Fallback  []string `json:"fallback,omitempty"`
}

// Table maps language codes to their metadata. Keys are stored lowercased;
// lookups are case-insensitive.
type Table struct {
	entries map[string]Info
}

// NewTable builds a table from the supplied entries keyed by code.
func NewTable(entries map[string]Info) *Table {
	t := &Table{entries: make(map[string]Info, len(entries))}
	for code, info := range entries {
		key := normalizeCode(code)
		if key == "" {
			continue
		}
		info.Code = key
		info.Fallback = append([]string(nil), info.Fallback...)
		t.entries[key] = info
	}
	return t
}

// Lookup returns the metadata registered for code.
func (t *Table) Lookup(code string) (Info, bool) {
	if t == nil {
		return Info{}, false
	}
	info, ok := t.entries[normalizeCode(code)]
	if !ok {
		return Info{}, false
	}
	info.Fallback = append([]string(nil), info.Fallback...)
	return info, true
}

// Fallbacks returns the explicit fallback codes for code, or nil.
func (t *Table) Fallbacks(code string) []string {
	info, ok := t.Lookup(code)
	if !ok || len(info.Fallback) == 0 {
		return nil
	}
	return info.Fallback
}

// Codes returns every registered code in lexical order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len reports the number of registered languages.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Merge returns a new table where entries from other replace entries in t.
func (t *Table) Merge(other *Table) *Table {
	merged := &Table{entries: make(map[string]Info)}
	for _, src := range []*Table{t, other} {
		if src == nil {
			continue
		}
		for code, info := range src.entries {
			merged.entries[code] = info
		}
	}
	return merged
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

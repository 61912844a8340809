package interfaces

// LanguageTable exposes static language metadata. Fallbacks returns the
// explicit fallback codes declared for a language code, or nil when the code
// has no special-case entry.
type LanguageTable interface {
	Fallbacks(code string) []string
}

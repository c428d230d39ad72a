package privacy

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Library holds the canonical set of detectable PII categories and their
// compiled matchers. The compiled set is an immutable snapshot swapped
// atomically on registration, so concurrent scans never need a lock and
// never observe a partially-updated pattern set.
type Library struct {
	snapshot atomic.Pointer[librarySnapshot]
}

type librarySnapshot struct {
	recognizers []RecognizerConfig
	universal   []compiledPattern
	byCountry   map[string][]compiledPattern
}

// NewLibrary compiles the given recognizers into a pattern library.
func NewLibrary(recognizers []RecognizerConfig) (*Library, error) {
	snap, err := buildSnapshot(recognizers)
	if err != nil {
		return nil, err
	}
	lib := &Library{}
	lib.snapshot.Store(snap)
	return lib, nil
}

func buildSnapshot(recognizers []RecognizerConfig) (*librarySnapshot, error) {
	compiled, err := compileRecognizers(recognizers)
	if err != nil {
		return nil, err
	}

	// A category must be either universal or locale-scoped, not both:
	// mixed scoping would make locale filtering ambiguous.
	scoped := make(map[string]bool)
	universalCat := make(map[string]bool)
	for _, p := range compiled {
		if p.universal() {
			universalCat[p.category] = true
		} else {
			scoped[p.category] = true
		}
	}
	for cat := range universalCat {
		if scoped[cat] {
			return nil, &ConfigurationError{
				Recognizer: cat,
				Reason:     "category registered as both universal and locale-scoped",
			}
		}
	}

	snap := &librarySnapshot{
		recognizers: recognizers,
		byCountry:   make(map[string][]compiledPattern),
	}
	for _, p := range compiled {
		if p.universal() {
			snap.universal = append(snap.universal, p)
			continue
		}
		for _, country := range p.countries {
			snap.byCountry[country] = append(snap.byCountry[country], p)
		}
	}
	return snap, nil
}

// Register adds or overrides a recognizer. The whole library is recompiled
// into a fresh snapshot and swapped in one atomic store, so in-flight scans
// keep the set they started with. Registration is an administrative, rare
// operation; cost of recompiling everything is irrelevant here.
func (l *Library) Register(rec RecognizerConfig) error {
	for {
		old := l.snapshot.Load()
		merged := MergeRecognizers(old.recognizers, []RecognizerConfig{rec})
		snap, err := buildSnapshot(merged)
		if err != nil {
			return err
		}
		if l.snapshot.CompareAndSwap(old, snap) {
			return nil
		}
	}
}

// Replace swaps the entire recognizer set, used by config hot reload.
func (l *Library) Replace(recognizers []RecognizerConfig) error {
	snap, err := buildSnapshot(recognizers)
	if err != nil {
		return err
	}
	l.snapshot.Store(snap)
	return nil
}

// PatternsFor returns the patterns applicable to the requested locales:
// every universal recognizer plus the named countries' recognizers.
// An empty locale set selects universal patterns only.
func (l *Library) PatternsFor(locales []string) ([]compiledPattern, error) {
	snap := l.snapshot.Load()

	patterns := make([]compiledPattern, len(snap.universal))
	copy(patterns, snap.universal)

	seen := make(map[string]bool, len(locales))
	for _, locale := range locales {
		country := strings.ToUpper(strings.TrimSpace(locale))
		if country == "" || country == "UNIVERSAL" || seen[country] {
			continue
		}
		seen[country] = true
		scoped, ok := snap.byCountry[country]
		if !ok {
			return nil, &UnknownLocaleError{Locale: country}
		}
		patterns = append(patterns, scoped...)
	}
	return patterns, nil
}

// Locales lists every country code with registered patterns, sorted.
func (l *Library) Locales() []string {
	snap := l.snapshot.Load()
	locales := make([]string, 0, len(snap.byCountry))
	for country := range snap.byCountry {
		locales = append(locales, country)
	}
	sort.Strings(locales)
	return locales
}

// CategoriesFor lists the distinct categories detectable for the given
// locales, sorted. Used by the pattern-listing API.
func (l *Library) CategoriesFor(locales []string) ([]string, error) {
	patterns, err := l.PatternsFor(locales)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, p := range patterns {
		set[p.category] = true
	}
	categories := make([]string, 0, len(set))
	for cat := range set {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories, nil
}

// Recognizers returns a copy of the current recognizer configs.
func (l *Library) Recognizers() []RecognizerConfig {
	snap := l.snapshot.Load()
	out := make([]RecognizerConfig, len(snap.recognizers))
	copy(out, snap.recognizers)
	return out
}

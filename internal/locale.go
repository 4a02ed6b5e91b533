package internal

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locales is an immutable set of supported locale tags with a default.
// Lookups are case-insensitive; the tag is always returned as configured.
type Locales struct {
	byLower map[string]string
	def     string
	tags    []string
}

// NewLocales builds a locale set. When def is empty the first tag is the default.
func NewLocales(tags []string, def string) (*Locales, error) {
	l := &Locales{
		byLower: make(map[string]string, len(tags)),
		tags:    make([]string, 0, len(tags)),
	}

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		lower := strings.ToLower(tag)
		if _, dup := l.byLower[lower]; dup {
			continue
		}
		l.byLower[lower] = tag
		l.tags = append(l.tags, tag)
	}

	if len(l.tags) == 0 {
		return nil, ErrNoLocales
	}

	def = strings.TrimSpace(def)
	if def == "" {
		l.def = l.tags[0]
		return l, nil
	}

	stored, ok := l.byLower[strings.ToLower(def)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDefault, def)
	}
	l.def = stored

	return l, nil
}

// Default returns the default locale.
func (l *Locales) Default() string {
	return l.def
}

// Tags returns the supported tags in configuration order.
func (l *Locales) Tags() []string {
	out := make([]string, len(l.tags))
	copy(out, l.tags)
	return out
}

// Lookup returns the configured spelling of tag when it is supported.
func (l *Locales) Lookup(tag string) (string, bool) {
	stored, ok := l.byLower[strings.ToLower(tag)]
	return stored, ok
}

// ResolveExact maps an arbitrary requested tag onto a supported one.
//
// The input is trimmed and matched case-insensitively. On a miss the last
// hyphen segment is dropped and the shorter tag is tried, down to the
// primary subtag. Anything that still misses resolves to the default.
func (l *Locales) ResolveExact(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return l.def
	}
	for _, candidate := range Truncations(input) {
		if stored, ok := l.Lookup(candidate); ok {
			return stored
		}
	}
	return l.def
}

// FallbackChain returns the ordered locales to try for input: the resolved
// tag, each of its shorter truncations, then the default. Duplicates and
// unsupported tags are dropped.
func (l *Locales) FallbackChain(input string) []string {
	best := l.ResolveExact(input)
	candidates := append(Truncations(best), l.def)

	chain := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		stored, ok := l.Lookup(c)
		if !ok {
			continue
		}
		if _, dup := seen[stored]; dup {
			continue
		}
		seen[stored] = struct{}{}
		chain = append(chain, stored)
	}

	return chain
}

// Truncations lists tag and every hyphen-truncation of it, most specific first:
//
//	Truncations("zh-Hans-CN") == []string{"zh-Hans-CN", "zh-Hans", "zh"}
func Truncations(tag string) []string {
	if tag == "" {
		return nil
	}
	out := []string{tag}
	for {
		i := strings.LastIndexByte(tag, '-')
		if i <= 0 {
			return out
		}
		tag = tag[:i]
		out = append(out, tag)
	}
}

// ValidateTags checks that every tag is a well-formed BCP 47 tag.
func ValidateTags(tags ...string) error {
	for _, tag := range tags {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidLocale, tag, err)
		}
	}
	return nil
}

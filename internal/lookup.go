package internal

import (
	"context"
	"strings"
)

// Dictionary maps a locale to its key/text pairs.
// A present key with an empty text is a hit.
type Dictionary map[string]map[string]string

// DictionaryFunc produces a dictionary for one lookup.
type DictionaryFunc func(ctx context.Context, locale, key string) (Dictionary, error)

// MatchType selects how a requested locale is matched against the locales
// present in a dictionary.
type MatchType string

const (
	// MatchExact uses the dictionary locale equal to the requested one.
	MatchExact MatchType = "exact"
	// MatchHierarchy tries the requested locale, then its hyphen-truncations.
	MatchHierarchy MatchType = "hierarchy"
	// MatchStartsWith uses the longest dictionary locale that prefixes the requested one.
	MatchStartsWith MatchType = "startsWith"
)

// LookupOption configures a dictionary lookup middleware.
type LookupOption func(*lookupConfig)

type lookupConfig struct {
	match MatchType
}

// WithMatchType sets the locale match policy. The default is MatchExact.
func WithMatchType(m MatchType) LookupOption {
	return func(c *lookupConfig) {
		if m != "" {
			c.match = m
		}
	}
}

// Lookup returns a middleware that resolves keys from a static dictionary.
func Lookup(dict Dictionary, opts ...LookupOption) Middleware {
	return LookupFunc(func(context.Context, string, string) (Dictionary, error) {
		return dict, nil
	}, opts...)
}

// LookupFunc returns a middleware that asks fn for a dictionary on every
// lookup. Errors from fn are returned to the dispatcher.
func LookupFunc(fn DictionaryFunc, opts ...LookupOption) Middleware {
	cfg := &lookupConfig{match: MatchExact}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx context.Context, locale, key string, _ Next) (string, bool, error) {
		dict, err := fn(ctx, locale, key)
		if err != nil {
			return "", false, err
		}
		if len(dict) == 0 {
			return "", false, nil
		}

		dictLocale, ok := MatchLocale(cfg.match, locale, dict.Locales())
		if !ok {
			return "", false, nil
		}

		text, ok := dict[dictLocale][key]
		return text, ok, nil
	}
}

// Locales returns the locales present in the dictionary.
func (d Dictionary) Locales() []string {
	out := make([]string, 0, len(d))
	for loc := range d {
		out = append(out, loc)
	}
	return out
}

// MatchLocale picks the candidate that serves locale under the given policy.
// Comparisons are case-insensitive; the candidate is returned as given.
func MatchLocale(match MatchType, locale string, candidates []string) (string, bool) {
	byLower := make(map[string]string, len(candidates))
	for _, c := range candidates {
		byLower[strings.ToLower(c)] = c
	}
	lower := strings.ToLower(strings.TrimSpace(locale))
	if lower == "" {
		return "", false
	}

	switch match {
	case MatchHierarchy:
		for _, t := range Truncations(lower) {
			if c, ok := byLower[t]; ok {
				return c, true
			}
		}
		return "", false

	case MatchStartsWith:
		best, found := "", false
		for l, c := range byLower {
			if !strings.HasPrefix(lower, l) {
				continue
			}
			if !found || len(l) > len(strings.ToLower(best)) {
				best, found = c, true
			}
		}
		return best, found

	default:
		c, ok := byLower[lower]
		return c, ok
	}
}

package internal

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Resolver extracts the raw, unvalidated locale requested by r.
// An empty result means the request did not ask for a locale.
type Resolver func(r *http.Request) (string, error)

// HeaderResolver reads the locale from a request header.
// For Accept-Language only the primary tag is used: the part before the
// first "," and then before the first ";".
func HeaderResolver(name string) Resolver {
	acceptLanguage := strings.EqualFold(name, "Accept-Language")
	return func(r *http.Request) (string, error) {
		v := r.Header.Get(name)
		if acceptLanguage {
			v = PrimaryLanguage(v)
		}
		return v, nil
	}
}

// PrimaryLanguage returns the first language tag of an Accept-Language value.
func PrimaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}

// QueryResolver reads the locale from a query parameter. The parsed URL
// query is checked first, then the raw request URI. Repeated parameters
// resolve to their first value.
func QueryResolver(name string) Resolver {
	return func(r *http.Request) (string, error) {
		if r.URL != nil {
			if vals, ok := r.URL.Query()[name]; ok && len(vals) > 0 {
				return vals[0], nil
			}
		}
		if r.RequestURI == "" {
			return "", nil
		}
		u, err := url.ParseRequestURI(r.RequestURI)
		if err != nil {
			return "", nil
		}
		return u.Query().Get(name), nil
	}
}

// CookieResolver reads the locale from a cookie.
func CookieResolver(name string) Resolver {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil {
			return "", nil
		}
		return c.Value, nil
	}
}

// AcceptLanguageResolver negotiates Accept-Language, including q-values,
// against the available tags. It returns the best available tag or an
// empty string when nothing matches with at least low confidence.
func AcceptLanguageResolver(available ...string) Resolver {
	tags := make([]language.Tag, 0, len(available))
	names := make([]string, 0, len(available))
	for _, a := range available {
		tag, err := language.Parse(a)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, a)
	}
	matcher := language.NewMatcher(tags)

	return func(r *http.Request) (string, error) {
		header := r.Header.Get("Accept-Language")
		if header == "" || len(tags) == 0 {
			return "", nil
		}
		desired, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(desired) == 0 {
			return "", nil
		}
		_, idx, conf := matcher.Match(desired...)
		if conf == language.No {
			return "", nil
		}
		return names[idx], nil
	}
}

// FirstOf tries resolvers in order and returns the first non-empty locale.
// An error from any resolver stops the search.
func FirstOf(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		for _, res := range resolvers {
			v, err := res(r)
			if err != nil {
				return "", err
			}
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
		return "", nil
	}
}

// Static always resolves to locale.
func Static(locale string) Resolver {
	return func(*http.Request) (string, error) {
		return locale, nil
	}
}

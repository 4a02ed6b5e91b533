// Package lingo translates "#{key}" placeholders in strings and in
// arbitrary values, using the locale of the current request.
//
// A [Service] owns the supported locales, a resolver reading the requested
// locale from a request, and an ordered chain of lookup middlewares. Each
// placeholder is looked up in the resolved locale, then in its shorter
// truncations, then in the default locale. A placeholder no locale can
// resolve stays in the output as written.
//
// # Quick Start
//
//	svc, err := lingo.New(
//	    lingo.WithLocales("en", "de", "zh-Hans"),
//	    lingo.WithResolver(lingo.AcceptLanguageResolver("en", "de", "zh-Hans")),
//	    lingo.WithMiddleware(lingo.Lookup(lingo.Dictionary{
//	        "en": {"greeting": "Hello"},
//	        "de": {"greeting": "Hallo"},
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, _ := svc.TranslateString(ctx, "de-AT", "#{greeting}, Anna") // "Hallo, Anna"
//
// # Middlewares
//
// A [Middleware] answers one key for one locale. It returns a hit, reports
// a miss so the next middleware is asked, or calls next itself to decorate
// the rest of the chain:
//
//	svc.Use(func(ctx context.Context, locale, key string, next lingo.Next) (string, bool, error) {
//	    text, ok, err := next()
//	    return strings.ToUpper(text), ok, err
//	})
//
// Use appends, UseFirst prepends, and both return a [Handle] for Remove.
// An error wrapping [*HTTPError] aborts the whole translation and is
// returned unchanged; other errors are logged and treated as a miss.
//
// Ready-made sources live in subpackages: pkg/catalog (files, S3,
// PostgreSQL, Redis, go-i18n bundles), pkg/cache and pkg/sanitizer.
//
// # Deep Translation
//
// [Service.Translate] and the generic [Translate] return a translated copy
// of any value. Strings are translated; slices, arrays, maps, structs and
// pointers are rebuilt with the same type; numbers, times and other opaque
// values are kept. Struct fields tagged `i18n:"-"` are copied untouched.
// Values implementing [Translatable] translate themselves, and [Awaiter]
// values such as [Future] are awaited first.
//
// # HTTP
//
// The middlewares package binds the Service to net/http: I18n stores the
// request locale, Handle translates handler results and [*HTTPError]
// payloads, and Translate rewrites JSON responses written by plain handlers.
package lingo

// Package internal provides the core types and implementation for lingo.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/lingo" instead, which re-exports the public API.
//
// # Pipeline
//
// A Service owns the supported locales, the locale resolver and an ordered
// list of lookup middlewares. Translating a string parses it into raw text
// and "#{key}" placeholders (ParsePlaceholders), resolves the requested
// locale to a supported one (Locales.ResolveExact), builds the fallback
// chain (Locales.FallbackChain) and asks the middlewares for every
// placeholder, locale by locale, until one answers.
//
// # Middlewares
//
// A Middleware answers with a value, declines, or delegates to next.
// Declining without calling next moves on to the following middleware.
// Returning an error that wraps *HTTPError aborts the whole call; any other
// error is logged and skipped. Lookup and LookupFunc build middlewares over
// dictionaries with exact, hierarchy or startsWith locale matching.
//
// # Deep translation
//
// Service.Translate returns a translated copy of an arbitrary value:
//
//   - strings (including named string types) are translated
//   - structs are copied and their exported fields translated; fields
//     tagged `i18n:"-"` are copied untouched
//   - maps keep their keys, slices and arrays keep order and length
//   - pointers yield a new pointer to the translated copy
//   - an Awaiter is awaited and its result translated
//   - a Translatable translates itself through the given visitor
//   - numbers, bools, funcs, channels, errors and well-known library types
//     such as time.Time, url.URL and []byte are returned as is
//
// Elements and fields of one container are translated concurrently. A
// reference (pointer, map or slice) seen twice during one call is returned
// unchanged the second time, which also breaks cycles.
package internal

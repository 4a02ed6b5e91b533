package lingo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/lingo/internal"
)

// Type aliases - public API
type (
	// Service translates placeholders in strings and object graphs.
	Service = internal.Service

	// Option configures a Service.
	Option = internal.Option

	// Middleware looks up the translation of a key in one locale.
	Middleware = internal.Middleware

	// Next invokes the remaining middlewares.
	Next = internal.Next

	// Handle identifies a middleware registration for removal.
	Handle = internal.Handle

	// Resolver extracts the raw requested locale from a request.
	Resolver = internal.Resolver

	// Locales is the immutable set of supported locales.
	Locales = internal.Locales

	// LocaleContext is a Service bound to one locale.
	LocaleContext = internal.LocaleContext

	// MissingHandler is notified about placeholders no locale could resolve.
	MissingHandler = internal.MissingHandler

	// Dictionary maps locales to key/text pairs.
	Dictionary = internal.Dictionary

	// DictionaryFunc produces a dictionary per lookup.
	DictionaryFunc = internal.DictionaryFunc

	// MatchType selects how locales are matched against a dictionary.
	MatchType = internal.MatchType

	// LookupOption configures dictionary lookup middlewares.
	LookupOption = internal.LookupOption

	// Segment is one parsed piece of a string.
	Segment = internal.Segment

	// Visit translates one nested value during deep translation.
	Visit = internal.Visit

	// Translatable is implemented by types that translate themselves.
	Translatable = internal.Translatable

	// Awaiter is a value that becomes available later.
	Awaiter = internal.Awaiter

	// Future is a one-shot asynchronous value.
	Future = internal.Future

	// HTTPError aborts a translation and carries a status and payload.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ErrorBody is the default payload of an HTTPError.
	ErrorBody = internal.ErrorBody
)

// Locale match policies.
const (
	MatchExact      = internal.MatchExact
	MatchHierarchy  = internal.MatchHierarchy
	MatchStartsWith = internal.MatchStartsWith
)

// New creates a translation Service.
//
// Example:
//
//	svc, err := lingo.New(
//	    lingo.WithLocales("en", "zh", "zh-Hans"),
//	    lingo.WithDefaultLocale("en"),
//	    lingo.WithResolver(lingo.HeaderResolver("X-Lang")),
//	    lingo.WithMiddleware(lingo.Lookup(dict, lingo.WithMatchType(lingo.MatchHierarchy))),
//	)
func New(opts ...Option) (*Service, error) {
	return internal.New(opts...)
}

// Options.

// WithLocales sets the supported locales; the first is the default unless
// WithDefaultLocale is given.
func WithLocales(tags ...string) Option {
	return internal.WithLocales(tags...)
}

// WithDefaultLocale sets the final fallback locale.
func WithDefaultLocale(tag string) Option {
	return internal.WithDefaultLocale(tag)
}

// WithStrictLocales rejects locales that are not valid BCP 47 tags.
func WithStrictLocales() Option {
	return internal.WithStrictLocales()
}

// WithResolver sets how the requested locale is read from a request.
func WithResolver(r Resolver) Option {
	return internal.WithResolver(r)
}

// WithLogger sets the logger used for middleware failures.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware registers lookup middlewares in order.
func WithMiddleware(mws ...Middleware) Option {
	return internal.WithMiddleware(mws...)
}

// WithMissingHandler sets a callback for unresolved placeholders.
func WithMissingHandler(fn MissingHandler) Option {
	return internal.WithMissingHandler(fn)
}

// WithConcurrency bounds per-container fan-out during deep translation.
func WithConcurrency(n int) Option {
	return internal.WithConcurrency(n)
}

// WithOpaqueTypes marks types that deep translation must not descend into.
func WithOpaqueTypes(samples ...any) Option {
	return internal.WithOpaqueTypes(samples...)
}

// Resolvers.

// HeaderResolver reads the locale from a header; Accept-Language yields its primary tag.
func HeaderResolver(name string) Resolver {
	return internal.HeaderResolver(name)
}

// QueryResolver reads the locale from a query parameter.
func QueryResolver(name string) Resolver {
	return internal.QueryResolver(name)
}

func CookieResolver(name string) Resolver {
	return internal.CookieResolver(name)
}

// AcceptLanguageResolver negotiates Accept-Language against the available tags.
func AcceptLanguageResolver(available ...string) Resolver {
	return internal.AcceptLanguageResolver(available...)
}

// FirstOf returns the first non-empty locale of the given resolvers.
func FirstOf(resolvers ...Resolver) Resolver {
	return internal.FirstOf(resolvers...)
}

// StaticLocale always resolves to locale.
func StaticLocale(locale string) Resolver {
	return internal.Static(locale)
}

// Lookup returns a middleware over a static dictionary.
func Lookup(dict Dictionary, opts ...LookupOption) Middleware {
	return internal.Lookup(dict, opts...)
}

// LookupFunc returns a middleware over a dictionary produced per lookup.
func LookupFunc(fn DictionaryFunc, opts ...LookupOption) Middleware {
	return internal.LookupFunc(fn, opts...)
}

// WithMatchType sets the locale match policy of a lookup middleware.
func WithMatchType(m MatchType) LookupOption {
	return internal.WithMatchType(m)
}

// Translate deep-translates v and returns it with its static type.
func Translate[T any](ctx context.Context, svc *Service, locale string, v T) (T, error) {
	out, err := svc.Translate(ctx, locale, v)
	if err != nil {
		return v, err
	}
	if t, ok := out.(T); ok {
		return t, nil
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	// Awaited values come back resolved.
	if t, ok := any(Resolved(out)).(T); ok {
		return t, nil
	}
	return v, fmt.Errorf("%w: got %T", ErrResultType, out)
}

// FromContext returns the LocaleContext stored by middlewares.I18n.
func FromContext(ctx context.Context) (*LocaleContext, bool) {
	return internal.LocaleContextFrom(ctx)
}

// LocaleFromContext returns the request locale stored in ctx.
func LocaleFromContext(ctx context.Context) string {
	return internal.LocaleFromContext(ctx)
}

// ParsePlaceholders splits text into raw and placeholder segments.
func ParsePlaceholders(text string) []Segment {
	return internal.ParsePlaceholders(text)
}

// Futures.

// Go runs fn asynchronously and returns its Future.
func Go(fn func() (any, error)) *Future {
	return internal.Go(fn)
}

func Resolved(v any) *Future {
	return internal.Resolved(v)
}

func Rejected(err error) *Future {
	return internal.Rejected(err)
}

// VisitAs runs visit on v and converts the result back to T.
func VisitAs[T any](ctx context.Context, visit Visit, v T) (T, error) {
	return internal.VisitAs(ctx, visit, v)
}

// HTTP errors.

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}
func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}
func WithResponse(payload any) HTTPErrorOption {
	return internal.WithResponse(payload)
}

func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Sentinel errors.
var (
	ErrNoLocales          = internal.ErrNoLocales
	ErrEmptyLocale        = internal.ErrEmptyLocale
	ErrUnsupportedDefault = internal.ErrUnsupportedDefault
	ErrInvalidLocale      = internal.ErrInvalidLocale
	ErrNilMiddleware      = internal.ErrNilMiddleware
	ErrNilResolver        = internal.ErrNilResolver
	ErrNilRequest         = internal.ErrNilRequest
	ErrResultType         = internal.ErrResultType
)

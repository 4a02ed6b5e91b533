package internal

import (
	"errors"
	"net/http"
)

var (
	ErrNoLocales          = errors.New("lingo: at least one supported locale is required")
	ErrEmptyLocale        = errors.New("lingo: locale cannot be empty")
	ErrUnsupportedDefault = errors.New("lingo: default locale is not in the supported set")
	ErrInvalidLocale      = errors.New("lingo: invalid locale tag")
	ErrNilMiddleware      = errors.New("lingo: middleware cannot be nil")
	ErrNilResolver        = errors.New("lingo: resolver cannot be nil")
	ErrNilRequest         = errors.New("lingo: request cannot be nil")
	ErrNilDictionary      = errors.New("lingo: dictionary source cannot be nil")
	ErrNoService          = errors.New("lingo: no translation service in context")
	ErrResultType         = errors.New("lingo: translated value does not fit the requested type")
)

// HTTPError is the hard-failure signal of the translation pipeline.
// A lookup middleware returning an *HTTPError (directly or wrapped) aborts
// the whole translation call; any other error only skips that middleware.
// Interceptors translate Response before writing it with Code.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Response is the payload rendered to the client.
	// When nil, an ErrorBody built from Code and Message is used.
	Response any

	// Message is the user-facing error message.
	// It may itself contain placeholders.
	Message string

	// ErrorCode is an application-specific error code.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

// ErrorBody is the default payload of an HTTPError without an explicit Response.
type ErrorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	ErrorCode  string `json:"errorCode,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	StatusCode int    `json:"statusCode"`
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// Payload returns the body that should be rendered for this error.
func (e *HTTPError) Payload() any {
	if e.Response != nil {
		return e.Response
	}
	return ErrorBody{
		StatusCode: e.Code,
		Message:    e.Error(),
		Error:      e.StatusText(),
		ErrorCode:  e.ErrorCode,
		RequestID:  e.RequestID,
	}
}

// WithPayload returns a copy of the error carrying the given response payload.
func (e *HTTPError) WithPayload(payload any) *HTTPError {
	cp := *e
	cp.Response = payload
	return &cp
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithResponse(payload any) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Response = payload
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// Helper functions for error inspection.

// IsHTTPError reports whether err is, or wraps, an *HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if the error does not carry an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

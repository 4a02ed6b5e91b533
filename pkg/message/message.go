package message

import (
	"math"
	"net/http"
	"time"

	"github.com/dmitrymomot/lingo/internal"
)

// DefaultMessage is used when a message is created without text.
const DefaultMessage = "success"

// Blank is a response envelope without data.
type Blank struct {
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Success    bool      `json:"success"`
}

// New returns a Blank message. Success is derived from the status code.
func New(statusCode int, msg string) Blank {
	if msg == "" {
		msg = DefaultMessage
	}
	return Blank{
		StatusCode: statusCode,
		Message:    msg,
		Success:    statusCode < http.StatusBadRequest,
		Timestamp:  time.Now().UTC(),
	}
}

// HTTPStatus returns the status the message should be written with.
func (m Blank) HTTPStatus() int {
	return m.StatusCode
}

// ToError returns an *HTTPError with the message as its payload.
func (m Blank) ToError() *internal.HTTPError {
	return toError(m.StatusCode, m.Message, m)
}

// Data is a response envelope carrying a payload.
type Data[T any] struct {
	Data T `json:"data"`
	Blank
}

// WithData returns a Data message.
func WithData[T any](statusCode int, msg string, data T) Data[T] {
	return Data[T]{Blank: New(statusCode, msg), Data: data}
}

// ToError returns an *HTTPError with the message as its payload.
func (m Data[T]) ToError() *internal.HTTPError {
	return toError(m.StatusCode, m.Message, m)
}

// PageSettings describes the requested page.
type PageSettings struct {
	PageCount      int `json:"pageCount"`
	RecordsPerPage int `json:"recordsPerPage"`
}

// Paginated is a response envelope carrying one page of records.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	PageSettings
	Blank
}

// Page returns a Paginated message. TotalPages is zero when
// RecordsPerPage is not positive.
func Page[T any](statusCode int, msg string, data []T, total int, page PageSettings) Paginated[T] {
	var pages int
	if page.RecordsPerPage > 0 {
		pages = int(math.Ceil(float64(total) / float64(page.RecordsPerPage)))
	}
	return Paginated[T]{
		Blank:        New(statusCode, msg),
		Data:         data,
		Total:        total,
		TotalPages:   pages,
		PageSettings: page,
	}
}

// ToError returns an *HTTPError with the message as its payload.
func (m Paginated[T]) ToError() *internal.HTTPError {
	return toError(m.StatusCode, m.Message, m)
}

func toError(code int, msg string, payload any) *internal.HTTPError {
	return internal.NewHTTPError(code, msg, internal.WithResponse(payload))
}

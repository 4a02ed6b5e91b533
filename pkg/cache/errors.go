package cache

import "errors"

var (
	ErrClosed    = errors.New("cache: closed")
	ErrNilStore  = errors.New("cache: nil store")
	ErrMarshal   = errors.New("cache: failed to marshal entry")
	ErrUnmarshal = errors.New("cache: failed to unmarshal entry")
)

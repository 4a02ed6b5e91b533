package missing

import "errors"

var (
	ErrNilEnqueuer    = errors.New("missing: nil enqueuer")
	ErrNilSink        = errors.New("missing: nil sink")
	ErrPoolRequired   = errors.New("missing: database pool is required")
	ErrAlreadyRunning = errors.New("missing: collector already running")
	ErrMigrate        = errors.New("missing: failed to apply migrations")
)

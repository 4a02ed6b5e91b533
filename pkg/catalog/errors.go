package catalog

import "errors"

var (
	ErrNilSource         = errors.New("catalog: nil source")
	ErrNilStore          = errors.New("catalog: nil store")
	ErrInvalidFile       = errors.New("catalog: invalid translation file")
	ErrUnsupportedFormat = errors.New("catalog: unsupported file format")
	ErrInvalidValue      = errors.New("catalog: translation value must be a scalar")
	ErrEmptyLocale       = errors.New("catalog: empty locale")
	ErrEmptyKey          = errors.New("catalog: empty key")

	ErrInvalidSchedule = errors.New("catalog: invalid reload schedule")
	ErrReloaderRunning = errors.New("catalog: reloader already running")

	ErrInvalidS3Config = errors.New("catalog: invalid s3 configuration")
	ErrObjectNotFound  = errors.New("catalog: object not found")
	ErrAccessDenied    = errors.New("catalog: access denied")
	ErrS3Failed        = errors.New("catalog: s3 request failed")

	ErrFailedToParseDBConfig    = errors.New("catalog: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("catalog: failed to open database connection")
	ErrSetDialect               = errors.New("catalog migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("catalog migrator: failed to apply migrations")

	ErrEmptyConnectionURL = errors.New("catalog: empty redis connection URL")
	ErrFailedToParseURL   = errors.New("catalog: failed to parse redis connection URL")
	ErrConnectionFailed   = errors.New("catalog: failed to establish redis connection")
)

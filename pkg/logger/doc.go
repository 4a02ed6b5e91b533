// Package logger builds the process-wide slog.Logger.
//
// Records go to stdout as JSON (or text) and, when SENTRY_DSN is set, to
// Sentry as well: errors become Sentry events, warnings and errors are kept
// as Sentry logs. ContextExtractor functions attach request-scoped values
// to every record:
//
//	log, err := logger.New(cfg,
//	    logger.WithExtractors(
//	        middlewares.RequestIDExtractor(),
//	        middlewares.LocaleExtractor(),
//	    ),
//	)
package logger

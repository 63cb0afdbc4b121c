// Package logger builds the application's slog loggers.
//
// Loggers write JSON (or text) to stdout and may also forward warnings and
// errors to Sentry. Context extractors add request-scoped attributes such as
// the request id or the resolved site slug to every record:
//
//	log := logger.New(logger.Config{Level: "debug"},
//		middlewares.RequestIDExtractor(),
//		site.SlugExtractor(),
//	)
//	log.InfoContext(ctx, "page rendered")
//	// {"level":"INFO","msg":"page rendered","request_id":"…","site":"petshop"}
//
// NewWithSentry falls back to stdout-only logging when the DSN is empty, so the
// same code path works in development and production.
//
// NewNope returns a logger that discards everything; packages use it as
// their default.
package logger

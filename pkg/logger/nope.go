package logger

import "log/slog"

// NewNope returns a logger that drops every record. Packages use it until
// a logger is configured, and tests use it to keep output quiet.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

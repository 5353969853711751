// Package sl has small helpers for structured logging with slog.
package sl

import "log/slog"

// Err returns a slog.Attr with the "error" key so failures are logged
// uniformly across the codebase.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Package logging configures slog-based structured logging for anicat.
//
// It provides a console handler for interactive use, a JSON handler for
// machine-readable logs, standardized field names, and helpers that derive
// logger attributes (page, item, stage) from request context.
package logging

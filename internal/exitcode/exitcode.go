// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion. Upload runs exit with Success
	// even when individual records failed; those failures are reported inline.
	Success = 0

	// UserError indicates a user error (bad args, bad flag values).
	UserError = 1

	// ConfigError indicates missing or unreadable credentials.
	ConfigError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3

	// Interrupted indicates the run was stopped by a signal.
	Interrupted = 130
)

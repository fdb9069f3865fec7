// Package exitcode defines exit codes for the CLI.
package exitcode

// Every handled failure exits 1. The named codes record which category of
// failure a call site is reporting.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a local validation error (bad args, bad date, no fields).
	UserError = 1

	// AuthError indicates a session, profile or secret store error.
	AuthError = 1

	// BackendError indicates an API, network or response decoding error.
	BackendError = 1
)

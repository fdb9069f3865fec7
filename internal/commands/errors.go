package commands

import (
	"errors"
	"fmt"
	"io"

	"taskman/internal/api"
	"taskman/internal/exitcode"
	"taskman/internal/prompt"
	"taskman/internal/service"
	"taskman/internal/session"
)

// userError prints a local validation failure.
func userError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// backendError prints a failed service call. API errors already carry a
// readable message; malformed records are reported as backend errors.
func backendError(errOut io.Writer, err error) int {
	var perr *service.ParseError
	switch {
	case errors.As(err, &perr):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, prompt.ErrCancelled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.BackendError
}

// sessionError prints a failure to read or write saved profiles.
func sessionError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, session.ErrSecretStoreUnavailable):
		fmt.Fprintf(errOut, "error: %v (set token_store: file to keep tokens in a file)\n", err)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.AuthError
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConnection   = errors.New("connection failed")
	ErrTimeout      = errors.New("request timed out")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrClient       = errors.New("request rejected")
	ErrDecode       = errors.New("invalid response")
)

// maxBodyInMessage caps how much of a raw error body is echoed to the user.
const maxBodyInMessage = 200

// Error is the single error type for anything that goes wrong in a round
// trip to the remote service.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error

	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int

	// Message is the one-line, user-readable description.
	Message string

	// Body is the raw response body for HTTP errors.
	Body string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// newStatusError normalizes a non-2xx response.
func newStatusError(code int, body string, fallbackMsg string) *Error {
	msg := serverMessage([]byte(body))
	if msg == "" {
		msg = fallbackMsg
	}
	if msg == "" {
		msg = rawStatus(code, body)
	}

	e := &Error{StatusCode: code, Body: body}
	switch {
	case code == http.StatusUnauthorized:
		e.Kind = ErrUnauthorized
	case code == http.StatusForbidden:
		e.Kind = ErrForbidden
	case code == http.StatusNotFound:
		e.Kind = ErrNotFound
	case code >= 500:
		e.Kind = ErrServer
	default:
		e.Kind = ErrClient
		e.Message = msg
		return e
	}
	e.Message = fmt.Sprintf("%s: %s", e.Kind, msg)
	return e
}

// rawStatus is the fallback text when the body has no usable message.
func rawStatus(code int, body string) string {
	s := fmt.Sprintf("HTTP %d %s", code, http.StatusText(code))
	body = strings.Join(strings.Fields(body), " ")
	if body == "" {
		return s
	}
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage] + "..."
	}
	return s + ": " + body
}

// serverMessage extracts a human message from an error body. It looks at
// "message", then "error" as a string, then "error.message".
func serverMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	if s := jsonString(fields["message"]); s != "" {
		return s
	}
	raw, ok := fields["error"]
	if !ok {
		return ""
	}
	if s := jsonString(raw); s != "" {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

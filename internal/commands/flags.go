package commands

import (
	"fmt"
	"strconv"
	"strings"

	"taskman/internal/service"
)

// optString is a string flag that records whether it was given.
type optString struct {
	val string
	set bool
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.val = s
	o.set = true
	return nil
}

// ptr returns nil when the flag was not given.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.val
	return &v
}

// optInt64 is an integer flag that records whether it was given.
type optInt64 struct {
	val int64
	set bool
}

func (o *optInt64) String() string { return strconv.FormatInt(o.val, 10) }

func (o *optInt64) Set(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	o.val = n
	o.set = true
	return nil
}

func (o *optInt64) ptr() *int64 {
	if !o.set {
		return nil
	}
	v := o.val
	return &v
}

// optBool is a boolean flag that records whether it was given, so
// --completed=false is distinct from no flag.
type optBool struct {
	val bool
	set bool
}

func (o *optBool) String() string { return strconv.FormatBool(o.val) }

func (o *optBool) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("must be true or false")
	}
	o.val = b
	o.set = true
	return nil
}

func (o *optBool) IsBoolFlag() bool { return true }

func (o *optBool) ptr() *bool {
	if !o.set {
		return nil
	}
	v := o.val
	return &v
}

// parseID parses the single positional record ID.
func parseID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s id required", what)
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, args[0])
	}
	return id, nil
}

// parseDueDate validates a due date and returns it in the form sent to
// the server: YYYY-MM-DD for dates, RFC 3339 for date-times.
func parseDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("due date required")
	}
	t, err := service.ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	if len(s) == len("2006-01-02") {
		return t.Format("2006-01-02"), nil
	}
	return t.Format("2006-01-02T15:04:05Z07:00"), nil
}

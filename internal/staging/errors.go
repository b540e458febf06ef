package staging

import (
	"fmt"
	"strings"
)

// --- Error taxonomy ---
//
// ValidationError: illegal state transition or violated precondition.
// NotFoundError:   no staging.json where one was expected.
// ParseError:      staging.json exists but does not parse.
// Plain filesystem failures are wrapped with %w and surface as regular
// errors; conflicts are data ([]FileConflict), never an error.

// ValidationError reports an illegal state transition or a violated
// operation precondition.
type ValidationError struct {
	Current   Status
	Requested Status
	Allowed   []Status
	Reason    string // set for non-transition precondition failures
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("illegal transition %q → %q: %q is terminal", e.Current, e.Requested, e.Current)
	}
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("illegal transition %q → %q: legal next states are %s",
		e.Current, e.Requested, strings.Join(allowed, ", "))
}

// NotFoundError reports a missing staging.json.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no staging session found at %s", e.Path)
}

// ParseError reports a staging.json that exists but is malformed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corrupt staging metadata at %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

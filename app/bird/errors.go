package bird

import "fmt"

// AuthError means the bird CLI could not use its Safari session:
// cookies are missing or expired. User-actionable, never retried
// automatically.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ProcessError is any other non-zero exit from the bird CLI.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("bird exited with code %d: %s", e.ExitCode, e.Stderr)
}

// ParseError means bird exited cleanly but its stdout was not the
// expected JSON shape.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

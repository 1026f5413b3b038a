package sendlog

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailure Status = "failure"
)

var (
	ErrInvalidEntry = errors.New("invalid log entry")
)

// LogEntry is the outcome of one delivery attempt.
// FailureReason is set if and only if Status is StatusFailure.
type LogEntry struct {
	Email         string  `json:"email"`
	Status        Status  `json:"status"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

func Sent(email string) LogEntry {
	return LogEntry{Email: email, Status: StatusSent}
}

func Failure(email, reason string) LogEntry {
	return LogEntry{Email: email, Status: StatusFailure, FailureReason: &reason}
}

func (e LogEntry) WasSuccessful() bool {
	return e.Status == StatusSent
}

func (e LogEntry) Validate() error {
	if e.Email == "" {
		return fmt.Errorf("%w: empty email", ErrInvalidEntry)
	}

	switch e.Status {
	case StatusSent:
		if e.FailureReason != nil {
			return fmt.Errorf("%w: sent entry for %s has a failure reason", ErrInvalidEntry, e.Email)
		}
	case StatusFailure:
		if e.FailureReason == nil {
			return fmt.Errorf("%w: failure entry for %s has no failure reason", ErrInvalidEntry, e.Email)
		}
	default:
		return fmt.Errorf("%w: unknown status %q for %s", ErrInvalidEntry, e.Status, e.Email)
	}

	return nil
}

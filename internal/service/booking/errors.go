package booking

import (
	"errors"
	"fmt"

	"interviewdesk/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	ErrCandidateNotFound   = fmt.Errorf("candidate %w", store.ErrNotFound)
	ErrEventNotFound       = fmt.Errorf("calendar event %w", store.ErrNotFound)
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRecordPersistFailed = errors.New("record persist failed")
)

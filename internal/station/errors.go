package station

import (
	"context"
	"errors"
	"fmt"

	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/pkg/http/client"
)

var (
	// ErrNotFound means no attempt returned a single candidate.
	ErrNotFound = errors.New("no station found within bounds")
	// ErrTooManyAttempts means the search ran out of attempts without
	// reaching a resolvable page.
	ErrTooManyAttempts = errors.New("search did not converge")
)

// LookupError is returned for every failed lookup; Status is the tag
// persisted for the entry.
type LookupError struct {
	Status   models.Status
	Point    models.Point
	Attempts int
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("station lookup at %s failed after %d attempt(s) (%s): %v",
		e.Point, e.Attempts, e.Status, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// StatusOf extracts the lookup status carried by err.
func StatusOf(err error) (models.Status, bool) {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Status, true
	}
	return "", false
}

func statusForError(err error) models.Status {
	if kind, ok := cdo.KindOf(err); ok {
		switch kind {
		case cdo.KindTimeout:
			return models.StatusTimeout
		case cdo.KindInvalidResponse:
			return models.StatusInvalidResponse
		default:
			return models.StatusUnavailable
		}
	}
	if client.IsTimeout(err) {
		return models.StatusTimeout
	}
	return models.StatusUnavailable
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

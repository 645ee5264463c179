package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable marks network or backend failures: the call may succeed
	// later without any change on our side.
	ErrUnavailable = errors.New("remote unavailable")

	// ErrNotFound is returned when an update or delete matched no row.
	ErrNotFound = errors.New("remote record not found")

	// ErrDisabled is returned by the offline backend for every call.
	ErrDisabled = fmt.Errorf("%w: no remote backend configured", ErrUnavailable)
)

// Error is a request the backend understood and rejected.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote rejected request (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote rejected request (%d): %s", e.Status, e.Message)
}

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// IsUnavailable reports whether err is a transient backend failure, including
// a caller timeout.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// IsConflict reports whether the backend rejected a write because the row
// already exists.
func IsConflict(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && (rerr.Status == http.StatusConflict || rerr.Code == "23505")
}

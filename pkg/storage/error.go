package storage

import "errors"

// ErrNilReport is returned when Save is handed a nil report.
var ErrNilReport = errors.New("cannot save nil report")

// NotFoundError is returned when a report doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "report not found"
	}

	return "report not found: " + e.ID
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

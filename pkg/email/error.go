package email

import "fmt"

// ExternalServiceError reports a failed send: the relay was unreachable,
// answered with something unreadable, or said success was false.
type ExternalServiceError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

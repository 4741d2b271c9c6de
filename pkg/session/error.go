package session

// EmptySelectionMessage is the error shown when generating with no metrics.
const EmptySelectionMessage = "Please select at least one metric for your report"

// ValidationError is returned for user input the session cannot act on.
// The session is left unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package services

// ValidationError reports malformed user input. It is caught at the form
// boundary and blocks the operation before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

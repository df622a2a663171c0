package services

// ServiceError hides storage implementation details from callers while
// keeping the cause available for logging via Unwrap. Validation and
// not-found failures are never wrapped into it, so callers can branch on
// error kind instead of matching strings.
type ServiceError struct {
	Message string
	cause   error
}

func newServiceError(message string, cause error) *ServiceError {
	return &ServiceError{Message: message, cause: cause}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

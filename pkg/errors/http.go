package errors

type HTTPError struct {
	Code       int
	Message    string
	StatusCode int
	Details    any
}

func NewHTTPError(code int, message string, statusCode int) *HTTPError {
	return &HTTPError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails returns a copy carrying request-specific details.
func (e HTTPError) WithDetails(details any) *HTTPError {
	e.Details = details
	return &e
}

func (e HTTPError) Error() string {
	return e.Message
}

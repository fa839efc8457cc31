package emailjs

import "fmt"

// HTTPError is a non-200 answer from EmailJS. Message is the response
// text, which EmailJS uses to explain the rejection.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status code, which contact.Classify reads from
// wrapped delivery errors.
func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

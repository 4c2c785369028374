package api

import "fmt"

// APIError is returned when the server answered with a non-2xx status. The
// message is the server's own where the response body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// NetworkError is returned when the request never produced a response:
// no connectivity, DNS failure, timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

package transport

import "fmt"

// TransportError is a failed request: network error, timeout or non-2xx status
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedDataError is a response that arrived but lacks a required field
type MalformedDataError struct {
	Op    string
	Field string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("%s: missing or invalid %s", e.Op, e.Field)
}

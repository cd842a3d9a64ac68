package errors

import "fmt"

// ValidationError reports a caller-fixable problem with a request: a missing
// or malformed field, or an unsupported method/operation combination. It is
// raised before anything touches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IntegrityError reports a hash mismatch on an inbound message. The payload
// must be treated as tampered; none of its fields may be trusted.
type IntegrityError struct {
	Expected string
	Supplied string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("hash %q does not validate against computed %q; message may have been tampered with",
		e.Supplied, e.Expected)
}

// NewIntegrityError creates a new integrity error.
func NewIntegrityError(expected, supplied string) *IntegrityError {
	return &IntegrityError{Expected: expected, Supplied: supplied}
}

// TransportError wraps a network or HTTP-level failure. The adapter never
// classifies a response it did not receive.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError creates a new transport error.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

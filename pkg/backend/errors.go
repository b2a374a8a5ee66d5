package backend

import (
	"errors"
	"fmt"
)

// TransportError is returned when a call could not reach the backend or
// the backend answered with a non-2xx HTTP status.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is returned when a payload could not be parsed.
type ProtocolError struct {
	Method  string
	Payload string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: malformed payload: %v", e.Method, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DomainError is a success=false answer. Message is shown to the user
// verbatim.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return "request failed"
	}
	return e.Message
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsProtocol reports whether err is a ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// Describe returns user-facing text for a failed call. Domain errors keep
// their message; protocol errors get a generic fallback.
func Describe(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if IsProtocol(err) {
		return fallback
	}
	var te *TransportError
	if errors.As(err, &te) && te.Err != nil {
		return te.Err.Error()
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}

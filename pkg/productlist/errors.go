package productlist

import (
	"errors"
	"fmt"
)

// InterfaceErrorMessage is shown to the user and carried by InterfaceError.
const InterfaceErrorMessage = "product interface error"

var (
	// ErrInterface matches every InterfaceError via errors.Is.
	ErrInterface = errors.New(InterfaceErrorMessage)
	// ErrInvalidQuery is returned when the session parameters fail validation.
	ErrInvalidQuery = errors.New("invalid product list query")
)

// InterfaceError reports a response envelope whose state is not 0.
// Every state code maps to the same message. MissingState marks an envelope
// with no state at all, in which case State is meaningless.
type InterfaceError struct {
	State         int
	MissingState  bool
	ServerMessage string
}

func (e *InterfaceError) Error() string { return InterfaceErrorMessage }

func (e *InterfaceError) Unwrap() error { return ErrInterface }

// TransportError reports a failed round trip: network, HTTP status or body decoding.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

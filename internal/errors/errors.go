// Package errors defines the checkout error taxonomy.
//
// Every structured error unwraps to one of the sentinels below so callers can
// classify failures with errors.Is and inspect details with errors.As.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrUnknownTicketType = errors.New("unknown ticket type")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrPriceMismatch     = errors.New("price mismatch")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrGateway           = errors.New("payment gateway error")

	ErrEventNotFound      = errors.New("event not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrForbidden          = errors.New("not allowed to modify this resource")
	ErrEventHasSales      = errors.New("event has sold or held tickets")
	ErrPaymentPending     = errors.New("payment not captured yet")
	ErrSettlementConflict = errors.New("settlement aborted after repeated write conflicts")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type UnknownTicketTypeError struct {
	EventID      string
	TicketTypeID string
}

func (e *UnknownTicketTypeError) Error() string {
	return fmt.Sprintf("ticket type %q does not belong to event %q", e.TicketTypeID, e.EventID)
}

func (e *UnknownTicketTypeError) Unwrap() error { return ErrUnknownTicketType }

type InvalidQuantityError struct {
	TicketTypeID string
	Quantity     int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for ticket type %q must be positive, got %d", e.TicketTypeID, e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// PriceMismatchError amounts are minor units.
type PriceMismatchError struct {
	Submitted  int64
	Calculated int64
	Tolerance  int64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("submitted total %d differs from calculated total %d by more than %d",
		e.Submitted, e.Calculated, e.Tolerance)
}

func (e *PriceMismatchError) Unwrap() error { return ErrPriceMismatch }

type CapacityExceededError struct {
	TicketTypeID string
	Name         string
	Requested    int
	Available    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("ticket type %q (%s): requested %d, available %d",
		e.TicketTypeID, e.Name, e.Requested, e.Available)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// SignatureError only carries what was received, never what was expected.
type SignatureError struct {
	ReceivedLength int
	ReceivedPrefix string
}

func NewSignatureError(received string) *SignatureError {
	prefix := received
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return &SignatureError{ReceivedLength: len(received), ReceivedPrefix: prefix}
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature mismatch (received %d chars, prefix %q)", e.ReceivedLength, e.ReceivedPrefix)
}

func (e *SignatureError) Unwrap() error { return ErrInvalidSignature }

type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() []error { return []error{ErrGateway, e.Err} }

var terminal = []error{
	ErrValidation,
	ErrUnknownTicketType,
	ErrInvalidQuantity,
	ErrPriceMismatch,
	ErrCapacityExceeded,
	ErrInvalidSignature,
	ErrEventNotFound,
	ErrForbidden,
}

// IsTerminal reports whether retrying the same request can never succeed.
func IsTerminal(err error) bool {
	for _, target := range terminal {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

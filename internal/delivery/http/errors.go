package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	pkgErrors "github.com/vogiaan1904/ticketbottle-checkout/pkg/errors"
)

var (
	errInvalidBody        = pkgErrors.NewHTTPError(100, "Invalid request body", http.StatusBadRequest)
	errValidation         = pkgErrors.NewHTTPError(101, "Validation failed", http.StatusBadRequest)
	errUnknownTicketType  = pkgErrors.NewHTTPError(102, "Unknown ticket type", http.StatusBadRequest)
	errInvalidQuantity    = pkgErrors.NewHTTPError(103, "Invalid quantity", http.StatusBadRequest)
	errPriceMismatch      = pkgErrors.NewHTTPError(104, "Price mismatch", http.StatusConflict)
	errCapacityExceeded   = pkgErrors.NewHTTPError(105, "Not enough tickets available", http.StatusConflict)
	errInvalidSignature   = pkgErrors.NewHTTPError(106, "Invalid signature", http.StatusBadRequest)
	errEventNotFound      = pkgErrors.NewHTTPError(107, "Event not found", http.StatusNotFound)
	errOrderNotFound      = pkgErrors.NewHTTPError(108, "Order not found", http.StatusNotFound)
	errForbidden          = pkgErrors.NewHTTPError(109, "Not allowed to modify this event", http.StatusForbidden)
	errPaymentPending     = pkgErrors.NewHTTPError(110, "Payment not captured yet", http.StatusConflict)
	errGateway            = pkgErrors.NewHTTPError(111, "Payment gateway unavailable", http.StatusBadGateway)
	errSettlementConflict = pkgErrors.NewHTTPError(112, "Event is busy, try again", http.StatusServiceUnavailable)
	errEventHasSales      = pkgErrors.NewHTTPError(113, "Event has sold tickets and cannot be deleted", http.StatusConflict)

	errMissingToken       = pkgErrors.NewHTTPError(120, "Missing checkout token", http.StatusUnauthorized)
	errInvalidToken       = pkgErrors.NewHTTPError(121, "Invalid checkout token", http.StatusUnauthorized)
	errTokenEventMismatch = pkgErrors.NewHTTPError(122, "Checkout token is for another event", http.StatusForbidden)
	errNotOrderOwner      = pkgErrors.NewHTTPError(123, "Order belongs to another buyer", http.StatusForbidden)
	errNotEventOrganizer  = pkgErrors.NewHTTPError(124, "Event belongs to another organizer", http.StatusForbidden)
)

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func fieldErrors(verrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, len(verrs))
	for i, fe := range verrs {
		out[i] = fieldError{Field: fe.Namespace(), Reason: fe.Tag()}
	}
	return out
}

// mapHTTPError translates domain errors into response errors. known is false
// for errors that have no client-facing meaning.
func mapHTTPError(err error) (mapped error, known bool) {
	var (
		httpErr *pkgErrors.HTTPError
		ve      *errs.ValidationError
		ute     *errs.UnknownTicketTypeError
		iqe     *errs.InvalidQuantityError
		pme     *errs.PriceMismatchError
		cee     *errs.CapacityExceededError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr, true
	case errors.As(err, &ve):
		return errValidation.WithDetails([]fieldError{{Field: ve.Field, Reason: ve.Reason}}), true
	case errors.As(err, &ute):
		return errUnknownTicketType.WithDetails(map[string]string{"ticket_type_id": ute.TicketTypeID}), true
	case errors.As(err, &iqe):
		return errInvalidQuantity.WithDetails(map[string]any{"ticket_type_id": iqe.TicketTypeID, "quantity": iqe.Quantity}), true
	case errors.As(err, &pme):
		return errPriceMismatch.WithDetails(map[string]int64{
			"submitted":  pme.Submitted,
			"calculated": pme.Calculated,
			"tolerance":  pme.Tolerance,
		}), true
	case errors.As(err, &cee):
		return errCapacityExceeded.WithDetails(map[string]any{
			"ticket_type_id": cee.TicketTypeID,
			"name":           cee.Name,
			"requested":      cee.Requested,
			"available":      cee.Available,
		}), true
	case errors.Is(err, errs.ErrInvalidSignature):
		return errInvalidSignature, true
	case errors.Is(err, errs.ErrValidation):
		return errValidation, true
	case errors.Is(err, errs.ErrEventNotFound):
		return errEventNotFound, true
	case errors.Is(err, errs.ErrOrderNotFound):
		return errOrderNotFound, true
	case errors.Is(err, errs.ErrForbidden):
		return errForbidden, true
	case errors.Is(err, errs.ErrEventHasSales):
		return errEventHasSales, true
	case errors.Is(err, errs.ErrPaymentPending):
		return errPaymentPending, true
	case errors.Is(err, errs.ErrGateway):
		return errGateway, true
	case errors.Is(err, errs.ErrSettlementConflict):
		return errSettlementConflict, true
	default:
		return err, false
	}
}

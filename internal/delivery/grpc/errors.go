package grpc

import (
	"errors"

	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	pkgErrors "github.com/vogiaan1904/ticketbottle-checkout/pkg/errors"
	"google.golang.org/grpc/codes"
)

var (
	errUnknownTicketType  = pkgErrors.NewGRPCError("CHK002", "Unknown ticket type", codes.InvalidArgument)
	errInvalidQuantity    = pkgErrors.NewGRPCError("CHK003", "Invalid quantity", codes.InvalidArgument)
	errPriceMismatch      = pkgErrors.NewGRPCError("CHK004", "Price mismatch", codes.FailedPrecondition)
	errCapacityExceeded   = pkgErrors.NewGRPCError("CHK005", "Not enough tickets available", codes.ResourceExhausted)
	errEventNotFound      = pkgErrors.NewGRPCError("CHK006", "Event not found", codes.NotFound)
	errOrderNotFound      = pkgErrors.NewGRPCError("CHK007", "Order not found", codes.NotFound)
	errGateway            = pkgErrors.NewGRPCError("CHK008", "Payment gateway unavailable", codes.Unavailable)
	errSettlementConflict = pkgErrors.NewGRPCError("CHK009", "Event is busy, try again", codes.Aborted)
)

func mapGRPCError(err error) error {
	var (
		ve  *errs.ValidationError
		cee *errs.CapacityExceededError
	)

	switch {
	case errors.As(err, &ve):
		return pkgErrors.NewGRPCError("CHK001", ve.Error(), codes.InvalidArgument)
	case errors.As(err, &cee):
		return pkgErrors.NewGRPCError("CHK005", cee.Error(), codes.ResourceExhausted)
	case errors.Is(err, errs.ErrUnknownTicketType):
		return errUnknownTicketType
	case errors.Is(err, errs.ErrInvalidQuantity):
		return errInvalidQuantity
	case errors.Is(err, errs.ErrPriceMismatch):
		return errPriceMismatch
	case errors.Is(err, errs.ErrCapacityExceeded):
		return errCapacityExceeded
	case errors.Is(err, errs.ErrEventNotFound):
		return errEventNotFound
	case errors.Is(err, errs.ErrOrderNotFound):
		return errOrderNotFound
	case errors.Is(err, errs.ErrGateway):
		return errGateway
	case errors.Is(err, errs.ErrSettlementConflict):
		return errSettlementConflict
	default:
		return err
	}
}

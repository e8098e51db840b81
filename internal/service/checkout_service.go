package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/metrics"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/pricing"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

type CheckoutConfig struct {
	Currency       string
	PriceTolerance int64
}

type checkoutService struct {
	evRepo repo.EventRepository
	gw     PaymentGateway
	conf   CheckoutConfig
	l      logger.Logger
}

func NewCheckoutService(
	evRepo repo.EventRepository,
	gw PaymentGateway,
	conf CheckoutConfig,
	l logger.Logger,
) CheckoutService {
	return &checkoutService{
		evRepo: evRepo,
		gw:     gw,
		conf:   conf,
		l:      l,
	}
}

func (s *checkoutService) ValidateCart(ctx context.Context, eventID string, lines []models.CartLine, submittedTotal *int64) (*models.PricedCart, error) {
	if err := validateID("eventId", eventID); err != nil {
		return nil, err
	}

	ev, err := s.evRepo.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrEventNotFound
		}
		s.l.Errorf(ctx, "service.checkoutService.ValidateCart: %v", err)
		return nil, err
	}

	pc, err := pricing.PriceCart(ev, lines, submittedTotal, s.conf.PriceTolerance)
	if err != nil {
		recordRejection(err)
		s.l.Warnf(ctx, "service.checkoutService.ValidateCart: event_id=%s: %v", eventID, err)
		return nil, err
	}

	return pc, nil
}

// CreatePaymentIntent prices the cart and opens a gateway order for it.
// Nothing is reserved: inventory is only committed at settlement.
func (s *checkoutService) CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntentOutput, error) {
	if err := validateID("buyerId", in.BuyerID); err != nil {
		return nil, err
	}

	pc, err := s.ValidateCart(ctx, in.EventID, in.Lines, in.SubmittedTotal)
	if err != nil {
		return nil, err
	}

	if pc.CalculatedTotal <= 0 {
		return nil, errs.NewValidationError("cart", "free tickets are registered without payment")
	}

	notes, err := encodeNotes(pc.EventID, in.BuyerID, in.SessionID, pc, in.Attendee)
	if err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()[:32]
	o, err := s.gw.CreateOrder(ctx, pc.CalculatedTotal, s.conf.Currency, receipt, notes)
	if err != nil {
		metrics.GatewayOrders.WithLabelValues("error").Inc()
		s.l.Errorf(ctx, "service.checkoutService.CreatePaymentIntent: %v", err)
		return nil, gatewayError("create order", err)
	}
	metrics.GatewayOrders.WithLabelValues("created").Inc()

	s.l.Infof(ctx, "Payment intent created: gateway_order_id=%s event_id=%s buyer_id=%s amount=%d",
		o.ID, pc.EventID, in.BuyerID, o.Amount)

	return &PaymentIntentOutput{
		GatewayOrderID: o.ID,
		Amount:         o.Amount,
		Currency:       o.Currency,
		KeyID:          s.gw.KeyID(),
		Cart:           pc,
	}, nil
}

func gatewayError(op string, err error) error {
	ge := &errs.GatewayError{Op: op, Err: err}
	var apiErr *razorpay.APIError
	if errors.As(err, &apiErr) {
		ge.StatusCode = apiErr.StatusCode
	}
	return ge
}

func recordRejection(err error) {
	var ce *errs.CapacityExceededError
	if errors.As(err, &ce) {
		metrics.CapacityRejections.WithLabelValues(ce.TicketTypeID).Inc()
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka/producer"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/inventory"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/metrics"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/pricing"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

// Upper bound on client-chosen free registration keys.
const maxIdempotencyKeyLength = 64

const (
	SourceWebhook = "webhook"
	SourceKafka   = "kafka"
	SourceConfirm = "confirm"
)

type SettlementConfig struct {
	Currency       string
	PriceTolerance int64
	WebhookSecret  string
	KeySecret      string
}

type settlementService struct {
	orderRepo repo.OrderRepository
	gw        PaymentGateway
	prod      producer.Producer
	conf      SettlementConfig
	l         logger.Logger
}

// NewSettlementService builds the settlement service. prod may be nil when
// Kafka is disabled.
func NewSettlementService(
	orderRepo repo.OrderRepository,
	gw PaymentGateway,
	prod producer.Producer,
	conf SettlementConfig,
	l logger.Logger,
) SettlementService {
	return &settlementService{
		orderRepo: orderRepo,
		gw:        gw,
		prod:      prod,
		conf:      conf,
		l:         l,
	}
}

func (s *settlementService) SettleOrder(ctx context.Context, in SettleOrderInput) (*models.Order, error) {
	if in.PaymentID == "" {
		return nil, errs.NewValidationError("paymentId", "required")
	}
	if err := validateID("eventId", in.EventID); err != nil {
		return nil, err
	}
	if err := validateID("buyerId", in.BuyerID); err != nil {
		return nil, err
	}
	if in.Cart == nil {
		return nil, errs.NewValidationError("cart", "required")
	}

	return s.settle(ctx, in, func(ev *models.Event) (*models.PricedCart, error) {
		return pricing.PriceSettlement(ev, in.Cart, in.Amount, s.conf.PriceTolerance)
	})
}

// RegisterFreeTickets issues an order for a cart of free ticket types. It
// commits inventory in the same transaction as paid settlement, keyed by the
// caller's idempotency key instead of a gateway payment id.
func (s *settlementService) RegisterFreeTickets(ctx context.Context, in FreeRegistrationInput) (*models.Order, error) {
	if err := validateID("eventId", in.EventID); err != nil {
		return nil, err
	}
	if err := validateID("buyerId", in.BuyerID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, errs.NewValidationError("lines", "at least one line is required")
	}
	if len(in.IdempotencyKey) > maxIdempotencyKeyLength {
		return nil, errs.NewValidationError("idempotencyKey", fmt.Sprintf("longer than %d characters", maxIdempotencyKeyLength))
	}

	nonce := in.IdempotencyKey
	if nonce == "" {
		nonce = uuid.NewString()
	}

	return s.settle(ctx, SettleOrderInput{
		PaymentID: freeRegistrationKey(in.BuyerID, in.EventID, nonce),
		EventID:   in.EventID,
		BuyerID:   in.BuyerID,
		SessionID: in.SessionID,
		Cart:      models.WellFormedCart{Lines: in.Lines},
		Attendee:  in.Attendee,
	}, func(ev *models.Event) (*models.PricedCart, error) {
		pc, err := pricing.PriceCart(ev, in.Lines, nil, 0)
		if err != nil {
			return nil, err
		}
		if pc.CalculatedTotal != 0 {
			return nil, errs.NewValidationError("lines", "contains ticket types that require payment")
		}
		return pc, nil
	})
}

func freeRegistrationKey(buyerID, eventID, nonce string) string {
	return fmt.Sprintf("free:%s:%s:%s", buyerID, eventID, nonce)
}

// settle prices the cart against the current event and commits the sale and
// the order together, at most once per in.PaymentID.
func (s *settlementService) settle(ctx context.Context, in SettleOrderInput, price func(ev *models.Event) (*models.PricedCart, error)) (*models.Order, error) {
	start := time.Now()
	defer metrics.ObserveSettlement(start)

	currency := in.Currency
	if currency == "" {
		currency = s.conf.Currency
	}

	o, created, err := s.orderRepo.Settle(ctx, in.EventID, in.PaymentID, func(ev *models.Event) (*models.Order, error) {
		pc, err := price(ev)
		if err != nil {
			return nil, err
		}
		if err := inventory.CommitSales(ev, pc.Lines); err != nil {
			return nil, err
		}

		return &models.Order{
			ID:          uuid.NewString(),
			EventID:     ev.ID,
			BuyerID:     in.BuyerID,
			SessionID:   in.SessionID,
			Lines:       pc.Lines,
			TotalAmount: pc.CalculatedTotal,
			Currency:    currency,
			Status:      models.OrderStatusCompleted,
			Attendee:    in.Attendee,
			CreatedAt:   time.Now(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = errs.ErrEventNotFound
		}
		recordRejection(err)

		if errs.IsTerminal(err) {
			metrics.Settlements.WithLabelValues(metrics.OutcomeRejected).Inc()
			s.l.Warnf(ctx, "service.settlementService.settle: payment_id=%s: %v", in.PaymentID, err)
		} else {
			metrics.Settlements.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.l.Errorf(ctx, "service.settlementService.settle: payment_id=%s: %v", in.PaymentID, err)
		}
		return nil, err
	}

	if !created {
		metrics.Settlements.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		s.l.Infof(ctx, "Payment already settled: payment_id=%s order_id=%s", in.PaymentID, o.ID)
		return o, nil
	}

	metrics.Settlements.WithLabelValues(metrics.OutcomeSettled).Inc()
	s.l.Infof(ctx, "Order settled: order_id=%s payment_id=%s event_id=%s tickets=%d total=%d",
		o.ID, o.PaymentID, o.EventID, o.TicketCount(), o.TotalAmount)

	s.publishOrderCompleted(ctx, o)

	return o, nil
}

func (s *settlementService) HandlePaymentCallback(ctx context.Context, rawBody []byte, signature string) (*CallbackResult, error) {
	if !razorpay.VerifyWebhookSignature(rawBody, signature, s.conf.WebhookSecret) {
		metrics.PaymentCallbacks.WithLabelValues(SourceWebhook, metrics.OutcomeInvalid).Inc()
		err := errs.NewSignatureError(signature)
		s.l.Warnf(ctx, "service.settlementService.HandlePaymentCallback: %v", err)
		return nil, err
	}

	var evt razorpay.WebhookEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return s.fail(ctx, SourceWebhook, CapturedPayment{}, "", "", errs.NewValidationError("body", "malformed webhook payload")), nil
	}

	if evt.Event != razorpay.EventPaymentCaptured {
		metrics.PaymentCallbacks.WithLabelValues(SourceWebhook, metrics.OutcomeIgnored).Inc()
		s.l.Debugf(ctx, "Ignoring webhook event %q", evt.Event)
		return &CallbackResult{Acknowledged: true, Status: CallbackStatusIgnored}, nil
	}

	p, ok := evt.PaymentEntity()
	if !ok {
		return s.fail(ctx, SourceWebhook, CapturedPayment{}, "", "", errs.NewValidationError("payload.payment", "missing")), nil
	}

	return s.HandleCapturedPayment(ctx, SourceWebhook, CapturedPayment{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Email:     p.Email,
		Contact:   p.Contact,
		Notes:     p.Notes,
	})
}

// HandleCapturedPayment settles an authenticated capture. Validation-class
// failures are acknowledged so the sender stops redelivering; any other
// error is returned so it can retry.
func (s *settlementService) HandleCapturedPayment(ctx context.Context, source string, p CapturedPayment) (*CallbackResult, error) {
	ctx = s.l.With(ctx, "payment_id", p.PaymentID, "source", source)

	if p.PaymentID == "" {
		return s.fail(ctx, source, p, "", "", errs.NewValidationError("paymentId", "required")), nil
	}

	notes, err := parsePaymentNotes(p.Notes, p.Amount)
	if err != nil {
		return s.fail(ctx, source, p, p.Notes[noteEventID], p.Notes[noteBuyerID], err), nil
	}

	att := notes.Attendee
	if att.Email == "" {
		att.Email = p.Email
	}
	if att.Phone == "" {
		att.Phone = p.Contact
	}

	o, err := s.SettleOrder(ctx, SettleOrderInput{
		PaymentID: p.PaymentID,
		EventID:   notes.EventID,
		BuyerID:   notes.BuyerID,
		SessionID: notes.SessionID,
		Cart:      notes.Cart,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Attendee:  att,
	})
	if err != nil {
		if errs.IsTerminal(err) {
			return s.fail(ctx, source, p, notes.EventID, notes.BuyerID, err), nil
		}
		metrics.PaymentCallbacks.WithLabelValues(source, metrics.OutcomeFailed).Inc()
		return nil, err
	}

	metrics.PaymentCallbacks.WithLabelValues(source, metrics.OutcomeSettled).Inc()
	return &CallbackResult{
		Acknowledged: true,
		Status:       CallbackStatusSettled,
		PaymentID:    p.PaymentID,
		Order:        o,
	}, nil
}

// ConfirmPayment settles from the browser's post-checkout redirect. The
// payment is re-read from the gateway so only the signature comes from the
// client.
func (s *settlementService) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*CallbackResult, error) {
	if in.GatewayOrderID == "" || in.PaymentID == "" {
		return nil, errs.NewValidationError("payment", "order id and payment id are required")
	}
	if !razorpay.VerifyPaymentSignature(in.GatewayOrderID, in.PaymentID, in.Signature, s.conf.KeySecret) {
		metrics.PaymentCallbacks.WithLabelValues(SourceConfirm, metrics.OutcomeInvalid).Inc()
		err := errs.NewSignatureError(in.Signature)
		s.l.Warnf(ctx, "service.settlementService.ConfirmPayment: %v", err)
		return nil, err
	}

	p, err := s.gw.FetchPayment(ctx, in.PaymentID)
	if err != nil {
		s.l.Errorf(ctx, "service.settlementService.ConfirmPayment: %v", err)
		return nil, gatewayError("fetch payment", err)
	}

	if p.OrderID != in.GatewayOrderID {
		return nil, errs.NewValidationError("paymentId", "does not belong to the given order")
	}
	if in.BuyerID != "" && p.Notes[noteBuyerID] != in.BuyerID {
		return nil, errs.ErrForbidden
	}

	switch p.Status {
	case razorpay.PaymentStatusCaptured:
	case razorpay.PaymentStatusAuthorized, razorpay.PaymentStatusCreated:
		return nil, errs.ErrPaymentPending
	default:
		return nil, errs.NewValidationError("payment", fmt.Sprintf("status is %s", p.Status))
	}

	return s.HandleCapturedPayment(ctx, SourceConfirm, CapturedPayment{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Email:     p.Email,
		Contact:   p.Contact,
		Notes:     p.Notes,
	})
}

// fail acknowledges a capture that can never settle and raises it for
// manual follow-up.
func (s *settlementService) fail(ctx context.Context, source string, p CapturedPayment, eventID, buyerID string, cause error) *CallbackResult {
	metrics.PaymentCallbacks.WithLabelValues(source, metrics.OutcomeFailed).Inc()
	s.l.Errorf(ctx, "service.settlementService: captured payment needs follow-up: payment_id=%s: %v", p.PaymentID, cause)

	if s.prod != nil {
		currency := p.Currency
		if currency == "" {
			currency = s.conf.Currency
		}
		if err := s.prod.PublishSettlementFailed(ctx, kafka.SettlementFailedEvent{
			PaymentID: p.PaymentID,
			EventID:   eventID,
			BuyerID:   buyerID,
			SessionID: p.Notes[noteSessionID],
			Amount:    p.Amount,
			Currency:  currency,
			Reason:    cause.Error(),
		}); err != nil {
			s.l.Errorf(ctx, "service.settlementService.fail.Publish: %v", err)
		}
	}

	return &CallbackResult{
		Acknowledged: true,
		Status:       CallbackStatusFailed,
		PaymentID:    p.PaymentID,
		Message: fmt.Sprintf(
			"Payment %s was received but the order could not be completed (%v). Please contact support with this payment id.",
			p.PaymentID, cause),
	}
}

func (s *settlementService) publishOrderCompleted(ctx context.Context, o *models.Order) {
	if s.prod == nil {
		return
	}

	items := make([]kafka.OrderItem, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = kafka.OrderItem{
			TicketTypeID: l.TicketTypeID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			Price:        l.Price,
		}
	}

	if err := s.prod.PublishOrderCompleted(ctx, kafka.OrderCompletedEvent{
		OrderID:     o.ID,
		PaymentID:   o.PaymentID,
		EventID:     o.EventID,
		BuyerID:     o.BuyerID,
		SessionID:   o.SessionID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		Email:       o.Attendee.Email,
		CompletedAt: o.CreatedAt,
	}); err != nil {
		s.l.Errorf(ctx, "service.settlementService.publishOrderCompleted: %v", err)
	}
}

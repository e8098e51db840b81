package service

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, in EventInput) (*EventOutput, error)
	UpdateEvent(ctx context.Context, organizerID, eventID string, in EventInput) (*EventOutput, error)
	GetEvent(ctx context.Context, eventID string) (*EventOutput, error)
	ListEvents(ctx context.Context, in ListEventsInput) (*ListEventsOutput, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string, page, limit int) (*ListEventsOutput, error)
	ListRelatedEvents(ctx context.Context, categoryID, excludeEventID string, page, limit int) (*ListEventsOutput, error)
	DeleteEvent(ctx context.Context, organizerID, eventID string) error
}

type CheckoutService interface {
	ValidateCart(ctx context.Context, eventID string, lines []models.CartLine, submittedTotal *int64) (*models.PricedCart, error)
	CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntentOutput, error)
}

type SettlementService interface {
	// SettleOrder is idempotent on PaymentID.
	SettleOrder(ctx context.Context, in SettleOrderInput) (*models.Order, error)
	HandlePaymentCallback(ctx context.Context, rawBody []byte, signature string) (*CallbackResult, error)
	HandleCapturedPayment(ctx context.Context, source string, p CapturedPayment) (*CallbackResult, error)
	ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*CallbackResult, error)
	RegisterFreeTickets(ctx context.Context, in FreeRegistrationInput) (*models.Order, error)
}

type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	ListOrdersByEvent(ctx context.Context, eventID, search string) ([]*models.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string, page, limit int) (*ListOrdersOutput, error)
}

// PaymentGateway is the subset of the gateway client checkout relies on.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes razorpay.Notes) (*razorpay.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

package http

import (
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/money"
)

type validateCartRequest struct {
	Lines []models.CartLine `json:"lines" validate:"required,min=1,dive"`
	// SubmittedTotal is a major-unit decimal string, e.g. "1500.00".
	SubmittedTotal *string `json:"submitted_total,omitempty"`
}

type checkoutRequest struct {
	EventID        string            `json:"event_id" validate:"required,uuid"`
	Lines          []models.CartLine `json:"lines" validate:"required,min=1,dive"`
	SubmittedTotal *string           `json:"submitted_total,omitempty"`
	Attendee       models.Attendee   `json:"attendee"`
}

type registerFreeRequest struct {
	Lines    []models.CartLine `json:"lines" validate:"required,min=1,dive"`
	Attendee models.Attendee   `json:"attendee"`
}

type confirmPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required"`
	PaymentID      string `json:"razorpay_payment_id" validate:"required"`
	Signature      string `json:"razorpay_signature" validate:"required"`
}

type pricedCartResponse struct {
	*models.PricedCart
	Currency     string `json:"currency"`
	DisplayTotal string `json:"display_total"`
}

func newPricedCartResponse(pc *models.PricedCart, currency string) pricedCartResponse {
	return pricedCartResponse{
		PricedCart:   pc,
		Currency:     currency,
		DisplayTotal: money.Format(pc.CalculatedTotal, currency),
	}
}

type paymentIntentResponse struct {
	*service.PaymentIntentOutput
	DisplayAmount string `json:"display_amount"`
}

func newPaymentIntentResponse(out *service.PaymentIntentOutput) paymentIntentResponse {
	return paymentIntentResponse{
		PaymentIntentOutput: out,
		DisplayAmount:       money.Format(out.Amount, out.Currency),
	}
}

package service

import (
	"strings"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

type TicketTypeInput struct {
	// ID is empty for new ticket types.
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type EventInput struct {
	Title         string            `json:"title" validate:"required"`
	Description   string            `json:"description"`
	Location      string            `json:"location"`
	ImageURL      string            `json:"image_url"`
	URL           string            `json:"url"`
	CategoryID    string            `json:"category_id"`
	StartDateTime time.Time         `json:"start_date_time" validate:"required"`
	EndDateTime   time.Time         `json:"end_date_time" validate:"required"`
	TicketTypes   []TicketTypeInput `json:"ticket_types" validate:"required,min=1,dive"`
}

type TicketTypeOutput struct {
	models.TicketType
	Available int `json:"available"`
}

type EventOutput struct {
	ID            string             `json:"id"`
	OrganizerID   string             `json:"organizer_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Location      string             `json:"location,omitempty"`
	ImageURL      string             `json:"image_url,omitempty"`
	URL           string             `json:"url,omitempty"`
	CategoryID    string             `json:"category_id,omitempty"`
	StartDateTime time.Time          `json:"start_date_time"`
	EndDateTime   time.Time          `json:"end_date_time"`
	IsFree        bool               `json:"is_free"`
	TicketTypes   []TicketTypeOutput `json:"ticket_types"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type ListEventsInput struct {
	Query      string
	Location   string
	CategoryID string
	FreeOnly   bool
	Page       int
	Limit      int
}

// filtered reports whether matching needs the event documents rather than
// an index alone.
func (in ListEventsInput) filtered() bool {
	return in.FreeOnly || strings.TrimSpace(in.Query) != "" || strings.TrimSpace(in.Location) != ""
}

type ListEventsOutput struct {
	Data       []*EventOutput `json:"data"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

type ListOrdersOutput struct {
	Data       []*models.Order `json:"data"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}

type CreatePaymentIntentInput struct {
	EventID string
	BuyerID string
	// SessionID is the waitroom session the buyer was admitted with, if any.
	SessionID      string
	Lines          []models.CartLine
	SubmittedTotal *int64
	Attendee       models.Attendee
}

type PaymentIntentOutput struct {
	GatewayOrderID string             `json:"gateway_order_id"`
	Amount         int64              `json:"amount"`
	Currency       string             `json:"currency"`
	KeyID          string             `json:"key_id"`
	Cart           *models.PricedCart `json:"cart"`
}

type SettleOrderInput struct {
	PaymentID string
	EventID   string
	BuyerID   string
	SessionID string
	Cart      models.Cart
	// Amount is what the gateway captured, in minor units.
	Amount   int64
	Currency string
	Attendee models.Attendee
}

type FreeRegistrationInput struct {
	EventID   string
	BuyerID   string
	SessionID string
	Lines     []models.CartLine
	Attendee  models.Attendee
	// IdempotencyKey makes retries of the same registration return the same
	// order. A fresh key is generated when empty.
	IdempotencyKey string
}

// CapturedPayment is a gateway payment whose capture has been authenticated.
type CapturedPayment struct {
	PaymentID string
	Amount    int64
	Currency  string
	Email     string
	Contact   string
	Notes     map[string]string
}

type ConfirmPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	BuyerID        string
}

const (
	CallbackStatusSettled = "settled"
	CallbackStatusIgnored = "ignored"
	CallbackStatusFailed  = "failed"
)

// CallbackResult tells the caller whether the payment is permanently handled.
type CallbackResult struct {
	Acknowledged bool          `json:"acknowledged"`
	Status       string        `json:"status"`
	PaymentID    string        `json:"payment_id,omitempty"`
	Order        *models.Order `json:"order,omitempty"`
	Message      string        `json:"message,omitempty"`
}

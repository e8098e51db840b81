package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine snapshots the ticket type name and unit price at settlement.
type OrderLine struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
}

func (l OrderLine) Subtotal() int64 {
	return int64(l.Quantity) * l.Price
}

type Attendee struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order is keyed by ID and uniquely by PaymentID.
type Order struct {
	ID          string      `json:"id"`
	PaymentID   string      `json:"payment_id"`
	EventID     string      `json:"event_id"`
	BuyerID     string      `json:"buyer_id"`
	SessionID   string      `json:"session_id,omitempty"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount int64       `json:"total_amount"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	Attendee    Attendee    `json:"attendee"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (o *Order) TicketCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

package kafka

import "time"

// Events published BY Checkout Service

type OrderItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
}

type OrderCompletedEvent struct {
	OrderID     string      `json:"order_id"`
	PaymentID   string      `json:"payment_id"`
	EventID     string      `json:"event_id"`
	BuyerID     string      `json:"buyer_id"`
	SessionID   string      `json:"session_id,omitempty"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"total_amount"`
	Currency    string      `json:"currency"`
	Email       string      `json:"email,omitempty"`
	CompletedAt time.Time   `json:"completed_at"`
	Timestamp   time.Time   `json:"timestamp"`
}

// SettlementFailedEvent is raised when money was captured but no order could
// be recorded, so support can follow up with the buyer.
type SettlementFailedEvent struct {
	PaymentID string    `json:"payment_id"`
	EventID   string    `json:"event_id,omitempty"`
	BuyerID   string    `json:"buyer_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Events consumed BY Checkout Service

// PaymentCapturedEvent is relayed by the payments edge after it has
// authenticated the gateway callback.
type PaymentCapturedEvent struct {
	PaymentID string            `json:"payment_id"`
	OrderID   string            `json:"order_id,omitempty"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Email     string            `json:"email,omitempty"`
	Contact   string            `json:"contact,omitempty"`
	Notes     map[string]string `json:"notes"`
	Timestamp time.Time         `json:"timestamp"`
}

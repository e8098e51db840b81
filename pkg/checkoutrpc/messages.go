// Package checkoutrpc defines the CheckoutService gRPC contract. Messages are
// carried as JSON through a registered codec.
package checkoutrpc

type CartLine struct {
	TicketTypeId string `json:"ticket_type_id"`
	Quantity     int32  `json:"quantity"`
}

type PricedLine struct {
	TicketTypeId string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int32  `json:"quantity"`
	Price        int64  `json:"price"`
	Subtotal     int64  `json:"subtotal"`
}

type ValidateCartRequest struct {
	EventId string      `json:"event_id"`
	Lines   []*CartLine `json:"lines"`
	// SubmittedTotal is in minor units; omitted when the client has no total.
	SubmittedTotal *int64 `json:"submitted_total,omitempty"`
}

type ValidateCartResponse struct {
	EventId         string        `json:"event_id"`
	Lines           []*PricedLine `json:"lines"`
	CalculatedTotal int64         `json:"calculated_total"`
}

type Attendee struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CreatePaymentIntentRequest struct {
	EventId        string      `json:"event_id"`
	BuyerId        string      `json:"buyer_id"`
	SessionId      string      `json:"session_id,omitempty"`
	Lines          []*CartLine `json:"lines"`
	SubmittedTotal *int64      `json:"submitted_total,omitempty"`
	Attendee       *Attendee   `json:"attendee,omitempty"`
}

type CreatePaymentIntentResponse struct {
	GatewayOrderId string        `json:"gateway_order_id"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	KeyId          string        `json:"key_id"`
	Lines          []*PricedLine `json:"lines"`
}

type GetEventRequest struct {
	EventId string `json:"event_id"`
}

type TicketType struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int32  `json:"quantity"`
	Sold      int32  `json:"sold"`
	Available int32  `json:"available"`
}

type GetEventResponse struct {
	Id            string        `json:"id"`
	OrganizerId   string        `json:"organizer_id"`
	Title         string        `json:"title"`
	Location      string        `json:"location,omitempty"`
	StartDateTime string        `json:"start_date_time"`
	EndDateTime   string        `json:"end_date_time"`
	IsFree        bool          `json:"is_free"`
	TicketTypes   []*TicketType `json:"ticket_types"`
}

type GetOrderRequest struct {
	OrderId string `json:"order_id"`
}

type GetOrderResponse struct {
	Id          string        `json:"id"`
	PaymentId   string        `json:"payment_id"`
	EventId     string        `json:"event_id"`
	BuyerId     string        `json:"buyer_id"`
	Lines       []*PricedLine `json:"lines"`
	TotalAmount int64         `json:"total_amount"`
	Currency    string        `json:"currency"`
	Status      string        `json:"status"`
	Attendee    *Attendee     `json:"attendee,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

package models

// CartLine is a client-proposed selection; prices come from the server.
type CartLine struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required"`
	Quantity     int    `json:"quantity"`
}

// PricedCart is the authoritative pricing of a cart against current event state.
type PricedCart struct {
	EventID         string      `json:"event_id"`
	Lines           []OrderLine `json:"lines"`
	CalculatedTotal int64       `json:"calculated_total"`
}

// Cart is what a payment callback carries: either the lines chosen at checkout
// or nothing, in which case a single default line is settled.
type Cart interface {
	isCart()
}

type WellFormedCart struct {
	Lines []CartLine
}

type MissingCart struct {
	Amount int64
}

func (WellFormedCart) isCart() {}
func (MissingCart) isCart()    {}

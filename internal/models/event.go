package models

import "time"

// Event owns its ticket types; they are stored embedded so a sale is a single
// document write.
type Event struct {
	ID            string       `json:"id"`
	OrganizerID   string       `json:"organizer_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Location      string       `json:"location,omitempty"`
	ImageURL      string       `json:"image_url,omitempty"`
	URL           string       `json:"url,omitempty"`
	CategoryID    string       `json:"category_id,omitempty"`
	StartDateTime time.Time    `json:"start_date_time"`
	EndDateTime   time.Time    `json:"end_date_time"`
	TicketTypes   []TicketType `json:"ticket_types,omitempty"`
	IsFree        bool         `json:"is_free"`

	// Flat fields written before ticket types existed.
	Price       int64 `json:"price,omitempty"`
	MaxTickets  int   `json:"max_tickets,omitempty"`
	SoldTickets int   `json:"sold_tickets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLegacy reports whether the event predates ticket types.
func (e *Event) IsLegacy() bool {
	return len(e.TicketTypes) == 0
}

// DeriveIsFree sets IsFree from the ticket type prices.
func (e *Event) DeriveIsFree() {
	if e.IsLegacy() {
		e.IsFree = e.Price == 0
		return
	}

	for _, tt := range e.TicketTypes {
		if tt.Price != 0 {
			e.IsFree = false
			return
		}
	}
	e.IsFree = true
}

// TicketType prices are minor units.
type TicketType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Sold     int    `json:"sold"`
	Reserved []Hold `json:"reserved,omitempty"`
}

// Hold is a provisional allocation against a ticket type.
type Hold struct {
	Contact  string `json:"contact"`
	Quantity int    `json:"quantity"`
	Code     string `json:"code"`
}

func (t TicketType) ReservedQuantity() int {
	n := 0
	for _, h := range t.Reserved {
		n += h.Quantity
	}
	return n
}

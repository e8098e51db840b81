// Package inventory computes ticket type availability and applies sales.
package inventory

import (
	"github.com/google/uuid"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

const LegacyTicketTypeName = "General"

// Available is quantity minus sold minus held.
func Available(tt models.TicketType) int {
	return tt.Quantity - tt.Sold - tt.ReservedQuantity()
}

func CheckAvailable(tt models.TicketType, qty int) error {
	if avail := Available(tt); qty > avail {
		return &errs.CapacityExceededError{
			TicketTypeID: tt.ID,
			Name:         tt.Name,
			Requested:    qty,
			Available:    max(avail, 0),
		}
	}
	return nil
}

// CommitSale increments sold after re-checking availability.
func CommitSale(tt *models.TicketType, qty int) error {
	if qty <= 0 {
		return &errs.InvalidQuantityError{TicketTypeID: tt.ID, Quantity: qty}
	}
	if err := CheckAvailable(*tt, qty); err != nil {
		return err
	}
	tt.Sold += qty
	return nil
}

// LegacyTicketTypeID is stable per event so carts can reference the
// synthesized type.
func LegacyTicketTypeID(eventID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(eventID+":general")).String()
}

// EffectiveTicketTypes returns the event's ticket types, or a single
// synthesized one for events without any. The event is not modified.
func EffectiveTicketTypes(ev *models.Event) []models.TicketType {
	if !ev.IsLegacy() {
		return ev.TicketTypes
	}

	return []models.TicketType{{
		ID:       LegacyTicketTypeID(ev.ID),
		Name:     LegacyTicketTypeName,
		Price:    ev.Price,
		Quantity: ev.MaxTickets,
		Sold:     ev.SoldTickets,
	}}
}

// Find returns the effective ticket type with the given id.
func Find(ev *models.Event, ticketTypeID string) (models.TicketType, bool) {
	for _, tt := range EffectiveTicketTypes(ev) {
		if tt.ID == ticketTypeID {
			return tt, true
		}
	}
	return models.TicketType{}, false
}

// CommitSales applies every line to the event or none of them. Lines that
// share a ticket type are checked against their combined quantity.
func CommitSales(ev *models.Event, lines []models.OrderLine) error {
	types := EffectiveTicketTypes(ev)
	staged := make([]models.TicketType, len(types))
	copy(staged, types)

	index := make(map[string]int, len(staged))
	for i, tt := range staged {
		index[tt.ID] = i
	}

	for _, line := range lines {
		i, ok := index[line.TicketTypeID]
		if !ok {
			return &errs.UnknownTicketTypeError{EventID: ev.ID, TicketTypeID: line.TicketTypeID}
		}
		if err := CommitSale(&staged[i], line.Quantity); err != nil {
			if ce, ok := err.(*errs.CapacityExceededError); ok {
				ce.Requested = requestedFor(lines, line.TicketTypeID)
				ce.Available = max(Available(types[i]), 0)
			}
			return err
		}
	}

	if ev.IsLegacy() {
		ev.SoldTickets = staged[0].Sold
		return nil
	}
	ev.TicketTypes = staged
	return nil
}

func requestedFor(lines []models.OrderLine, ticketTypeID string) int {
	n := 0
	for _, l := range lines {
		if l.TicketTypeID == ticketTypeID {
			n += l.Quantity
		}
	}
	return n
}

// Package pricing recomputes cart totals from server-held prices.
package pricing

import (
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/inventory"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

const FallbackLineName = "General Admission"

// PriceCart validates each line against the event and returns the priced
// cart. When submittedTotal is set it must be within tolerance of the
// calculated total. PriceCart has no side effects.
func PriceCart(ev *models.Event, lines []models.CartLine, submittedTotal *int64, tolerance int64) (*models.PricedCart, error) {
	if len(lines) == 0 {
		return nil, errs.NewValidationError("cart", "must contain at least one line")
	}

	requested := make(map[string]int, len(lines))
	priced := make([]models.OrderLine, 0, len(lines))
	var total int64

	for _, line := range lines {
		tt, ok := inventory.Find(ev, line.TicketTypeID)
		if !ok {
			return nil, &errs.UnknownTicketTypeError{EventID: ev.ID, TicketTypeID: line.TicketTypeID}
		}
		if line.Quantity <= 0 {
			return nil, &errs.InvalidQuantityError{TicketTypeID: line.TicketTypeID, Quantity: line.Quantity}
		}

		requested[tt.ID] += line.Quantity
		if err := inventory.CheckAvailable(tt, requested[tt.ID]); err != nil {
			return nil, err
		}

		ol := models.OrderLine{
			TicketTypeID: tt.ID,
			Name:         tt.Name,
			Quantity:     line.Quantity,
			Price:        tt.Price,
		}
		priced = append(priced, ol)
		total += ol.Subtotal()
	}

	if submittedTotal != nil {
		if err := CheckTotal(*submittedTotal, total, tolerance); err != nil {
			return nil, err
		}
	}

	return &models.PricedCart{
		EventID:         ev.ID,
		Lines:           priced,
		CalculatedTotal: total,
	}, nil
}

// PriceFallback builds the single-line cart settled when a payment arrives
// without cart details: one ticket of the event's first ticket type, priced
// at the captured amount.
func PriceFallback(ev *models.Event, amount int64) (*models.PricedCart, error) {
	types := inventory.EffectiveTicketTypes(ev)
	if len(types) == 0 {
		return nil, errs.NewValidationError("event", "has no ticket types")
	}
	if amount < 0 {
		return nil, errs.NewValidationError("amount", "cannot be negative")
	}

	tt := types[0]
	if err := inventory.CheckAvailable(tt, 1); err != nil {
		return nil, err
	}

	return &models.PricedCart{
		EventID: ev.ID,
		Lines: []models.OrderLine{{
			TicketTypeID: tt.ID,
			Name:         FallbackLineName,
			Quantity:     1,
			Price:        amount,
		}},
		CalculatedTotal: amount,
	}, nil
}

// PriceSettlement prices whichever cart a payment carried against the
// captured amount.
func PriceSettlement(ev *models.Event, cart models.Cart, captured int64, tolerance int64) (*models.PricedCart, error) {
	switch c := cart.(type) {
	case models.WellFormedCart:
		return PriceCart(ev, c.Lines, &captured, tolerance)
	case models.MissingCart:
		return PriceFallback(ev, c.Amount)
	default:
		return nil, errs.NewValidationError("cart", "unrecognized cart")
	}
}

func CheckTotal(submitted, calculated, tolerance int64) error {
	diff := submitted - calculated
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return &errs.PriceMismatchError{
			Submitted:  submitted,
			Calculated: calculated,
			Tolerance:  tolerance,
		}
	}
	return nil
}

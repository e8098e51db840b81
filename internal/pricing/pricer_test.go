package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/inventory"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

func newEvent() *models.Event {
	return &models.Event{
		ID: "evt",
		TicketTypes: []models.TicketType{
			{ID: "std", Name: "Standard", Price: 50000, Quantity: 10, Sold: 8},
			{ID: "vip", Name: "VIP", Price: 150000, Quantity: 5},
		},
	}
}

func ptr(v int64) *int64 { return &v }

func TestPriceCart_CapacityScenario(t *testing.T) {
	ev := newEvent()

	_, err := PriceCart(ev, []models.CartLine{{TicketTypeID: "std", Quantity: 3}}, nil, 1)
	var ce *errs.CapacityExceededError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Requested)
	assert.Equal(t, 2, ce.Available)

	pc, err := PriceCart(ev, []models.CartLine{{TicketTypeID: "std", Quantity: 2}}, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2*50000), pc.CalculatedTotal)
	assert.Equal(t, "Standard", pc.Lines[0].Name)
	assert.Equal(t, int64(50000), pc.Lines[0].Price)

	// pure: nothing moved
	assert.Equal(t, 8, ev.TicketTypes[0].Sold)
}

func TestPriceCart_Errors(t *testing.T) {
	tcs := map[string]struct {
		lines []models.CartLine
		want  error
	}{
		"empty cart":       {lines: nil, want: errs.ErrValidation},
		"unknown type":     {lines: []models.CartLine{{TicketTypeID: "nope", Quantity: 1}}, want: errs.ErrUnknownTicketType},
		"zero quantity":    {lines: []models.CartLine{{TicketTypeID: "vip", Quantity: 0}}, want: errs.ErrInvalidQuantity},
		"negative":         {lines: []models.CartLine{{TicketTypeID: "vip", Quantity: -2}}, want: errs.ErrInvalidQuantity},
		"over capacity":    {lines: []models.CartLine{{TicketTypeID: "vip", Quantity: 6}}, want: errs.ErrCapacityExceeded},
		"split over limit": {lines: []models.CartLine{{TicketTypeID: "std", Quantity: 1}, {TicketTypeID: "std", Quantity: 2}}, want: errs.ErrCapacityExceeded},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := PriceCart(newEvent(), tc.lines, nil, 1)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPriceCart_Tolerance(t *testing.T) {
	lines := []models.CartLine{{TicketTypeID: "vip", Quantity: 2}, {TicketTypeID: "std", Quantity: 1}}
	const calculated = 2*150000 + 50000

	pc, err := PriceCart(newEvent(), lines, ptr(calculated+1), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(calculated), pc.CalculatedTotal)

	pc, err = PriceCart(newEvent(), lines, ptr(calculated-1), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(calculated), pc.CalculatedTotal)

	_, err = PriceCart(newEvent(), lines, ptr(calculated-2), 1)
	var pm *errs.PriceMismatchError
	require.ErrorAs(t, err, &pm)
	assert.Equal(t, int64(calculated), pm.Calculated)
	assert.Equal(t, int64(calculated-2), pm.Submitted)
}

func TestPriceCart_LegacyEvent(t *testing.T) {
	ev := &models.Event{ID: "old", Price: 500, MaxTickets: 50, SoldTickets: 10}

	pc, err := PriceCart(ev, []models.CartLine{{TicketTypeID: inventory.LegacyTicketTypeID("old"), Quantity: 4}}, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pc.CalculatedTotal)
	assert.Equal(t, "General", pc.Lines[0].Name)
}

func TestPriceFallback(t *testing.T) {
	pc, err := PriceFallback(newEvent(), 49999)
	require.NoError(t, err)
	require.Len(t, pc.Lines, 1)
	assert.Equal(t, "std", pc.Lines[0].TicketTypeID)
	assert.Equal(t, FallbackLineName, pc.Lines[0].Name)
	assert.Equal(t, 1, pc.Lines[0].Quantity)
	assert.Equal(t, int64(49999), pc.CalculatedTotal)

	full := newEvent()
	full.TicketTypes[0].Sold = 10
	_, err = PriceFallback(full, 50000)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)
}

func TestPriceSettlement(t *testing.T) {
	pc, err := PriceSettlement(newEvent(), models.WellFormedCart{Lines: []models.CartLine{{TicketTypeID: "vip", Quantity: 1}}}, 150000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), pc.CalculatedTotal)

	_, err = PriceSettlement(newEvent(), models.WellFormedCart{Lines: []models.CartLine{{TicketTypeID: "vip", Quantity: 1}}}, 100, 1)
	assert.ErrorIs(t, err, errs.ErrPriceMismatch)

	pc, err = PriceSettlement(newEvent(), models.MissingCart{Amount: 70000}, 70000, 1)
	require.NoError(t, err)
	assert.Equal(t, FallbackLineName, pc.Lines[0].Name)

	_, err = PriceSettlement(newEvent(), nil, 0, 1)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

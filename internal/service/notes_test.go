package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

func TestParsePaymentNotes(t *testing.T) {
	eventID := uuid.NewString()
	buyerID := uuid.NewString()
	ttID := uuid.NewString()

	t.Run("well formed", func(t *testing.T) {
		got, err := parsePaymentNotes(map[string]string{
			noteEventID:      strings.ToUpper(eventID),
			noteBuyerID:      buyerID,
			noteCart:         `[{"id":"` + ttID + `","qty":3}]`,
			noteAttendeeName: "Ravi",
		}, 1500)
		require.NoError(t, err)
		assert.Equal(t, eventID, got.EventID)
		assert.Equal(t, buyerID, got.BuyerID)
		assert.Equal(t, "Ravi", got.Attendee.Name)
		assert.Equal(t, models.WellFormedCart{Lines: []models.CartLine{{TicketTypeID: ttID, Quantity: 3}}}, got.Cart)
	})

	t.Run("missing and empty cart fall back", func(t *testing.T) {
		for _, raw := range []string{"", "[]"} {
			notes := map[string]string{noteEventID: eventID, noteBuyerID: buyerID}
			if raw != "" {
				notes[noteCart] = raw
			}
			got, err := parsePaymentNotes(notes, 1500)
			require.NoError(t, err)
			assert.Equal(t, models.MissingCart{Amount: 1500}, got.Cart)
		}
	})

	tcs := map[string]map[string]string{
		"missing event":   {noteBuyerID: buyerID},
		"event not uuid":  {noteEventID: "42", noteBuyerID: buyerID},
		"buyer not uuid":  {noteEventID: eventID, noteBuyerID: "buyer-1"},
		"cart not json":   {noteEventID: eventID, noteBuyerID: buyerID, noteCart: "T1x2"},
		"line without id": {noteEventID: eventID, noteBuyerID: buyerID, noteCart: `[{"qty":1}]`},
	}
	for name, notes := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := parsePaymentNotes(notes, 1500)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestEncodeNotes_CartTooLong(t *testing.T) {
	lines := make([]models.OrderLine, 8)
	for i := range lines {
		lines[i] = models.OrderLine{TicketTypeID: uuid.NewString(), Quantity: 1, Price: 100}
	}

	_, err := encodeNotes(uuid.NewString(), uuid.NewString(), "", &models.PricedCart{Lines: lines, CalculatedTotal: 800}, models.Attendee{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestEncodeNotes_TruncatesAttendee(t *testing.T) {
	pc := &models.PricedCart{
		Lines:           []models.OrderLine{{TicketTypeID: uuid.NewString(), Quantity: 1, Price: 100}},
		CalculatedTotal: 100,
	}

	notes, err := encodeNotes(uuid.NewString(), uuid.NewString(), "", pc, models.Attendee{Name: strings.Repeat("a", 300)})
	require.NoError(t, err)
	assert.Len(t, notes[noteAttendeeName], maxNoteLength)
	assert.NotContains(t, notes, noteAttendeeEmail)
}

func TestEncodeNotes_TruncatesOnRuneBoundary(t *testing.T) {
	pc := &models.PricedCart{
		Lines:           []models.OrderLine{{TicketTypeID: uuid.NewString(), Quantity: 1, Price: 100}},
		CalculatedTotal: 100,
	}

	// "ā" is two bytes, so byte 256 is the second half of one.
	name := "x" + strings.Repeat("ā", 200)
	notes, err := encodeNotes(uuid.NewString(), uuid.NewString(), "", pc, models.Attendee{Name: name})
	require.NoError(t, err)

	got := notes[noteAttendeeName]
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, maxNoteLength-1)
	assert.True(t, strings.HasPrefix(name, got))
}

func TestPaymentNotes_CarrySessionID(t *testing.T) {
	pc := &models.PricedCart{
		Lines:           []models.OrderLine{{TicketTypeID: uuid.NewString(), Quantity: 1, Price: 100}},
		CalculatedTotal: 100,
	}
	eventID, buyerID, sessionID := uuid.NewString(), uuid.NewString(), "sess-42"

	notes, err := encodeNotes(eventID, buyerID, sessionID, pc, models.Attendee{})
	require.NoError(t, err)
	assert.Equal(t, sessionID, notes[noteSessionID])

	got, err := parsePaymentNotes(notes, 100)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got.SessionID)

	noSession, err := encodeNotes(eventID, buyerID, "", pc, models.Attendee{})
	require.NoError(t, err)
	assert.NotContains(t, noSession, noteSessionID)
}

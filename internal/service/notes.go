package service

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

// Keys of the metadata attached to gateway orders. The gateway copies them
// onto the payment, which makes the capture callback self-describing.
const (
	noteEventID       = "eventId"
	noteBuyerID       = "buyerId"
	noteSessionID     = "sessionId"
	noteCart          = "cart"
	noteTotal         = "total"
	noteAttendeeName  = "attendeeName"
	noteAttendeeEmail = "attendeeEmail"
	noteAttendeePhone = "attendeePhone"

	// The gateway rejects note values longer than this.
	maxNoteLength = 256
)

type cartNoteLine struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func encodeNotes(eventID, buyerID, sessionID string, pc *models.PricedCart, att models.Attendee) (razorpay.Notes, error) {
	lines := make([]cartNoteLine, len(pc.Lines))
	for i, l := range pc.Lines {
		lines[i] = cartNoteLine{ID: l.TicketTypeID, Qty: l.Quantity}
	}

	cart, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}
	if len(cart) > maxNoteLength {
		return nil, errs.NewValidationError("cart", "too many distinct ticket types for a single payment")
	}

	notes := razorpay.Notes{
		noteEventID: eventID,
		noteBuyerID: buyerID,
		noteCart:    string(cart),
		noteTotal:   strconv.FormatInt(pc.CalculatedTotal, 10),
	}
	if sessionID != "" {
		notes[noteSessionID] = truncate(sessionID, maxNoteLength)
	}
	if att.Name != "" {
		notes[noteAttendeeName] = truncate(att.Name, maxNoteLength)
	}
	if att.Email != "" {
		notes[noteAttendeeEmail] = truncate(att.Email, maxNoteLength)
	}
	if att.Phone != "" {
		notes[noteAttendeePhone] = truncate(att.Phone, maxNoteLength)
	}
	return notes, nil
}

type paymentNotes struct {
	EventID   string
	BuyerID   string
	SessionID string
	Cart      models.Cart
	Attendee  models.Attendee
}

// parsePaymentNotes turns the loosely typed metadata of a captured payment
// into settlement inputs. Identifiers must be UUIDs. An absent or empty cart
// becomes a MissingCart for the captured amount.
func parsePaymentNotes(notes map[string]string, amount int64) (*paymentNotes, error) {
	eventID, err := parseID(notes, noteEventID)
	if err != nil {
		return nil, err
	}
	buyerID, err := parseID(notes, noteBuyerID)
	if err != nil {
		return nil, err
	}

	out := &paymentNotes{
		EventID:   eventID,
		BuyerID:   buyerID,
		SessionID: notes[noteSessionID],
		Cart:      models.MissingCart{Amount: amount},
		Attendee: models.Attendee{
			Name:  notes[noteAttendeeName],
			Email: notes[noteAttendeeEmail],
			Phone: notes[noteAttendeePhone],
		},
	}

	raw := notes[noteCart]
	if raw == "" {
		return out, nil
	}

	var lines []cartNoteLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, errs.NewValidationError("notes.cart", "not a valid cart")
	}
	if len(lines) == 0 {
		return out, nil
	}

	cart := make([]models.CartLine, len(lines))
	for i, l := range lines {
		if l.ID == "" {
			return nil, errs.NewValidationError("notes.cart", "line without ticket type id")
		}
		cart[i] = models.CartLine{TicketTypeID: l.ID, Quantity: l.Qty}
	}
	out.Cart = models.WellFormedCart{Lines: cart}
	return out, nil
}

func parseID(notes map[string]string, key string) (string, error) {
	v, ok := notes[key]
	if !ok || v == "" {
		return "", errs.NewValidationError("notes."+key, "missing")
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return "", errs.NewValidationError("notes."+key, "not a valid id")
	}
	return id.String(), nil
}

func validateID(field, v string) error {
	if _, err := uuid.Parse(v); err != nil {
		return errs.NewValidationError(field, "not a valid id")
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

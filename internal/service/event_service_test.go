package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/inventory"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
)

func eventInput(title string, types ...TicketTypeInput) EventInput {
	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	return EventInput{
		Title:         title,
		Location:      "Bengaluru",
		StartDateTime: start,
		EndDateTime:   start.Add(3 * time.Hour),
		TicketTypes:   types,
	}
}

func TestCreateEvent(t *testing.T) {
	f := setup(t)
	organizer := uuid.NewString()

	out, err := f.events.CreateEvent(context.Background(), organizer, eventInput("Jazz by the Lake",
		TicketTypeInput{Name: " Early Bird ", Price: 30000, Quantity: 100},
		TicketTypeInput{Name: "VIP", Price: 150000, Quantity: 10},
	))
	require.NoError(t, err)

	assert.Equal(t, organizer, out.OrganizerID)
	assert.False(t, out.IsFree)
	require.Len(t, out.TicketTypes, 2)
	assert.Equal(t, "Early Bird", out.TicketTypes[0].Name)
	assert.Equal(t, 100, out.TicketTypes[0].Available)
	assert.NotEmpty(t, out.TicketTypes[0].ID)

	got, err := f.events.GetEvent(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.TicketTypes, got.TicketTypes)
}

func TestCreateEvent_Free(t *testing.T) {
	f := setup(t)

	out, err := f.events.CreateEvent(context.Background(), uuid.NewString(), eventInput("Open Mic",
		TicketTypeInput{Name: "Entry", Price: 0, Quantity: 40},
	))
	require.NoError(t, err)
	assert.True(t, out.IsFree)
}

func TestCreateEvent_Validation(t *testing.T) {
	f := setup(t)

	ended := eventInput("Backwards", TicketTypeInput{Name: "A", Price: 1, Quantity: 1})
	ended.EndDateTime = ended.StartDateTime.Add(-time.Hour)

	tcs := map[string]EventInput{
		"no title":        eventInput(" ", TicketTypeInput{Name: "A", Price: 1, Quantity: 1}),
		"no ticket types": eventInput("Empty"),
		"negative price":  eventInput("Neg", TicketTypeInput{Name: "A", Price: -1, Quantity: 1}),
		"zero quantity":   eventInput("Zero", TicketTypeInput{Name: "A", Price: 1, Quantity: 0}),
		"unnamed type":    eventInput("Unnamed", TicketTypeInput{Price: 1, Quantity: 1}),
		"ends early":      ended,
	}

	for name, in := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := f.events.CreateEvent(context.Background(), uuid.NewString(), in)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	_, err := f.events.CreateEvent(context.Background(), "organizer", eventInput("X", TicketTypeInput{Name: "A", Quantity: 1}))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateEvent_PreservesSales(t *testing.T) {
	f := setup(t)
	std := ticketType("Standard", 50000, 10, 4)
	ev := f.seedEvent(t, std)

	out, err := f.events.UpdateEvent(context.Background(), ev.OrganizerID, ev.ID, eventInput("Indie Night (moved)",
		TicketTypeInput{ID: std.ID, Name: "Standard", Price: 55000, Quantity: 20},
		TicketTypeInput{Name: "Balcony", Price: 20000, Quantity: 30},
	))
	require.NoError(t, err)

	require.Len(t, out.TicketTypes, 2)
	assert.Equal(t, std.ID, out.TicketTypes[0].ID)
	assert.Equal(t, 4, out.TicketTypes[0].Sold)
	assert.Equal(t, 16, out.TicketTypes[0].Available)
	assert.Equal(t, int64(55000), out.TicketTypes[0].Price)
	assert.Equal(t, "Balcony", out.TicketTypes[1].Name)

	stored := f.mustEvent(t, ev.ID)
	assert.Equal(t, "Indie Night (moved)", stored.Title)
	assert.Equal(t, 4, stored.TicketTypes[0].Sold)
}

func TestUpdateEvent_Rejections(t *testing.T) {
	f := setup(t)
	sold := ticketType("Standard", 50000, 10, 6)
	spare := ticketType("Student", 20000, 10, 0)
	ev := f.seedEvent(t, sold, spare)

	tcs := map[string]struct {
		organizer string
		in        EventInput
		wantErr   error
	}{
		"other organizer": {
			organizer: uuid.NewString(),
			in:        eventInput("Mine", TicketTypeInput{ID: sold.ID, Name: "Standard", Price: 1, Quantity: 10}),
			wantErr:   errs.ErrForbidden,
		},
		"below sold": {
			organizer: ev.OrganizerID,
			in:        eventInput("Shrink", TicketTypeInput{ID: sold.ID, Name: "Standard", Price: 1, Quantity: 5}),
			wantErr:   errs.ErrValidation,
		},
		"remove sold type": {
			organizer: ev.OrganizerID,
			in:        eventInput("Drop", TicketTypeInput{ID: spare.ID, Name: "Student", Price: 1, Quantity: 10}),
			wantErr:   errs.ErrValidation,
		},
		"unknown id": {
			organizer: ev.OrganizerID,
			in:        eventInput("Ghost", TicketTypeInput{ID: uuid.NewString(), Name: "Ghost", Price: 1, Quantity: 10}),
			wantErr:   errs.ErrUnknownTicketType,
		},
		"duplicate id": {
			organizer: ev.OrganizerID,
			in: eventInput("Twice",
				TicketTypeInput{ID: sold.ID, Name: "Standard", Price: 1, Quantity: 10},
				TicketTypeInput{ID: sold.ID, Name: "Standard", Price: 1, Quantity: 10},
			),
			wantErr: errs.ErrValidation,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := f.events.UpdateEvent(context.Background(), tc.organizer, ev.ID, tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	stored := f.mustEvent(t, ev.ID)
	assert.Equal(t, "Indie Night", stored.Title)
	assert.Len(t, stored.TicketTypes, 2)

	_, err := f.events.UpdateEvent(context.Background(), ev.OrganizerID, uuid.NewString(),
		eventInput("Nowhere", TicketTypeInput{Name: "A", Price: 1, Quantity: 1}))
	assert.ErrorIs(t, err, errs.ErrEventNotFound)
}

func legacyEvent(t *testing.T, f *fixture) *models.Event {
	t.Helper()
	ev := &models.Event{
		ID:          uuid.NewString(),
		OrganizerID: uuid.NewString(),
		Title:       "Legacy Meetup",
		Price:       500,
		MaxTickets:  50,
		SoldTickets: 10,
	}
	require.NoError(t, f.evRepo.Create(context.Background(), ev))
	return ev
}

func TestGetEvent_Legacy(t *testing.T) {
	f := setup(t)
	ev := legacyEvent(t, f)

	out, err := f.events.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)

	require.Len(t, out.TicketTypes, 1)
	tt := out.TicketTypes[0]
	assert.Equal(t, inventory.LegacyTicketTypeID(ev.ID), tt.ID)
	assert.Equal(t, "General", tt.Name)
	assert.Equal(t, int64(500), tt.Price)
	assert.Equal(t, 50, tt.Quantity)
	assert.Equal(t, 10, tt.Sold)
	assert.Equal(t, 40, tt.Available)
}

func TestUpdateEvent_ConvertsLegacy(t *testing.T) {
	f := setup(t)
	ev := legacyEvent(t, f)

	_, err := f.events.UpdateEvent(context.Background(), ev.OrganizerID, ev.ID, eventInput("Legacy Meetup",
		TicketTypeInput{ID: inventory.LegacyTicketTypeID(ev.ID), Name: "General", Price: 500, Quantity: 60},
	))
	require.NoError(t, err)

	stored := f.mustEvent(t, ev.ID)
	assert.False(t, stored.IsLegacy())
	assert.Zero(t, stored.SoldTickets)
	require.Len(t, stored.TicketTypes, 1)
	assert.Equal(t, 10, stored.TicketTypes[0].Sold)
	assert.Equal(t, 60, stored.TicketTypes[0].Quantity)
}

func TestGetEvent_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.events.GetEvent(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, errs.ErrEventNotFound)

	_, err = f.events.GetEvent(context.Background(), "x")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestListEvents(t *testing.T) {
	f := setup(t)
	organizer := uuid.NewString()
	ctx := context.Background()

	mk := func(title, location string, price int64) {
		in := eventInput(title, TicketTypeInput{Name: "Entry", Price: price, Quantity: 10})
		in.Location = location
		_, err := f.events.CreateEvent(ctx, organizer, in)
		require.NoError(t, err)
	}
	mk("Jazz by the Lake", "Bengaluru", 30000)
	mk("Rock Fest", "Mumbai", 80000)
	mk("Community Jazz Jam", "Mumbai", 0)

	all, err := f.events.ListEvents(ctx, ListEventsInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 1, all.TotalPages)

	jazz, err := f.events.ListEvents(ctx, ListEventsInput{Query: "jazz"})
	require.NoError(t, err)
	assert.Equal(t, 2, jazz.Total)

	mumbaiFree, err := f.events.ListEvents(ctx, ListEventsInput{Location: "mumbai", FreeOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, mumbaiFree.Total)
	assert.Equal(t, "Community Jazz Jam", mumbaiFree.Data[0].Title)

	paged, err := f.events.ListEvents(ctx, ListEventsInput{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, 2, paged.TotalPages)

	beyond, err := f.events.ListEvents(ctx, ListEventsInput{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)

	mine, err := f.events.ListEventsByOrganizer(ctx, organizer, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Total)
	assert.Len(t, mine.Data, 2)

	none, err := f.events.ListEventsByOrganizer(ctx, uuid.NewString(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
}

func TestListEvents_Category(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mk := func(title, category string, price int64) string {
		in := eventInput(title, TicketTypeInput{Name: "Entry", Price: price, Quantity: 10})
		in.CategoryID = category
		out, err := f.events.CreateEvent(ctx, uuid.NewString(), in)
		require.NoError(t, err)
		return out.ID
	}
	mk("Jazz by the Lake", "music", 30000)
	mk("Open Jazz Jam", "music", 0)
	mk("Stand-up Night", "comedy", 20000)
	mk("Uncategorized", "", 0)

	music, err := f.events.ListEvents(ctx, ListEventsInput{CategoryID: "music"})
	require.NoError(t, err)
	assert.Equal(t, 2, music.Total)

	freeMusic, err := f.events.ListEvents(ctx, ListEventsInput{CategoryID: "music", FreeOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, freeMusic.Total)
	assert.Equal(t, "Open Jazz Jam", freeMusic.Data[0].Title)

	jazzComedy, err := f.events.ListEvents(ctx, ListEventsInput{CategoryID: "comedy", Query: "jazz"})
	require.NoError(t, err)
	assert.Zero(t, jazzComedy.Total)
}

func TestListRelatedEvents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ids := make([]string, 4)
	for i := range ids {
		in := eventInput("Gig", TicketTypeInput{Name: "Entry", Price: 1000, Quantity: 10})
		in.CategoryID = "music"
		out, err := f.events.CreateEvent(ctx, uuid.NewString(), in)
		require.NoError(t, err)
		ids[i] = out.ID
	}

	related, err := f.events.ListRelatedEvents(ctx, "music", ids[0], 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, related.Total)
	assert.Equal(t, 2, related.TotalPages)
	require.Len(t, related.Data, 2)
	for _, ev := range related.Data {
		assert.NotEqual(t, ids[0], ev.ID)
	}

	none, err := f.events.ListRelatedEvents(ctx, "", ids[0], 1, 2)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Empty(t, none.Data)
}

func TestDeleteEvent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	organizer := uuid.NewString()

	in := eventInput("Cancelled Show", TicketTypeInput{Name: "Entry", Price: 1000, Quantity: 10})
	in.CategoryID = "music"
	out, err := f.events.CreateEvent(ctx, organizer, in)
	require.NoError(t, err)

	err = f.events.DeleteEvent(ctx, uuid.NewString(), out.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, f.events.DeleteEvent(ctx, organizer, out.ID))

	_, err = f.events.GetEvent(ctx, out.ID)
	assert.ErrorIs(t, err, errs.ErrEventNotFound)

	listed, err := f.events.ListEvents(ctx, ListEventsInput{CategoryID: "music"})
	require.NoError(t, err)
	assert.Zero(t, listed.Total)

	assert.ErrorIs(t, f.events.DeleteEvent(ctx, organizer, out.ID), errs.ErrEventNotFound)
	assert.ErrorIs(t, f.events.DeleteEvent(ctx, organizer, "x"), errs.ErrValidation)
}

func TestDeleteEvent_KeepsEventsWithSales(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sold := f.seedEvent(t, ticketType("Standard", 50000, 10, 1))

	held := ticketType("Standard", 50000, 10, 0)
	held.Reserved = []models.Hold{{Quantity: 2}}
	withHold := f.seedEvent(t, held)

	legacy := legacyEvent(t, f)

	for name, ev := range map[string]*models.Event{"sold": sold, "held": withHold, "legacy": legacy} {
		t.Run(name, func(t *testing.T) {
			err := f.events.DeleteEvent(ctx, ev.OrganizerID, ev.ID)
			assert.ErrorIs(t, err, errs.ErrEventHasSales)

			_, err = f.events.GetEvent(ctx, ev.ID)
			assert.NoError(t, err)
		})
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/inventory"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

const (
	defaultPageLimit = 6
	maxPageLimit     = 100
)

type eventService struct {
	repo repo.EventRepository
	l    logger.Logger
}

func NewEventService(repo repo.EventRepository, l logger.Logger) EventService {
	return &eventService{
		repo: repo,
		l:    l,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, in EventInput) (*EventOutput, error) {
	if err := validateID("organizerId", organizerID); err != nil {
		return nil, err
	}
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	ev := &models.Event{
		ID:          uuid.NewString(),
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyEventInput(ev, in)

	ev.TicketTypes = make([]models.TicketType, len(in.TicketTypes))
	for i, tt := range in.TicketTypes {
		ev.TicketTypes[i] = models.TicketType{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(tt.Name),
			Price:    tt.Price,
			Quantity: tt.Quantity,
		}
	}
	ev.DeriveIsFree()

	if err := s.repo.Create(ctx, ev); err != nil {
		s.l.Errorf(ctx, "service.eventService.CreateEvent: %v", err)
		return nil, err
	}

	s.l.Infof(ctx, "Event created: event_id=%s organizer_id=%s ticket_types=%d", ev.ID, organizerID, len(ev.TicketTypes))

	return toEventOutput(ev), nil
}

func (s *eventService) UpdateEvent(ctx context.Context, organizerID, eventID string, in EventInput) (*EventOutput, error) {
	if err := validateID("eventId", eventID); err != nil {
		return nil, err
	}
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	ev, err := s.repo.Update(ctx, eventID, func(ev *models.Event) error {
		if ev.OrganizerID != organizerID {
			return errs.ErrForbidden
		}

		types, err := mergeTicketTypes(ev, in.TicketTypes)
		if err != nil {
			return err
		}

		applyEventInput(ev, in)
		ev.TicketTypes = types
		// the legacy counters now live on the synthesized type
		ev.Price, ev.MaxTickets, ev.SoldTickets = 0, 0, 0
		ev.DeriveIsFree()
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.l.Warnf(ctx, "service.eventService.UpdateEvent: %v", errs.ErrEventNotFound)
			return nil, errs.ErrEventNotFound
		}
		s.l.Warnf(ctx, "service.eventService.UpdateEvent: %v", err)
		return nil, err
	}

	return toEventOutput(ev), nil
}

// mergeTicketTypes matches edited ticket types to stored ones by id so sold
// counts and holds carry forward.
func mergeTicketTypes(ev *models.Event, inputs []TicketTypeInput) ([]models.TicketType, error) {
	current := inventory.EffectiveTicketTypes(ev)
	byID := make(map[string]models.TicketType, len(current))
	for _, tt := range current {
		byID[tt.ID] = tt
	}

	kept := make(map[string]bool, len(inputs))
	out := make([]models.TicketType, 0, len(inputs))
	for i, in := range inputs {
		if in.ID == "" {
			out = append(out, models.TicketType{
				ID:       uuid.NewString(),
				Name:     strings.TrimSpace(in.Name),
				Price:    in.Price,
				Quantity: in.Quantity,
			})
			continue
		}

		existing, ok := byID[in.ID]
		if !ok {
			return nil, &errs.UnknownTicketTypeError{EventID: ev.ID, TicketTypeID: in.ID}
		}
		if kept[in.ID] {
			return nil, errs.NewValidationError(fmt.Sprintf("ticket_types[%d].id", i), "duplicated")
		}
		kept[in.ID] = true

		committed := existing.Sold + existing.ReservedQuantity()
		if in.Quantity < committed {
			return nil, errs.NewValidationError(
				fmt.Sprintf("ticket_types[%d].quantity", i),
				fmt.Sprintf("cannot be below %d already sold or held", committed),
			)
		}

		existing.Name = strings.TrimSpace(in.Name)
		existing.Price = in.Price
		existing.Quantity = in.Quantity
		out = append(out, existing)
	}

	for _, tt := range current {
		if kept[tt.ID] {
			continue
		}
		if tt.Sold > 0 || tt.ReservedQuantity() > 0 {
			return nil, errs.NewValidationError("ticket_types", fmt.Sprintf("ticket type %q has sales and cannot be removed", tt.Name))
		}
	}

	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*EventOutput, error) {
	if err := validateID("eventId", eventID); err != nil {
		return nil, err
	}

	ev, err := s.repo.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrEventNotFound
		}
		s.l.Errorf(ctx, "service.eventService.GetEvent: %v", err)
		return nil, err
	}

	return toEventOutput(ev), nil
}

// DeleteEvent removes an event that has never sold or held a ticket, so
// existing orders always keep their event.
func (s *eventService) DeleteEvent(ctx context.Context, organizerID, eventID string) error {
	if err := validateID("eventId", eventID); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, eventID, func(ev *models.Event) error {
		if ev.OrganizerID != organizerID {
			return errs.ErrForbidden
		}
		for _, tt := range inventory.EffectiveTicketTypes(ev) {
			if tt.Sold > 0 || tt.ReservedQuantity() > 0 {
				return errs.ErrEventHasSales
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errs.ErrEventNotFound
		}
		s.l.Warnf(ctx, "service.eventService.DeleteEvent: event_id=%s: %v", eventID, err)
		return err
	}

	s.l.Infof(ctx, "Event deleted: event_id=%s organizer_id=%s", eventID, organizerID)
	return nil
}

func (s *eventService) ListEvents(ctx context.Context, in ListEventsInput) (*ListEventsOutput, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	if !in.filtered() {
		evs, total, err := s.repo.ListPage(ctx, in.CategoryID, int64((page-1)*limit), int64(limit))
		if err != nil {
			s.l.Errorf(ctx, "service.eventService.ListEvents: %v", err)
			return nil, err
		}
		return &ListEventsOutput{
			Data:       toEventOutputs(evs),
			Total:      int(total),
			TotalPages: totalPages(total, limit),
		}, nil
	}

	// TODO: text search scans every event in scope; move to a search index
	// once the catalogue outgrows a single Redis scan.
	evs, err := s.repo.List(ctx, in.CategoryID)
	if err != nil {
		s.l.Errorf(ctx, "service.eventService.ListEvents: %v", err)
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(in.Query))
	location := strings.ToLower(strings.TrimSpace(in.Location))

	matched := make([]*models.Event, 0, len(evs))
	for _, ev := range evs {
		if in.FreeOnly && !ev.IsFree {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(ev.Title), query) &&
			!strings.Contains(strings.ToLower(ev.Description), query) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(ev.Location), location) {
			continue
		}
		matched = append(matched, ev)
	}

	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))

	return &ListEventsOutput{
		Data:       toEventOutputs(matched[start:end]),
		Total:      len(matched),
		TotalPages: totalPages(int64(len(matched)), limit),
	}, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string, page, limit int) (*ListEventsOutput, error) {
	if err := validateID("organizerId", organizerID); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	evs, total, err := s.repo.ListByOrganizer(ctx, organizerID, int64((page-1)*limit), int64(limit))
	if err != nil {
		s.l.Errorf(ctx, "service.eventService.ListEventsByOrganizer: %v", err)
		return nil, err
	}

	return &ListEventsOutput{
		Data:       toEventOutputs(evs),
		Total:      int(total),
		TotalPages: totalPages(total, limit),
	}, nil
}

// ListRelatedEvents pages the other events of a category. An uncategorized
// event has no related events.
func (s *eventService) ListRelatedEvents(ctx context.Context, categoryID, excludeEventID string, page, limit int) (*ListEventsOutput, error) {
	page, limit = normalizePage(page, limit)
	if categoryID == "" {
		return &ListEventsOutput{Data: []*EventOutput{}}, nil
	}

	evs, total, err := s.repo.ListByCategory(ctx, categoryID, excludeEventID, int64((page-1)*limit), int64(limit))
	if err != nil {
		s.l.Errorf(ctx, "service.eventService.ListRelatedEvents: %v", err)
		return nil, err
	}

	return &ListEventsOutput{
		Data:       toEventOutputs(evs),
		Total:      int(total),
		TotalPages: totalPages(total, limit),
	}, nil
}

func validateEventInput(in EventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return errs.NewValidationError("title", "required")
	}
	if in.StartDateTime.IsZero() || in.EndDateTime.IsZero() {
		return errs.NewValidationError("start_date_time", "start and end are required")
	}
	if !in.EndDateTime.After(in.StartDateTime) {
		return errs.NewValidationError("end_date_time", "must be after start_date_time")
	}
	if len(in.TicketTypes) == 0 {
		return errs.NewValidationError("ticket_types", "at least one ticket type is required")
	}
	for i, tt := range in.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" {
			return errs.NewValidationError(fmt.Sprintf("ticket_types[%d].name", i), "required")
		}
		if tt.Price < 0 {
			return errs.NewValidationError(fmt.Sprintf("ticket_types[%d].price", i), "cannot be negative")
		}
		if tt.Quantity < 1 {
			return errs.NewValidationError(fmt.Sprintf("ticket_types[%d].quantity", i), "must be at least 1")
		}
	}
	return nil
}

func applyEventInput(ev *models.Event, in EventInput) {
	ev.Title = strings.TrimSpace(in.Title)
	ev.Description = in.Description
	ev.Location = in.Location
	ev.ImageURL = in.ImageURL
	ev.URL = in.URL
	ev.CategoryID = in.CategoryID
	ev.StartDateTime = in.StartDateTime
	ev.EndDateTime = in.EndDateTime
}

func toEventOutput(ev *models.Event) *EventOutput {
	types := inventory.EffectiveTicketTypes(ev)
	out := make([]TicketTypeOutput, len(types))
	for i, tt := range types {
		out[i] = TicketTypeOutput{TicketType: tt, Available: max(inventory.Available(tt), 0)}
	}

	return &EventOutput{
		ID:            ev.ID,
		OrganizerID:   ev.OrganizerID,
		Title:         ev.Title,
		Description:   ev.Description,
		Location:      ev.Location,
		ImageURL:      ev.ImageURL,
		URL:           ev.URL,
		CategoryID:    ev.CategoryID,
		StartDateTime: ev.StartDateTime,
		EndDateTime:   ev.EndDateTime,
		IsFree:        ev.IsFree,
		TicketTypes:   out,
		CreatedAt:     ev.CreatedAt,
		UpdatedAt:     ev.UpdatedAt,
	}
}

func toEventOutputs(evs []*models.Event) []*EventOutput {
	out := make([]*EventOutput, len(evs))
	for i, ev := range evs {
		out[i] = toEventOutput(ev)
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

type orderService struct {
	repo repo.OrderRepository
	l    logger.Logger
}

func NewOrderService(repo repo.OrderRepository, l logger.Logger) OrderService {
	return &orderService{
		repo: repo,
		l:    l,
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if err := validateID("orderId", orderID); err != nil {
		return nil, err
	}

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrOrderNotFound
		}
		s.l.Errorf(ctx, "service.orderService.GetOrder: %v", err)
		return nil, err
	}
	return o, nil
}

func (s *orderService) GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	if paymentID == "" {
		return nil, errs.NewValidationError("paymentId", "required")
	}

	o, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrOrderNotFound
		}
		s.l.Errorf(ctx, "service.orderService.GetOrderByPaymentID: %v", err)
		return nil, err
	}
	return o, nil
}

// ListOrdersByEvent returns the event's orders, newest first. A non-empty
// search keeps orders whose attendee name or email contains it.
func (s *orderService) ListOrdersByEvent(ctx context.Context, eventID, search string) ([]*models.Order, error) {
	if err := validateID("eventId", eventID); err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		s.l.Errorf(ctx, "service.orderService.ListOrdersByEvent: %v", err)
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return orders, nil
	}

	matched := make([]*models.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.Attendee.Name), search) ||
			strings.Contains(strings.ToLower(o.Attendee.Email), search) {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (s *orderService) ListOrdersByBuyer(ctx context.Context, buyerID string, page, limit int) (*ListOrdersOutput, error) {
	if err := validateID("buyerId", buyerID); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.ListByBuyer(ctx, buyerID, int64((page-1)*limit), int64(limit))
	if err != nil {
		s.l.Errorf(ctx, "service.orderService.ListOrdersByBuyer: %v", err)
		return nil, err
	}

	return &ListOrdersOutput{
		Data:       orders,
		Total:      total,
		TotalPages: totalPages(total, limit),
	}, nil
}

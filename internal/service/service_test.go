package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

const (
	testWebhookSecret = "whsec_test"
	testKeySecret     = "key_secret_test"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) KeyID() string {
	return "rzp_test_key"
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes razorpay.Notes) (*razorpay.Order, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	o, _ := args.Get(0).(*razorpay.Order)
	return o, args.Error(1)
}

func (m *mockGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*razorpay.Payment)
	return p, args.Error(1)
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) PublishOrderCompleted(ctx context.Context, event kafka.OrderCompletedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockProducer) PublishSettlementFailed(ctx context.Context, event kafka.SettlementFailedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockProducer) Close() error {
	return nil
}

type fixture struct {
	mr        *miniredis.Miniredis
	evRepo    repo.EventRepository
	orderRepo repo.OrderRepository
	events    EventService
	checkout  CheckoutService
	settle    SettlementService
	orders    OrderService
	gw        *mockGateway
	prod      *mockProducer
}

func setup(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 64, MaxRetries: -1})
	t.Cleanup(func() { _ = cli.Close() })

	l := logger.InitializeTestZapLogger()
	evRepo := repo.NewRedisEventRepository(cli, l, 200)
	orderRepo := repo.NewRedisOrderRepository(cli, l, 200)

	gw := &mockGateway{}
	prod := &mockProducer{}
	prod.On("PublishOrderCompleted", mock.Anything, mock.Anything).Return(nil).Maybe()
	prod.On("PublishSettlementFailed", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		mr:        mr,
		evRepo:    evRepo,
		orderRepo: orderRepo,
		events:    NewEventService(evRepo, l),
		checkout:  NewCheckoutService(evRepo, gw, CheckoutConfig{Currency: "INR", PriceTolerance: 1}, l),
		settle: NewSettlementService(orderRepo, gw, prod, SettlementConfig{
			Currency:       "INR",
			PriceTolerance: 1,
			WebhookSecret:  testWebhookSecret,
			KeySecret:      testKeySecret,
		}, l),
		orders: NewOrderService(orderRepo, l),
		gw:     gw,
		prod:   prod,
	}
}

// seedEvent stores an event with the given ticket types directly.
func (f *fixture) seedEvent(t *testing.T, types ...models.TicketType) *models.Event {
	t.Helper()

	now := time.Now()
	ev := &models.Event{
		ID:            uuid.NewString(),
		OrganizerID:   uuid.NewString(),
		Title:         "Indie Night",
		StartDateTime: now.Add(48 * time.Hour),
		EndDateTime:   now.Add(52 * time.Hour),
		TicketTypes:   types,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ev.DeriveIsFree()
	require.NoError(t, f.evRepo.Create(context.Background(), ev))
	return ev
}

func (f *fixture) mustEvent(t *testing.T, id string) *models.Event {
	t.Helper()
	ev, err := f.evRepo.Get(context.Background(), id)
	require.NoError(t, err)
	return ev
}

func ticketType(name string, price int64, qty, sold int) models.TicketType {
	return models.TicketType{ID: uuid.NewString(), Name: name, Price: price, Quantity: qty, Sold: sold}
}

func cartNotes(t *testing.T, eventID, buyerID string, lines ...cartNoteLine) map[string]string {
	t.Helper()
	notes := map[string]string{noteEventID: eventID, noteBuyerID: buyerID}
	if len(lines) > 0 {
		raw, err := json.Marshal(lines)
		require.NoError(t, err)
		notes[noteCart] = string(raw)
	}
	return notes
}

func webhookBody(t *testing.T, event, paymentID string, amount int64, notes map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"entity":     "event",
		"account_id": "acc_test",
		"event":      event,
		"contains":   []string{"payment"},
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       paymentID,
					"entity":   "payment",
					"amount":   amount,
					"currency": "INR",
					"status":   "captured",
					"order_id": "order_test",
					"email":    "buyer@example.com",
					"contact":  "+919900000000",
					"notes":    notes,
				},
			},
		},
		"created_at": time.Now().Unix(),
	})
	require.NoError(t, err)
	return body
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/metrics"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

// BuildOrderFunc receives the current event, applies the sale to it and
// returns the order to persist. Returning an error aborts the settlement.
type BuildOrderFunc func(ev *models.Event) (*models.Order, error)

type OrderRepository interface {
	Get(ctx context.Context, oID string) (*models.Order, error)
	GetByPaymentID(ctx context.Context, pID string) (*models.Order, error)
	ListByEvent(ctx context.Context, eID string) ([]*models.Order, error)
	ListByBuyer(ctx context.Context, bID string, offset, limit int64) ([]*models.Order, int64, error)

	// Settle writes the event returned through build, the order and its
	// payment index in one transaction. If an order already exists for pID
	// it is returned with created=false and build is not called.
	Settle(ctx context.Context, eID, pID string, build BuildOrderFunc) (order *models.Order, created bool, err error)
}

type redisOrderRepository struct {
	cli        *redis.Client
	l          logger.Logger
	maxRetries int
}

func NewRedisOrderRepository(cli *redis.Client, l logger.Logger, maxRetries int) OrderRepository {
	return &redisOrderRepository{
		cli:        cli,
		l:          l,
		maxRetries: maxRetries,
	}
}

func (r *redisOrderRepository) Get(ctx context.Context, oID string) (*models.Order, error) {
	o, err := getJSON[models.Order](ctx, r.cli, orderKey(oID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.l.Errorf(ctx, "redisOrderRepository.Get: %v", err)
		}
		return nil, err
	}
	return o, nil
}

func (r *redisOrderRepository) GetByPaymentID(ctx context.Context, pID string) (*models.Order, error) {
	oID, err := r.cli.Get(ctx, paymentKey(pID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.l.Errorf(ctx, "redisOrderRepository.GetByPaymentID: %v", err)
		}
		return nil, err
	}
	return r.Get(ctx, oID)
}

func (r *redisOrderRepository) ListByEvent(ctx context.Context, eID string) ([]*models.Order, error) {
	ids, err := r.cli.ZRevRange(ctx, eventOrdersKey(eID), 0, -1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisOrderRepository.ListByEvent: %v", err)
		return nil, err
	}
	return mgetJSON[models.Order](ctx, r.cli, orderKeys(ids))
}

func (r *redisOrderRepository) ListByBuyer(ctx context.Context, bID string, offset, limit int64) ([]*models.Order, int64, error) {
	key := buyerOrdersKey(bID)

	total, err := r.cli.ZCard(ctx, key).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisOrderRepository.ListByBuyer.ZCard: %v", err)
		return nil, 0, err
	}

	ids, err := r.cli.ZRevRange(ctx, key, offset, offset+limit-1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisOrderRepository.ListByBuyer: %v", err)
		return nil, 0, err
	}

	orders, err := mgetJSON[models.Order](ctx, r.cli, orderKeys(ids))
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *redisOrderRepository) Settle(ctx context.Context, eID, pID string, build BuildOrderFunc) (*models.Order, bool, error) {
	evKey := eventKey(eID)
	payKey := paymentKey(pID)

	var (
		out     *models.Order
		created bool
	)

	txf := func(tx *redis.Tx) error {
		out, created = nil, false

		existingID, err := tx.Get(ctx, payKey).Result()
		switch {
		case err == nil:
			out, err = getJSON[models.Order](ctx, tx, orderKey(existingID))
			return err
		case !errors.Is(err, redis.Nil):
			return err
		}

		ev, err := getJSON[models.Event](ctx, tx, evKey)
		if err != nil {
			return err
		}

		o, err := build(ev)
		if err != nil {
			return err
		}
		o.PaymentID = pID

		evData, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		oData, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to marshal order: %w", err)
		}

		score := float64(o.CreatedAt.UnixMilli())
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, evKey, evData, 0)
			pipe.Set(ctx, orderKey(o.ID), oData, 0)
			pipe.Set(ctx, payKey, o.ID, 0)
			pipe.ZAdd(ctx, eventOrdersKey(o.EventID), redis.Z{Score: score, Member: o.ID})
			pipe.ZAdd(ctx, buyerOrdersKey(o.BuyerID), redis.Z{Score: score, Member: o.ID})
			return nil
		})
		if err == nil {
			out, created = o, true
		}
		return err
	}

	for i := 0; i < r.maxRetries; i++ {
		err := r.cli.Watch(ctx, txf, evKey, payKey)
		if err == nil {
			if created {
				r.l.Debugf(ctx, "Order settled: order_id=%s payment_id=%s event_id=%s", out.ID, pID, eID)
			}
			return out, created, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			metrics.SettlementRetries.Inc()
			continue
		}
		return nil, false, err
	}

	r.l.Warnf(ctx, "redisOrderRepository.Settle: payment_id=%s: %v", pID, errs.ErrSettlementConflict)
	return nil, false, errs.ErrSettlementConflict
}

func orderKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKey(id)
	}
	return keys
}

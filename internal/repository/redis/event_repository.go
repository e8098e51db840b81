package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	errs "github.com/vogiaan1904/ticketbottle-checkout/internal/errors"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/metrics"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

// EventRepository stores events as JSON documents with their ticket types
// embedded. Missing events are reported as redis.Nil.
type EventRepository interface {
	Create(ctx context.Context, ev *models.Event) error
	Get(ctx context.Context, eID string) (*models.Event, error)
	// Update applies fn to the current event inside an optimistic
	// transaction and retries when the event changes underneath it.
	Update(ctx context.Context, eID string, fn func(ev *models.Event) error) (*models.Event, error)
	// Delete removes the event and its index entries when check passes,
	// under the same optimistic transaction as Update.
	Delete(ctx context.Context, eID string, check func(ev *models.Event) error) error
	// List loads every event, newest first, optionally limited to a category.
	List(ctx context.Context, categoryID string) ([]*models.Event, error)
	// ListPage pages the newest-first index without loading other events.
	ListPage(ctx context.Context, categoryID string, offset, limit int64) ([]*models.Event, int64, error)
	ListByOrganizer(ctx context.Context, orgID string, offset, limit int64) ([]*models.Event, int64, error)
	// ListByCategory pages a category, leaving out excludeID.
	ListByCategory(ctx context.Context, categoryID, excludeID string, offset, limit int64) ([]*models.Event, int64, error)
}

type redisEventRepository struct {
	cli        *redis.Client
	l          logger.Logger
	maxRetries int
}

func NewRedisEventRepository(cli *redis.Client, l logger.Logger, maxRetries int) EventRepository {
	return &redisEventRepository{
		cli:        cli,
		l:          l,
		maxRetries: maxRetries,
	}
}

func (r *redisEventRepository) Create(ctx context.Context, ev *models.Event) error {
	key := eventKey(ev.ID)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("event %s already exists", ev.ID)
		}

		score := eventScore(ev)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, eventsIndexKey(), redis.Z{Score: score, Member: ev.ID})
			pipe.ZAdd(ctx, organizerEventsKey(ev.OrganizerID), redis.Z{Score: score, Member: ev.ID})
			if ev.CategoryID != "" {
				pipe.ZAdd(ctx, categoryEventsKey(ev.CategoryID), redis.Z{Score: score, Member: ev.ID})
			}
			return nil
		})
		return err
	}

	if err := r.watch(ctx, "Create", txf, key); err != nil {
		r.l.Errorf(ctx, "redisEventRepository.Create: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Event created: event_id=%s organizer_id=%s", ev.ID, ev.OrganizerID)

	return nil
}

func (r *redisEventRepository) Get(ctx context.Context, eID string) (*models.Event, error) {
	ev, err := getJSON[models.Event](ctx, r.cli, eventKey(eID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.l.Errorf(ctx, "redisEventRepository.Get: %v", err)
		}
		return nil, err
	}
	return ev, nil
}

func (r *redisEventRepository) Update(ctx context.Context, eID string, fn func(ev *models.Event) error) (*models.Event, error) {
	key := eventKey(eID)
	var updated *models.Event

	txf := func(tx *redis.Tx) error {
		ev, err := getJSON[models.Event](ctx, tx, key)
		if err != nil {
			return err
		}
		prevCategory := ev.CategoryID

		if err := fn(ev); err != nil {
			return err
		}
		ev.UpdatedAt = time.Now()

		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if ev.CategoryID != prevCategory {
				if prevCategory != "" {
					pipe.ZRem(ctx, categoryEventsKey(prevCategory), ev.ID)
				}
				if ev.CategoryID != "" {
					pipe.ZAdd(ctx, categoryEventsKey(ev.CategoryID), redis.Z{Score: eventScore(ev), Member: ev.ID})
				}
			}
			return nil
		})
		if err == nil {
			updated = ev
		}
		return err
	}

	if err := r.watch(ctx, "Update", txf, key); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisEventRepository) Delete(ctx context.Context, eID string, check func(ev *models.Event) error) error {
	key := eventKey(eID)

	txf := func(tx *redis.Tx) error {
		ev, err := getJSON[models.Event](ctx, tx, key)
		if err != nil {
			return err
		}
		if err := check(ev); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, eventsIndexKey(), ev.ID)
			pipe.ZRem(ctx, organizerEventsKey(ev.OrganizerID), ev.ID)
			if ev.CategoryID != "" {
				pipe.ZRem(ctx, categoryEventsKey(ev.CategoryID), ev.ID)
			}
			return nil
		})
		return err
	}

	if err := r.watch(ctx, "Delete", txf, key); err != nil {
		return err
	}

	r.l.Debugf(ctx, "Event deleted: event_id=%s", eID)
	return nil
}

func (r *redisEventRepository) List(ctx context.Context, categoryID string) ([]*models.Event, error) {
	ids, err := r.cli.ZRevRange(ctx, listIndexKey(categoryID), 0, -1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisEventRepository.List: %v", err)
		return nil, err
	}

	return mgetJSON[models.Event](ctx, r.cli, eventKeys(ids))
}

func (r *redisEventRepository) ListPage(ctx context.Context, categoryID string, offset, limit int64) ([]*models.Event, int64, error) {
	return r.listIndex(ctx, listIndexKey(categoryID), offset, limit)
}

func (r *redisEventRepository) ListByOrganizer(ctx context.Context, orgID string, offset, limit int64) ([]*models.Event, int64, error) {
	return r.listIndex(ctx, organizerEventsKey(orgID), offset, limit)
}

func (r *redisEventRepository) ListByCategory(ctx context.Context, categoryID, excludeID string, offset, limit int64) ([]*models.Event, int64, error) {
	ids, err := r.cli.ZRevRange(ctx, categoryEventsKey(categoryID), 0, -1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisEventRepository.ListByCategory: %v", err)
		return nil, 0, err
	}
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == excludeID })

	total := int64(len(ids))
	start := min(offset, total)
	end := min(offset+limit, total)

	evs, err := mgetJSON[models.Event](ctx, r.cli, eventKeys(ids[start:end]))
	if err != nil {
		return nil, 0, err
	}
	return evs, total, nil
}

func (r *redisEventRepository) listIndex(ctx context.Context, key string, offset, limit int64) ([]*models.Event, int64, error) {
	total, err := r.cli.ZCard(ctx, key).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisEventRepository.listIndex.ZCard: %v", err)
		return nil, 0, err
	}

	ids, err := r.cli.ZRevRange(ctx, key, offset, offset+limit-1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisEventRepository.listIndex: %v", err)
		return nil, 0, err
	}

	evs, err := mgetJSON[models.Event](ctx, r.cli, eventKeys(ids))
	if err != nil {
		return nil, 0, err
	}
	return evs, total, nil
}

// watch runs txf under WATCH on keys, retrying when another writer commits
// first.
func (r *redisEventRepository) watch(ctx context.Context, op string, txf func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < r.maxRetries; i++ {
		err := r.cli.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			metrics.SettlementRetries.Inc()
			continue
		}
		return err
	}

	r.l.Warnf(ctx, "redisEventRepository.%s: keys=%v: %v", op, keys, errs.ErrSettlementConflict)
	return errs.ErrSettlementConflict
}

func listIndexKey(categoryID string) string {
	if categoryID == "" {
		return eventsIndexKey()
	}
	return categoryEventsKey(categoryID)
}

func eventScore(ev *models.Event) float64 {
	return float64(ev.CreatedAt.UnixMilli())
}

func eventKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKey(id)
	}
	return keys
}

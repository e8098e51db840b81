package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func eventKey(eID string) string {
	return fmt.Sprintf("checkout:event:%s", eID)
}

func eventsIndexKey() string {
	return "checkout:events"
}

func organizerEventsKey(orgID string) string {
	return fmt.Sprintf("checkout:organizer:%s:events", orgID)
}

func categoryEventsKey(catID string) string {
	return fmt.Sprintf("checkout:category:%s:events", catID)
}

func orderKey(oID string) string {
	return fmt.Sprintf("checkout:order:%s", oID)
}

// paymentKey maps an external payment id to the order settled for it.
func paymentKey(pID string) string {
	return fmt.Sprintf("checkout:order:payment:%s", pID)
}

func eventOrdersKey(eID string) string {
	return fmt.Sprintf("checkout:event:%s:orders", eID)
}

func buyerOrdersKey(bID string) string {
	return fmt.Sprintf("checkout:buyer:%s:orders", bID)
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, cli stringGetter, key string) (*T, error) {
	data, err := cli.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// mgetJSON loads documents in key order, skipping keys that no longer exist.
func mgetJSON[T any](ctx context.Context, cli redis.Cmdable, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	vals, err := cli.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var doc T
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, &doc)
	}
	return out, nil
}

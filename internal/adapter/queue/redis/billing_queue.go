package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultQueueKey = "billing:jobs"

// BillingQueue implements ports.BillingQueue on a Redis list.
// Producers LPUSH invoice ids; consumers BRPOP them, so delivery is FIFO.
type BillingQueue struct {
	client       *goredis.Client
	key          string
	blockTimeout time.Duration
}

// NewBillingQueue creates a Redis-backed billing work queue.
func NewBillingQueue(client *goredis.Client) *BillingQueue {
	return &BillingQueue{
		client:       client,
		key:          defaultQueueKey,
		blockTimeout: time.Second,
	}
}

// Publish enqueues an invoice id for charging.
func (q *BillingQueue) Publish(ctx context.Context, invoiceID int64) error {
	if err := q.client.LPush(ctx, q.key, strconv.FormatInt(invoiceID, 10)).Err(); err != nil {
		return fmt.Errorf("redis queue publish: %w", err)
	}
	return nil
}

// Consume blocks until an invoice id is available or ctx is cancelled.
// It pops in bounded intervals so cancellation is observed promptly.
func (q *BillingQueue) Consume(ctx context.Context) (int64, error) {
	for {
		vals, err := q.client.BRPop(ctx, q.blockTimeout, q.key).Result()
		if err != nil {
			if err == goredis.Nil {
				// Pop timed out with an empty list, re-check ctx and block again.
				if ctx.Err() != nil {
					return 0, ctx.Err()
				}
				continue
			}
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, fmt.Errorf("redis queue consume: %w", err)
		}
		id, err := strconv.ParseInt(vals[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("redis queue consume: malformed payload %q: %w", vals[1], err)
		}
		return id, nil
	}
}

// Len reports the number of invoice ids waiting in the queue.
func (q *BillingQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis queue len: %w", err)
	}
	return n, nil
}

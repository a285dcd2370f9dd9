package notification

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey     = "notifications"
	delayedKey   = "notifications:delayed"
	failedKey    = "notifications:failed"
	dedupeKeyFmt = "notifications:seen:"
	dedupeTTL    = 24 * time.Hour
)

// Dispatcher pushes jobs onto the broker. Enqueue is best-effort: a broker
// failure is logged and swallowed so it never fails the triggering request.
type Dispatcher struct {
	redis *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{redis: rdb}
}

func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.Created.IsZero() {
		job.Created = time.Now()
	}

	// Duplicate ids are collapsed here; SET NX holds the claim.
	if job.ID != "" {
		ok, err := d.redis.SetNX(ctx, dedupeKeyFmt+job.ID, 1, dedupeTTL).Result()
		if err != nil {
			logger.Errorf("Failed to reserve notification id %s: %v", job.ID, err)
			metrics.RecordNotificationJob("enqueue_failed")
			return nil
		}
		if !ok {
			logger.Debugf("Duplicate notification %s dropped", job.ID)
			return nil
		}
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if job.Delay > 0 {
		due := float64(time.Now().Add(job.Delay).Unix())
		if err := d.redis.ZAdd(ctx, delayedKey, redis.Z{Score: due, Member: data}).Err(); err != nil {
			logger.Errorf("Failed to queue delayed notification for recipient %d: %v", job.RecipientID, err)
			metrics.RecordNotificationJob("enqueue_failed")
			return nil
		}
	} else {
		if err := d.redis.LPush(ctx, queueKey, data).Err(); err != nil {
			logger.Errorf("Failed to queue notification for recipient %d: %v", job.RecipientID, err)
			metrics.RecordNotificationJob("enqueue_failed")
			return nil
		}
	}

	metrics.RecordNotificationJob("enqueued")
	logger.Infof("Notification queued: %s for recipient %d", job.Type, job.RecipientID)
	return nil
}

// PromoteDue moves delayed jobs whose time has come onto the main queue.
// Called periodically by the worker loop.
func (d *Dispatcher) PromoteDue(ctx context.Context, now time.Time) int {
	due, err := d.redis.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "0",
		Max: formatScore(now),
	}).Result()
	if err != nil || len(due) == 0 {
		return 0
	}

	promoted := 0
	for _, member := range due {
		if removed, err := d.redis.ZRem(ctx, delayedKey, member).Result(); err != nil || removed == 0 {
			continue
		}
		if err := d.redis.LPush(ctx, queueKey, member).Err(); err != nil {
			logger.Errorf("Failed to promote delayed notification: %v", err)
			continue
		}
		promoted++
	}

	return promoted
}

func (d *Dispatcher) QueueLength(ctx context.Context) int64 {
	length, _ := d.redis.LLen(ctx, queueKey).Result()
	return length
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

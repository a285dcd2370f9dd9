package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const maxTries = 3

// Pusher delivers a notification to the recipient's personal channel if
// they have a live connection. A false return means nobody was listening,
// which is fine: the durable record is already written.
type Pusher interface {
	PushToUser(recipientID int, event string, data any) bool
}

// Worker drains the queue: durable insert first, then a live push. A
// failed insert is retried up to maxTries before the job moves to the
// failed list.
type Worker struct {
	redis      *redis.Client
	repo       Repository
	pusher     Pusher
	retryDelay time.Duration
}

func NewWorker(rdb *redis.Client, repo Repository, pusher Pusher) *Worker {
	return &Worker{
		redis:      rdb,
		repo:       repo,
		pusher:     pusher,
		retryDelay: 5 * time.Second,
	}
}

func (w *Worker) Start(ctx context.Context) {
	logger.Info("notification worker started")

	dispatcher := NewDispatcher(w.redis)
	promote := time.NewTicker(time.Second)
	defer promote.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		case <-promote.C:
			dispatcher.PromoteDue(ctx, time.Now())
		default:
			if err := w.processNext(ctx); err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				// Broker unreachable: back off instead of spinning on a
				// failing BRPOP.
				logger.Errorf("Notification queue unavailable: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(w.retryDelay):
				}
			}
		}
		metrics.NotificationQueueLength.Set(float64(dispatcher.QueueLength(ctx)))
	}
}

func (w *Worker) processNext(ctx context.Context) error {
	result, err := w.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		metrics.RecordNotificationJob("malformed")
		return nil
	}

	job.Tries++
	if err := w.deliver(ctx, job); err != nil {
		logger.Errorf("Failed to deliver notification %s: %v", job.ID, err)

		if job.Tries < maxTries {
			// Park the job in the delayed set so the queue keeps
			// draining while this one waits out its retry delay.
			w.requeueLater(job)
			metrics.RecordNotificationJob("retried")
		} else {
			logger.Errorf("Notification %s failed after %d attempts", job.ID, maxTries)
			w.saveFailed(job, err)
		}
		return nil
	}

	metrics.RecordNotificationJob("delivered")
	return nil
}

func (w *Worker) requeueLater(job Job) {
	data, _ := json.Marshal(job)
	w.redis.ZAdd(context.Background(), delayedKey, redis.Z{
		Score:  float64(time.Now().Add(w.retryDelay).Unix()),
		Member: string(data),
	})
}

func (w *Worker) deliver(ctx context.Context, job Job) error {
	record := &Notification{
		RecipientID:   job.RecipientID,
		RecipientRole: job.RecipientRole,
		Type:          job.Type,
		Payload:       job.Payload,
	}
	if err := w.repo.Insert(ctx, record); err != nil {
		return err
	}

	if w.pusher != nil {
		if delivered := w.pusher.PushToUser(job.RecipientID, "notification", record); !delivered {
			logger.Debugf("Recipient %d offline, notification %d stored for pull", job.RecipientID, record.ID)
		}
	}

	return nil
}

func (w *Worker) saveFailed(job Job, err error) {
	failed := map[string]any{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	w.redis.LPush(context.Background(), failedKey, data)
	metrics.RecordNotificationJob("failed")
}

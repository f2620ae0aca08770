package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueuePhotoBlobs is the Redis list key for photo blob cleanup jobs.
	QueuePhotoBlobs = "worker:photo-blobs"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times a failed job is re-queued before it moves to the DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
	// dequeueWait bounds one BLPOP so the worker notices cancellation.
	dequeueWait = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypePhotoBlobDelete JobType = "photo_blob_delete"
)

// PhotoBlobPayload is the payload for photo blob cleanup jobs.
type PhotoBlobPayload struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	StorageKey string    `json:"storage_key"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewJob wraps payload in an envelope with a fresh id.
func NewJob(t JobType, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   body,
		CreatedAt: time.Now(),
	}, nil
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueuePhotoBlobDelete enqueues removal of a deleted photo's file.
func (q *Queue) EnqueuePhotoBlobDelete(ctx context.Context, payload PhotoBlobPayload) error {
	job, err := NewJob(JobTypePhotoBlobDelete, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueuePhotoBlobs, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued photo blob delete", zap.String("job_id", job.ID), zap.String("photo_id", payload.PhotoID.String()))
	return nil
}

// Dequeue waits briefly for a job. It returns a nil job when none arrived or the payload
// was unreadable.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, dequeueWait, QueuePhotoBlobs).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// retryTarget counts the failure on job and returns the list it goes to next: the work
// queue for the first MaxRetries failures, the DLQ after that.
func retryTarget(job *Job) string {
	job.Attempt++
	if job.Attempt > MaxRetries {
		return QueueDLQ
	}
	return QueuePhotoBlobs
}

// Retry re-enqueues a failed job, or moves it to the DLQ once its retries are spent.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	target := retryTarget(job)
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if target == QueueDLQ {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, QueuePhotoBlobs, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

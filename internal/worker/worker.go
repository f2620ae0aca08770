package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gardenhub/backend/pkg/queue"
	"github.com/gardenhub/backend/pkg/storage"
)

const requeueTimeout = 5 * time.Second

// JobQueue is the part of queue.Queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// PhotoBlobProcessor removes stored files of deleted photos.
type PhotoBlobProcessor struct {
	blobs  storage.Blob
	queue  JobQueue
	logger *zap.Logger
}

// NewPhotoBlobProcessor creates a photo blob cleanup processor.
func NewPhotoBlobProcessor(blobs storage.Blob, q JobQueue, logger *zap.Logger) *PhotoBlobProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoBlobProcessor{blobs: blobs, queue: q, logger: logger}
}

// Process executes one cleanup job.
func (p *PhotoBlobProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePhotoBlobDelete {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PhotoBlobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.StorageKey == "" {
		p.logger.Warn("photo blob job without key", zap.String("job_id", job.ID))
		return nil
	}
	if err := p.blobs.Delete(ctx, payload.StorageKey); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	p.logger.Info("photo blob deleted", zap.String("photo_id", payload.PhotoID.String()), zap.String("key", payload.StorageKey))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *PhotoBlobProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("photo blob worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			p.requeue(ctx, job)
			sleep(ctx, queue.RetryBackoff)
		}
	}
}

// requeue hands a failed job back to the queue. It survives ctx being cancelled so a job
// interrupted by shutdown is not lost.
func (p *PhotoBlobProcessor) requeue(ctx context.Context, job *queue.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()
	if err := p.queue.Retry(ctx, job); err != nil {
		p.logger.Error("retry enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

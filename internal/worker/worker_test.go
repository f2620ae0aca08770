package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/pkg/queue"
)

type fakeBlob struct {
	mu      sync.Mutex
	deleted []string
	err     error
	// block makes Delete wait for ctx and fail with its error.
	block bool
	// started is closed when a blocking Delete begins.
	started chan struct{}
}

func (f *fakeBlob) Put(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", nil
}

func (f *fakeBlob) Delete(ctx context.Context, key string) error {
	if f.block {
		close(f.started)
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlob) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeQueue struct {
	mu       sync.Mutex
	jobs     []*queue.Job
	retried  []*queue.Job
	retryErr []error
}

func (q *fakeQueue) Dequeue(context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Retry(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retried = append(q.retried, job)
	q.retryErr = append(q.retryErr, ctx.Err())
	return nil
}

func blobJob(t *testing.T, key string) *queue.Job {
	t.Helper()
	job, err := queue.NewJob(queue.JobTypePhotoBlobDelete, queue.PhotoBlobPayload{PhotoID: uuid.New(), StorageKey: key})
	require.NoError(t, err)
	return job
}

func TestProcessDeletesBlob(t *testing.T) {
	blobs := &fakeBlob{}
	p := NewPhotoBlobProcessor(blobs, &fakeQueue{}, nil)

	require.NoError(t, p.Process(context.Background(), blobJob(t, "photos/a.png")))
	assert.Equal(t, []string{"photos/a.png"}, blobs.keys())
}

func TestProcessRejectsUnknownType(t *testing.T) {
	p := NewPhotoBlobProcessor(&fakeBlob{}, &fakeQueue{}, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "x", Type: "other"})
	assert.Error(t, err)
}

func TestProcessSurfacesBlobError(t *testing.T) {
	p := NewPhotoBlobProcessor(&fakeBlob{err: errors.New("bucket gone")}, &fakeQueue{}, nil)
	assert.Error(t, p.Process(context.Background(), blobJob(t, "photos/a.png")))
}

func TestRunDrainsQueueUntilCancelled(t *testing.T) {
	blobs := &fakeBlob{}
	q := &fakeQueue{jobs: []*queue.Job{blobJob(t, "photos/a.png"), blobJob(t, "photos/b.png")}}
	p := NewPhotoBlobProcessor(blobs, q, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(blobs.keys()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Empty(t, q.retried)
}

func TestRunRequeuesJobInterruptedByShutdown(t *testing.T) {
	blobs := &fakeBlob{block: true, started: make(chan struct{})}
	job := blobJob(t, "photos/a.png")
	q := &fakeQueue{jobs: []*queue.Job{job}}
	p := NewPhotoBlobProcessor(blobs, q, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	<-blobs.started
	cancel()
	<-done

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.retried, 1)
	assert.Equal(t, job.ID, q.retried[0].ID)
	assert.NoError(t, q.retryErr[0], "the re-push must not run on the cancelled context")
}

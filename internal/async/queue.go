package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one screenshot waiting for OCR and import.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor handles a single job. Implementations must be safe for concurrent use.
type Processor interface {
	ProcessFile(ctx context.Context, path string) error
}

// ResultHook observes every finished job; err is nil on success.
type ResultHook func(job Job, err error)

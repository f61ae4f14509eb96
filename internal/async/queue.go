package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for ingestion.
type Job struct {
	Path        string
	FileName    string
	Size        int64
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job. Jobs are independent; order across workers is not kept.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

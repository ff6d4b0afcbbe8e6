package ingest

import (
	"context"
	"time"
)

// Message is one record read from the queue.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

// Source delivers queue messages one at a time. Poll returns (nil, nil)
// when nothing arrived within timeout.
type Source interface {
	Poll(ctx context.Context, timeout time.Duration) (*Message, error)
	Close() error
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

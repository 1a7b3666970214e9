package goGuard

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher hands transitions to the sink on its own goroutine so
// Login, Logout and Revalidate never wait on sink I/O, except in blocking
// mode with a full queue.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	// mu orders Emit against Close: sends hold the read lock, Close takes the
	// write lock before closing queue.
	mu     sync.RWMutex
	closed bool
	queue  chan AuditEvent

	drained chan struct{}
	dropped atomic.Uint64
}

// newAuditDispatcher returns nil when auditing is disabled or there is no
// sink; a nil dispatcher accepts and discards every call.
func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled || sink == nil {
		return nil
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan AuditEvent, max(cfg.BufferSize, 1)),
		drained:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *auditDispatcher) deliver() {
	defer close(d.drained)
	ctx := context.Background()
	for event := range d.queue {
		d.sink.Emit(ctx, event)
	}
}

// Emit queues event. With dropIfFull a full queue drops and counts it;
// otherwise Emit waits for room or ctx.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	}
}

// Close stops accepting transitions and returns once the queue has been
// delivered.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.drained
}

func (d *auditDispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.queue)
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

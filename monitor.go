package goGuard

import (
	"context"
	"sync"
	"time"
)

// monitor runs tick once immediately and then on every interval until stop.
type monitor struct {
	interval time.Duration
	tick     func(context.Context)

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func startMonitor(interval time.Duration, tick func(context.Context)) *monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &monitor{
		interval: interval,
		tick:     tick,
		cancel:   cancel,
	}

	m.wg.Add(1)
	go m.run(ctx)

	return m
}

func (m *monitor) run(ctx context.Context) {
	defer m.wg.Done()

	m.tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// stop cancels the loop and waits for an in-flight tick to return.
func (m *monitor) stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
	})
}

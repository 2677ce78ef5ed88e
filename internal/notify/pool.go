// Package notify delivers winner notifications on a bounded worker pool.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/observability/metrics"
)

var (
	// ErrPoolSaturated is returned by Submit when the queue is full. The
	// task is not run.
	ErrPoolSaturated = errors.New("notification pool saturated")
	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = errors.New("notification pool closed")
)

// Task is one unit of notification work. Channel labels metrics and logs.
type Task struct {
	Channel string
	Run     func(ctx context.Context) error
	ctx     context.Context
}

// Pool runs tasks on a fixed number of workers fed by a bounded queue.
// Submit never blocks: when the queue is full the task is rejected.
type Pool struct {
	tasks   chan Task
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines sharing a queue of queueSize tasks.
// Each task gets at most timeout to finish; zero means no limit.
func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{tasks: make(chan Task, queueSize), timeout: timeout}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues t. The trace id of ctx is carried over to the task, its
// cancellation is not.
func (p *Pool) Submit(ctx context.Context, t Task) error {
	t.ctx = logger.WithTraceID(context.Background(), logger.TraceID(ctx))

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrPoolSaturated
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t Task) {
	ctx := t.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.Run(ctx)
	}()

	if err != nil {
		metrics.RecordNotification(t.Channel, "failed")
		logger.ErrorCtx(ctx, "notification task failed", zap.String("channel", t.Channel), zap.Error(err))
		return
	}
	metrics.RecordNotification(t.Channel, "sent")
}

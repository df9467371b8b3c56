package workflow

import (
	"context"
	"sync"
)

// Dispatcher schedules work on the event loop goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Loop is a single-goroutine event loop. Everything posted to it runs
// sequentially on the goroutine that called Run.
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop whose queue holds up to size pending events.
func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		events: make(chan func(), size),
		done:   make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop has stopped. Do not call it from the loop goroutine with a full queue.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run processes events until Stop is called or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.events:
			fn()
		}
	}
}

// Stop makes Run return and discards later posts.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

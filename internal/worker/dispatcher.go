package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Dispatcher runs each submission on its own goroutine. There is no queue and
// no coalescing: overlapping submissions run side by side.
type Dispatcher struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	stopped  bool
	inFlight atomic.Int64
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewDispatcher() *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{ctx: ctx, cancel: cancel}
}

// Reservation holds a place for one submission that Stop will wait for.
// Exactly one of Start or Release must be called.
type Reservation interface {
	Start(fn func(ctx context.Context))
	Release()
}

type reservation struct {
	d    *Dispatcher
	once sync.Once
}

// Reserve claims a place unless the dispatcher is stopping. Work that has to
// happen only once a submission is sure to run goes between Reserve and Start.
func (d *Dispatcher) Reserve() (Reservation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil, false
	}
	d.wg.Add(1)
	d.inFlight.Add(1)
	return &reservation{d: d}, true
}

// Start runs fn on its own goroutine. fn gets a context that is only canceled
// when Stop gives up waiting.
func (r *reservation) Start(fn func(ctx context.Context)) {
	r.once.Do(func() {
		go r.d.run(fn)
	})
}

func (r *reservation) Release() {
	r.once.Do(r.d.done)
}

func (d *Dispatcher) run(fn func(ctx context.Context)) {
	defer d.done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Dispatcher: submission panicked: %v", r)
		}
	}()
	fn(d.ctx)
}

func (d *Dispatcher) done() {
	d.inFlight.Add(-1)
	d.wg.Done()
}

func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Stop refuses new work and waits for in-flight submissions. When ctx ends
// first, the remaining submissions are canceled and ctx.Err() is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		log.Printf("Dispatcher: canceling %d in-flight submissions", d.InFlight())
		d.cancel()
		<-done
		return ctx.Err()
	}
}

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher runs notification sends in the background. Failures are logged
// and never reach the request that triggered them.
type Dispatcher struct {
	logger  *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(logger *logrus.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{logger: logger, timeout: timeout}
}

// Dispatch starts fn on its own goroutine with a fresh context bounded by
// the dispatcher timeout.
func (d *Dispatcher) Dispatch(task string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.WithField("task", task).Errorf("notification panicked: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.logger.WithError(err).WithField("task", task).Error("notification failed")
		}
	}()
}

// Wait blocks until every dispatched send has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/usecase"
)

var (
	// ErrDispatcherBusy is returned when the in-flight limit is reached; the notification is dropped.
	ErrDispatcherBusy = errors.New("notification dispatcher is busy")
	// ErrDispatcherClosed is returned after Close.
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxInFlight = 16
)

// Dispatcher hands notifications to a channel in the background so callers never wait on
// delivery. Delivery failures are logged.
type Dispatcher struct {
	next    usecase.Notifier
	timeout time.Duration
	slots   chan struct{}
	logger  logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

// NewDispatcher wraps next. A zero timeout or maxInFlight selects the defaults.
func NewDispatcher(next usecase.Notifier, timeout time.Duration, maxInFlight int, logger logrus.FieldLogger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Dispatcher{
		next:    next,
		timeout: timeout,
		slots:   make(chan struct{}, maxInFlight),
		logger:  logger,
	}
}

func (d *Dispatcher) NotifyAchievement(ctx context.Context, user entity.User, a entity.Achievement) error {
	return d.dispatch(ctx, "achievement", func(ctx context.Context) error {
		return d.next.NotifyAchievement(ctx, user, a)
	})
}

func (d *Dispatcher) NotifyMilestone(ctx context.Context, user entity.User, m entity.Milestone) error {
	return d.dispatch(ctx, "milestone", func(ctx context.Context) error {
		return d.next.NotifyMilestone(ctx, user, m)
	})
}

func (d *Dispatcher) NotifyStreak(ctx context.Context, user entity.User, days int) error {
	return d.dispatch(ctx, "streak", func(ctx context.Context) error {
		return d.next.NotifyStreak(ctx, user, days)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, kind string, send func(context.Context) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.slots <- struct{}{}:
	default:
		return ErrDispatcherBusy
	}

	// Delivery outlives the request that triggered it.
	detached := context.WithoutCancel(ctx)
	d.wg.Go(func() {
		defer func() { <-d.slots }()
		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			d.logger.WithError(err).WithField("kind", kind).Warn("notification delivery failed")
		}
	})
	return nil
}

// Close stops accepting notifications and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

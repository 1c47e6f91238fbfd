package notify

import (
	"context"
	"errors"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/usecase"
)

// Fanout delivers every notification to all channels and joins their errors.
type Fanout []usecase.Notifier

func (f Fanout) NotifyAchievement(ctx context.Context, user entity.User, a entity.Achievement) error {
	return f.each(func(n usecase.Notifier) error { return n.NotifyAchievement(ctx, user, a) })
}

func (f Fanout) NotifyMilestone(ctx context.Context, user entity.User, m entity.Milestone) error {
	return f.each(func(n usecase.Notifier) error { return n.NotifyMilestone(ctx, user, m) })
}

func (f Fanout) NotifyStreak(ctx context.Context, user entity.User, days int) error {
	return f.each(func(n usecase.Notifier) error { return n.NotifyStreak(ctx, user, days) })
}

func (f Fanout) each(fn func(usecase.Notifier) error) error {
	var errs []error
	for _, n := range f {
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package usecase

import (
	"context"

	"github.com/eslsoft/vocengage/internal/entity"
)

// Notifier delivers engagement events to the user. Implementations decide the channel; callers
// treat every failure as non-fatal.
type Notifier interface {
	NotifyAchievement(ctx context.Context, user entity.User, achievement entity.Achievement) error
	NotifyMilestone(ctx context.Context, user entity.User, milestone entity.Milestone) error
	NotifyStreak(ctx context.Context, user entity.User, days int) error
}

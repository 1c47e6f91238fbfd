package repository

import (
	"context"

	"github.com/eslsoft/vocengage/internal/entity"
)

// StatsRepository persists the derived engagement aggregate with optimistic concurrency.
type StatsRepository interface {
	// Get returns nil without error when the user has no stats yet.
	Get(ctx context.Context, userID int64) (*entity.UserEngagementStats, error)
	// Save writes stats if the stored version still equals stats.Version (0 means "not stored yet")
	// and returns the record with its incremented version. A lost race yields entity.ErrStatsConflict.
	Save(ctx context.Context, stats *entity.UserEngagementStats) (*entity.UserEngagementStats, error)
}

// AchievementRepository is the append-only set of unlocked achievements.
type AchievementRepository interface {
	// Create returns entity.ErrAchievementAlreadyUnlocked when the pair already exists.
	Create(ctx context.Context, unlock entity.AchievementUnlock) error
	ListByUser(ctx context.Context, userID int64) ([]entity.AchievementUnlock, error)
}

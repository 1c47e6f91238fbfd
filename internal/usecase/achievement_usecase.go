package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/internal/usecase/achievement"
)

// AchievementUsecase evaluates the achievement registry and records unlocks.
type AchievementUsecase interface {
	// Evaluate unlocks every rule that holds for stats (and the optional triggering session) and
	// returns the ids unlocked by this call.
	Evaluate(ctx context.Context, userID int64, stats entity.EngagementTotals, session *entity.Session) ([]string, error)
	// Check evaluates the registry against the user's stored stats.
	Check(ctx context.Context, userID int64) ([]entity.Achievement, error)
	Unlocked(ctx context.Context, userID int64) ([]entity.AchievementUnlock, error)
	Registry() []entity.Achievement
}

// AchievementEngine is the AchievementUsecase the engagement coordinator drives. Its caller-locked
// evaluation keeps it implementable only by NewAchievementUsecase.
type AchievementEngine interface {
	AchievementUsecase
	evaluateLocked(ctx context.Context, userID int64, stats entity.EngagementTotals, session *entity.Session) ([]entity.Achievement, error)
}

var _ AchievementEngine = (*achievementEngine)(nil)

// NewAchievementUsecase wires the registry with its storage and notifier.
func NewAchievementUsecase(
	registry *achievement.Registry,
	unlocks repository.AchievementRepository,
	stats repository.StatsRepository,
	sessions repository.SessionRepository,
	notifier Notifier,
	locks *UserLocks,
	opts EngagementOptions,
	logger logrus.FieldLogger,
) AchievementEngine {
	return newAchievementEngine(registry, unlocks, stats, sessions, notifier, locks, opts, logger)
}

func newAchievementEngine(
	registry *achievement.Registry,
	unlocks repository.AchievementRepository,
	stats repository.StatsRepository,
	sessions repository.SessionRepository,
	notifier Notifier,
	locks *UserLocks,
	opts EngagementOptions,
	logger logrus.FieldLogger,
) *achievementEngine {
	return &achievementEngine{
		registry: registry,
		unlocks:  unlocks,
		stats:    stats,
		sessions: sessions,
		notifier: notifier,
		locks:    locks,
		location: opts.location(),
		logger:   logger,
		clock:    time.Now,
	}
}

type achievementEngine struct {
	registry *achievement.Registry
	unlocks  repository.AchievementRepository
	stats    repository.StatsRepository
	sessions repository.SessionRepository
	notifier Notifier
	locks    *UserLocks
	location *time.Location
	logger   logrus.FieldLogger
	clock    func() time.Time
}

func (e *achievementEngine) Evaluate(ctx context.Context, userID int64, stats entity.EngagementTotals, session *entity.Session) ([]string, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	unlock, err := e.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	unlocked, err := e.evaluateLocked(ctx, userID, stats, session)
	return lo.Map(unlocked, func(a entity.Achievement, _ int) string { return a.ID }), err
}

func (e *achievementEngine) Check(ctx context.Context, userID int64) ([]entity.Achievement, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	unlock, err := e.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := e.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals := entity.EngagementTotals{}
	if stored != nil {
		totals = stored.EngagementTotals
		totals.CurrentStreakDays = totals.CurrentStreakAsOf(entity.DayOf(e.clock(), e.location))
	}
	return e.evaluateLocked(ctx, userID, totals, nil)
}

// evaluateLocked expects the caller to hold the user's lock. Unlocks recorded before a storage
// failure are still returned alongside the error.
func (e *achievementEngine) evaluateLocked(ctx context.Context, userID int64, stats entity.EngagementTotals, session *entity.Session) ([]entity.Achievement, error) {
	existing, err := e.unlocks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := lo.SliceToMap(existing, func(u entity.AchievementUnlock) (string, struct{}) {
		return u.AchievementID, struct{}{}
	})

	in := achievement.Input{
		UserID:   userID,
		Stats:    stats,
		Session:  session,
		Location: e.location,
		History:  e.sessions,
	}
	logger := e.logger.WithField("user_id", userID)
	user := entity.ResolveUser(ctx, userID)

	var unlocked []entity.Achievement
	for _, rule := range e.registry.Rules() {
		if _, ok := have[rule.ID]; ok {
			continue
		}
		holds, err := rule.Predicate(ctx, in)
		if err != nil {
			logger.WithError(err).WithField("achievement", rule.ID).Warn("achievement predicate failed")
			continue
		}
		if !holds {
			continue
		}

		err = e.unlocks.Create(ctx, entity.AchievementUnlock{UserID: userID, AchievementID: rule.ID, UnlockedAt: e.clock()})
		if errors.Is(err, entity.ErrAchievementAlreadyUnlocked) {
			continue
		}
		if err != nil {
			return unlocked, fmt.Errorf("unlock %s: %w", rule.ID, err)
		}
		unlocked = append(unlocked, rule.Achievement)
		logger.WithField("achievement", rule.ID).Info("achievement unlocked")

		if err := e.notifier.NotifyAchievement(ctx, user, rule.Achievement); err != nil {
			logger.WithError(err).WithField("achievement", rule.ID).Warn("achievement notification failed")
		}
	}
	return unlocked, nil
}

func (e *achievementEngine) Unlocked(ctx context.Context, userID int64) ([]entity.AchievementUnlock, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return e.unlocks.ListByUser(ctx, userID)
}

func (e *achievementEngine) Registry() []entity.Achievement {
	return e.registry.Achievements()
}

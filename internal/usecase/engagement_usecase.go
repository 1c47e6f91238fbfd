package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/internal/usecase/achievement"
	"github.com/eslsoft/vocengage/pkg/streak"
)

const (
	defaultMaxRetries       = 3
	defaultRecomputeWorkers = 4
)

// EngagementOptions tunes the engagement coordinator.
type EngagementOptions struct {
	// Location decides the calendar day a session counts for. Nil means UTC.
	Location *time.Location
	// MaxRetries bounds how often a stats write lost to a concurrent writer is retried.
	MaxRetries int
	// Workers bounds the users recomputed in parallel by RecomputeAll.
	Workers int
}

func (o EngagementOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o EngagementOptions) maxRetries() int {
	if o.MaxRetries <= 0 {
		return defaultMaxRetries
	}
	return o.MaxRetries
}

func (o EngagementOptions) workers() int {
	if o.Workers <= 0 {
		return defaultRecomputeWorkers
	}
	return o.Workers
}

// CompletionResult is the outcome of completing a session.
type CompletionResult struct {
	Session    *entity.Session
	Stats      *entity.UserEngagementStats
	Unlocked   []entity.Achievement
	Milestones []entity.Milestone
	StreakDays int
}

// RecomputeSummary reports a bulk recompute over all users.
type RecomputeSummary struct {
	Users   int `json:"users"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// EngagementUsecase keeps the per-user aggregate stats in step with completed sessions.
type EngagementUsecase interface {
	// OnSessionCompleted applies the final counters, completes the session and folds it into the
	// user's stats. Achievements and notifications follow once the stats are durable.
	OnSessionCompleted(ctx context.Context, userID int64, sessionID string, update entity.SessionUpdate) (*CompletionResult, error)
	// RecomputeAllFromHistory rebuilds the user's stats from every completed session. It has no
	// achievement or notification side effects.
	RecomputeAllFromHistory(ctx context.Context, userID int64) (*entity.UserEngagementStats, error)
	// RecomputeAll runs RecomputeAllFromHistory for every user with completed sessions.
	RecomputeAll(ctx context.Context) (RecomputeSummary, error)
	// GetStats returns the stored stats with the streak evaluated as of today.
	GetStats(ctx context.Context, userID int64) (*entity.UserEngagementStats, error)
}

// NewEngagementUsecase wires the coordinator.
func NewEngagementUsecase(
	tx repository.Transactor,
	sessions repository.SessionRepository,
	stats repository.StatsRepository,
	achievements AchievementEngine,
	notifier Notifier,
	locks *UserLocks,
	opts EngagementOptions,
	logger logrus.FieldLogger,
) EngagementUsecase {
	return &engagementUsecase{
		tx:       tx,
		sessions: sessions,
		stats:    stats,
		engine:   achievements,
		notifier: notifier,
		locks:    locks,
		opts:     opts,
		logger:   logger,
		clock:    time.Now,
	}
}

type engagementUsecase struct {
	tx       repository.Transactor
	sessions repository.SessionRepository
	stats    repository.StatsRepository
	engine   AchievementEngine
	notifier Notifier
	locks    *UserLocks
	opts     EngagementOptions
	logger   logrus.FieldLogger
	clock    func() time.Time
}

func (u *engagementUsecase) OnSessionCompleted(ctx context.Context, userID int64, sessionID string, update entity.SessionUpdate) (*CompletionResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, entity.ErrSessionNotFound
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		session     *entity.Session
		prev, saved *entity.UserEngagementStats
	)
	err = u.withRetry(ctx, userID, func(ctx context.Context) error {
		return u.tx.InTx(ctx, func(ctx context.Context) error {
			s, err := u.sessions.Get(ctx, userID, sessionID)
			if err != nil {
				return err
			}
			if err := s.Apply(update); err != nil {
				return err
			}
			now := u.clock()
			if err := s.Complete(now); err != nil {
				return err
			}
			if err := u.sessions.Update(ctx, s); err != nil {
				return err
			}

			current, err := u.loadStats(ctx, userID)
			if err != nil {
				return err
			}
			next := *current
			day, _ := s.CompletionDay(u.opts.location())
			next.Fold(s, day)
			if err := u.applyStreak(ctx, userID, &next.EngagementTotals); err != nil {
				return err
			}
			next.UpdatedAt = now

			stored, err := u.stats.Save(ctx, &next)
			if err != nil {
				return err
			}
			session, prev, saved = s, current, stored
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger := u.logger.WithFields(logrus.Fields{"user_id": userID, "session_id": session.ID})
	logger.WithFields(logrus.Fields{
		"sessions": saved.TotalSessionsCompleted,
		"streak":   saved.CurrentStreakDays,
	}).Info("session completed")

	result := &CompletionResult{Session: session, Stats: saved}
	unlocked, err := u.engine.evaluateLocked(ctx, userID, saved.EngagementTotals, session)
	if err != nil {
		logger.WithError(err).Error("achievement evaluation failed")
	}
	result.Unlocked = unlocked

	crossings := achievement.CrossedThresholds(prev.EngagementTotals, saved.EngagementTotals)
	result.Milestones, result.StreakDays = crossings.Milestones, crossings.StreakDays
	u.notifyCrossings(ctx, userID, crossings, logger)
	return result, nil
}

func (u *engagementUsecase) notifyCrossings(ctx context.Context, userID int64, c achievement.Crossings, logger logrus.FieldLogger) {
	if c.Empty() {
		return
	}
	user := entity.ResolveUser(ctx, userID)
	for _, m := range c.Milestones {
		if err := u.notifier.NotifyMilestone(ctx, user, m); err != nil {
			logger.WithError(err).WithField("milestone", m.Kind).Warn("milestone notification failed")
		}
	}
	if c.StreakDays > 0 {
		if err := u.notifier.NotifyStreak(ctx, user, c.StreakDays); err != nil {
			logger.WithError(err).WithField("streak", c.StreakDays).Warn("streak notification failed")
		}
	}
}

func (u *engagementUsecase) RecomputeAllFromHistory(ctx context.Context, userID int64) (*entity.UserEngagementStats, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stats, _, err := u.recompute(ctx, userID)
	return stats, err
}

// recompute returns the rebuilt stats and whether storage changed.
func (u *engagementUsecase) recompute(ctx context.Context, userID int64) (*entity.UserEngagementStats, bool, error) {
	var (
		result  *entity.UserEngagementStats
		written bool
	)
	err := u.withRetry(ctx, userID, func(ctx context.Context) error {
		return u.tx.InTx(ctx, func(ctx context.Context) error {
			history, err := u.sessions.ListCompleted(ctx, userID)
			if err != nil {
				return err
			}
			rebuilt, err := u.foldHistory(ctx, userID, history)
			if err != nil {
				return err
			}

			stored, err := u.stats.Get(ctx, userID)
			if err != nil {
				return err
			}
			if stored != nil && stored.EngagementTotals.Equal(rebuilt.EngagementTotals) {
				result, written = stored, false
				return nil
			}
			if stored == nil && len(history) == 0 {
				result, written = rebuilt, false
				return nil
			}
			if stored != nil {
				rebuilt.Version = stored.Version
			}
			rebuilt.UpdatedAt = u.clock()
			saved, err := u.stats.Save(ctx, rebuilt)
			if err != nil {
				return err
			}
			result, written = saved, true
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return result, written, nil
}

// foldHistory folds completed sessions, already ordered by EndedAt, into a zeroed accumulator.
func (u *engagementUsecase) foldHistory(ctx context.Context, userID int64, history []entity.Session) (*entity.UserEngagementStats, error) {
	acc := entity.NewUserEngagementStats(userID)
	loc := u.opts.location()
	for i := range history {
		day, ok := history[i].CompletionDay(loc)
		if !ok {
			continue
		}
		acc.Fold(&history[i], day)
	}
	if err := u.applyStreak(ctx, userID, &acc.EngagementTotals); err != nil {
		return nil, err
	}
	return acc, nil
}

// applyStreak recomputes the streak from the user's full set of completion days, anchored at the
// last session date so the stored value does not depend on when the computation ran.
func (u *engagementUsecase) applyStreak(ctx context.Context, userID int64, totals *entity.EngagementTotals) error {
	if totals.LastSessionDate == nil {
		totals.ApplyStreak(0, 0)
		return nil
	}
	times, err := u.sessions.CompletionTimes(ctx, userID)
	if err != nil {
		return err
	}
	loc := u.opts.location()
	days := make([]entity.Day, 0, len(times))
	for _, t := range times {
		days = append(days, entity.DayOf(t, loc))
	}
	res := streak.FromDays(days, *totals.LastSessionDate)
	totals.ApplyStreak(res.Current, res.Max)
	return nil
}

func (u *engagementUsecase) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	ids, err := u.sessions.ListUserIDs(ctx)
	if err != nil {
		return RecomputeSummary{}, err
	}

	var updated, failed atomic.Int64
	p := pool.New().WithContext(ctx).WithMaxGoroutines(u.opts.workers())
	for _, id := range ids {
		p.Go(func(ctx context.Context) error {
			unlock, err := u.locks.Lock(ctx, id)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("user %d: %w", id, err)
			}
			defer unlock()

			_, written, err := u.recompute(ctx, id)
			if err != nil {
				failed.Add(1)
				u.logger.WithError(err).WithField("user_id", id).Error("recompute failed")
				return fmt.Errorf("user %d: %w", id, err)
			}
			if written {
				updated.Add(1)
			}
			return nil
		})
	}
	err = p.Wait()

	summary := RecomputeSummary{Users: len(ids), Updated: int(updated.Load()), Failed: int(failed.Load())}
	u.logger.WithFields(logrus.Fields{
		"users":   summary.Users,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	}).Info("bulk recompute finished")
	return summary, err
}

func (u *engagementUsecase) GetStats(ctx context.Context, userID int64) (*entity.UserEngagementStats, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	stored, err := u.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return entity.NewUserEngagementStats(userID), nil
	}
	view := *stored
	view.CurrentStreakDays = view.CurrentStreakAsOf(entity.DayOf(u.clock(), u.opts.location()))
	return &view, nil
}

func (u *engagementUsecase) loadStats(ctx context.Context, userID int64) (*entity.UserEngagementStats, error) {
	current, err := u.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return entity.NewUserEngagementStats(userID), nil
	}
	return current, nil
}

// withRetry reruns fn while it fails with entity.ErrStatsConflict.
func (u *engagementUsecase) withRetry(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	attempts := u.opts.maxRetries() + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); !errors.Is(err, entity.ErrStatsConflict) {
			return err
		}
		if attempt == attempts {
			break
		}
		u.logger.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt}).Warn("engagement stats conflict, retrying")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w after %d attempts", err, attempts)
}

package repository

import (
	"context"
	stdsql "database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

const engagementStatsTable = "engagement_stats"

var engagementStatsColumns = []string{
	"user_id", "total_words_learned", "total_sessions_completed", "total_study_time_minutes",
	"average_accuracy", "current_streak_days", "max_streak_days", "last_session_day",
	"version", "updated_at",
}

type StatsRepository struct {
	store *Store
}

// NewStatsRepository constructs an ent-backed repository.
func NewStatsRepository(store *Store) repository.StatsRepository {
	return &StatsRepository{store: store}
}

func (r *StatsRepository) Get(ctx context.Context, userID int64) (*entity.UserEngagementStats, error) {
	rows, err := r.store.query(ctx, r.store.sql().Select(engagementStatsColumns...).
		From(entsql.Table(engagementStatsTable)).
		Where(entsql.EQ("user_id", userID)))
	if err != nil {
		return nil, storageError("get engagement stats", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storageError("get engagement stats", err)
		}
		return nil, nil
	}
	var (
		stats   entity.UserEngagementStats
		lastDay stdsql.NullInt32
	)
	if err := rows.Scan(
		&stats.UserID, &stats.TotalWordsLearned, &stats.TotalSessionsCompleted, &stats.TotalStudyTimeMinutes,
		&stats.AverageAccuracy, &stats.CurrentStreakDays, &stats.MaxStreakDays, &lastDay,
		&stats.Version, &stats.UpdatedAt,
	); err != nil {
		return nil, storageError("scan engagement stats", err)
	}
	if lastDay.Valid {
		day := entity.Day(lastDay.Int32)
		stats.LastSessionDate = &day
	}
	return &stats, nil
}

func (r *StatsRepository) Save(ctx context.Context, stats *entity.UserEngagementStats) (*entity.UserEngagementStats, error) {
	if stats == nil {
		return nil, errors.New("engagement stats are nil")
	}
	next := *stats
	next.Version = stats.Version + 1
	next.UpdatedAt = utc(stats.UpdatedAt)

	var lastDay any
	if next.LastSessionDate != nil {
		lastDay = int32(*next.LastSessionDate)
	}

	if stats.Version == 0 {
		_, err := r.store.exec(ctx, r.store.sql().Insert(engagementStatsTable).
			Columns(engagementStatsColumns...).
			Values(
				next.UserID, next.TotalWordsLearned, next.TotalSessionsCompleted, next.TotalStudyTimeMinutes,
				next.AverageAccuracy, next.CurrentStreakDays, next.MaxStreakDays, lastDay,
				next.Version, next.UpdatedAt,
			))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, entity.ErrStatsConflict
			}
			return nil, storageError("create engagement stats", err)
		}
		return &next, nil
	}

	affected, err := r.store.exec(ctx, r.store.sql().Update(engagementStatsTable).
		Set("total_words_learned", next.TotalWordsLearned).
		Set("total_sessions_completed", next.TotalSessionsCompleted).
		Set("total_study_time_minutes", next.TotalStudyTimeMinutes).
		Set("average_accuracy", next.AverageAccuracy).
		Set("current_streak_days", next.CurrentStreakDays).
		Set("max_streak_days", next.MaxStreakDays).
		Set("last_session_day", lastDay).
		Set("version", next.Version).
		Set("updated_at", next.UpdatedAt).
		Where(entsql.And(entsql.EQ("user_id", next.UserID), entsql.EQ("version", stats.Version))))
	if err != nil {
		return nil, storageError("update engagement stats", err)
	}
	if affected == 0 {
		return nil, entity.ErrStatsConflict
	}
	return &next, nil
}

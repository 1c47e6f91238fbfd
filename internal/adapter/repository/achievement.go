package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

const achievementUnlocksTable = "achievement_unlocks"

type AchievementRepository struct {
	store *Store
}

// NewAchievementRepository constructs an ent-backed repository.
func NewAchievementRepository(store *Store) repository.AchievementRepository {
	return &AchievementRepository{store: store}
}

func (r *AchievementRepository) Create(ctx context.Context, unlock entity.AchievementUnlock) error {
	_, err := r.store.exec(ctx, r.store.sql().Insert(achievementUnlocksTable).
		Columns("user_id", "achievement_id", "unlocked_at").
		Values(unlock.UserID, unlock.AchievementID, utc(unlock.UnlockedAt)))
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrAchievementAlreadyUnlocked
		}
		return storageError("create achievement unlock", err)
	}
	return nil
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]entity.AchievementUnlock, error) {
	rows, err := r.store.query(ctx, r.store.sql().Select("user_id", "achievement_id", "unlocked_at").
		From(entsql.Table(achievementUnlocksTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Asc("unlocked_at"), entsql.Asc("id")))
	if err != nil {
		return nil, storageError("list achievement unlocks", err)
	}
	defer rows.Close()

	var unlocks []entity.AchievementUnlock
	for rows.Next() {
		var u entity.AchievementUnlock
		if err := rows.Scan(&u.UserID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, storageError("scan achievement unlock", err)
		}
		unlocks = append(unlocks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list achievement unlocks", err)
	}
	return unlocks, nil
}

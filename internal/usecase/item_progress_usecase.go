package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

const defaultDueLimit = 20

// AttemptInput is one answer to a learning item. Word and Translation are required the first
// time a user meets the item and refresh the stored text afterwards.
type AttemptInput struct {
	Language    entity.Language
	ItemID      string
	Word        string
	Translation string
	Difficulty  entity.Difficulty
	Category    string
	IsCorrect   bool
}

// ItemProgressUsecase tracks per-item mastery and the review schedule.
type ItemProgressUsecase interface {
	RecordAttempt(ctx context.Context, userID int64, in AttemptInput) (*entity.ItemProgress, error)
	ListItemProgress(ctx context.Context, query *repository.ListItemProgressQuery) ([]entity.ItemProgress, int64, error)
	DueForReview(ctx context.Context, userID int64, language entity.Language, limit int) ([]entity.ItemProgress, error)
}

// NewItemProgressUsecase wires the repository with default behaviour.
func NewItemProgressUsecase(repo repository.ItemProgressRepository, locks *UserLocks, logger logrus.FieldLogger) ItemProgressUsecase {
	return &itemProgressUsecase{
		repo:   repo,
		locks:  locks,
		logger: logger,
		clock:  time.Now,
	}
}

type itemProgressUsecase struct {
	repo   repository.ItemProgressRepository
	locks  *UserLocks
	logger logrus.FieldLogger
	clock  func() time.Time
}

func (u *itemProgressUsecase) RecordAttempt(ctx context.Context, userID int64, in AttemptInput) (*entity.ItemProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	in.Language = entity.ParseLanguage(string(in.Language))
	if !in.Language.Valid() {
		return nil, entity.ErrInvalidLanguage
	}
	in.ItemID = strings.TrimSpace(in.ItemID)
	if in.ItemID == "" {
		return nil, entity.ErrInvalidItemID
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		return nil, entity.ErrInvalidDifficulty
	}

	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	saved, err := u.recordAttempt(ctx, userID, in)
	if errors.Is(err, entity.ErrDuplicateItemProgress) {
		// Another process created the record between our read and insert.
		saved, err = u.recordAttempt(ctx, userID, in)
	}
	if err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": saved.ItemID,
		"mastery": saved.MasteryLevel,
	}).Debug("attempt recorded")
	return saved, nil
}

func (u *itemProgressUsecase) recordAttempt(ctx context.Context, userID int64, in AttemptInput) (*entity.ItemProgress, error) {
	progress, err := u.repo.Get(ctx, userID, in.Language, in.ItemID)
	switch {
	case errors.Is(err, entity.ErrItemProgressNotFound):
		progress = entity.NewItemProgress(userID, in.Language, in.ItemID, in.Word, in.Translation)
	case err != nil:
		return nil, err
	default:
		if w := strings.TrimSpace(in.Word); w != "" {
			progress.Word = w
		}
		if t := strings.TrimSpace(in.Translation); t != "" {
			progress.Translation = t
		}
	}
	if in.Difficulty != "" {
		progress.Difficulty = in.Difficulty
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		progress.Category = c
	}

	now := u.clock()
	progress.RecordAttempt(in.IsCorrect, now)
	progress.Normalize(now)
	if err := progress.Validate(); err != nil {
		return nil, err
	}
	return u.repo.Save(ctx, progress)
}

func (u *itemProgressUsecase) ListItemProgress(ctx context.Context, query *repository.ListItemProgressQuery) ([]entity.ItemProgress, int64, error) {
	if query == nil || query.UserID <= 0 {
		return nil, 0, entity.ErrInvalidUserID
	}
	return u.repo.List(ctx, query)
}

func (u *itemProgressUsecase) DueForReview(ctx context.Context, userID int64, language entity.Language, limit int) ([]entity.ItemProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	language = entity.ParseLanguage(string(language))
	if language != entity.LanguageUnspecified && !language.Valid() {
		return nil, entity.ErrInvalidLanguage
	}
	if limit <= 0 {
		limit = defaultDueLimit
	}
	return u.repo.ListDue(ctx, userID, language, u.clock(), limit)
}

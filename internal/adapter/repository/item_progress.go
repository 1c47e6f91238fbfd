package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/pkg/filterexpr"
)

const itemProgressTable = "item_progress"

var itemProgressColumns = []string{
	"id", "user_id", "language", "item_id", "word", "translation",
	"correct_answers", "total_attempts", "mastery_level",
	"last_reviewed_at", "next_review_due_at", "difficulty", "category",
	"created_at", "updated_at",
}

type ItemProgressRepository struct {
	store *Store
}

// NewItemProgressRepository constructs an ent-backed repository.
func NewItemProgressRepository(store *Store) repository.ItemProgressRepository {
	return &ItemProgressRepository{store: store}
}

type listItemProgressParams struct {
	Language      string
	Keyword       string
	WordPrefix    string
	MasteryMin    *int
	MasteryMax    *int
	Difficulty    string
	Difficulties  []string
	Category      string
	DueBefore     *time.Time
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func (r *ItemProgressRepository) Get(ctx context.Context, userID int64, language entity.Language, itemID string) (*entity.ItemProgress, error) {
	items, err := r.selectWhere(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("language", language.Code()),
		entsql.EQ("item_id", itemID),
	), nil, 1, 0)
	if err != nil {
		return nil, storageError("get item progress", err)
	}
	if len(items) == 0 {
		return nil, entity.ErrItemProgressNotFound
	}
	return &items[0], nil
}

func (r *ItemProgressRepository) Save(ctx context.Context, p *entity.ItemProgress) (*entity.ItemProgress, error) {
	if p == nil {
		return nil, errors.New("item progress is nil")
	}
	saved := *p
	if saved.ID == 0 {
		return r.create(ctx, saved)
	}

	affected, err := r.store.exec(ctx, r.store.sql().Update(itemProgressTable).
		Set("word", saved.Word).
		Set("translation", saved.Translation).
		Set("correct_answers", saved.CorrectAnswers).
		Set("total_attempts", saved.TotalAttempts).
		Set("mastery_level", saved.MasteryLevel).
		Set("last_reviewed_at", nullTime(saved.LastReviewedAt)).
		Set("next_review_due_at", nullTime(saved.NextReviewDueAt)).
		Set("difficulty", string(saved.Difficulty)).
		Set("category", saved.Category).
		Set("updated_at", utc(saved.UpdatedAt)).
		Where(entsql.And(entsql.EQ("id", saved.ID), entsql.EQ("user_id", saved.UserID))))
	if err != nil {
		return nil, storageError("update item progress", err)
	}
	if affected == 0 {
		return nil, entity.ErrItemProgressNotFound
	}
	return &saved, nil
}

func (r *ItemProgressRepository) create(ctx context.Context, p entity.ItemProgress) (*entity.ItemProgress, error) {
	rows, err := r.store.query(ctx, r.store.sql().Insert(itemProgressTable).
		Columns(itemProgressColumns[1:]...).
		Values(
			p.UserID, p.Language.Code(), p.ItemID, p.Word, p.Translation,
			p.CorrectAnswers, p.TotalAttempts, p.MasteryLevel,
			nullTime(p.LastReviewedAt), nullTime(p.NextReviewDueAt), string(p.Difficulty), p.Category,
			utc(p.CreatedAt), utc(p.UpdatedAt),
		).
		Returning("id"))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateItemProgress
		}
		return nil, storageError("create item progress", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if isUniqueViolation(err) {
				return nil, entity.ErrDuplicateItemProgress
			}
			return nil, storageError("create item progress", err)
		}
		return nil, storageError("create item progress", stdsql.ErrNoRows)
	}
	if err := rows.Scan(&p.ID); err != nil {
		return nil, storageError("scan item progress id", err)
	}
	return &p, nil
}

func (r *ItemProgressRepository) List(ctx context.Context, query *repository.ListItemProgressQuery) ([]entity.ItemProgress, int64, error) {
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	var params listItemProgressParams
	if err := filterexpr.Bind(query, &params, listItemProgressSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}

	where := entsql.And(append([]*entsql.Predicate{entsql.EQ("user_id", query.UserID)}, itemProgressFilters(params)...)...)
	total, err := r.store.count(ctx, itemProgressTable, where)
	if err != nil {
		return nil, 0, storageError("count item progress", err)
	}

	order := orderTerms(listItemProgressSchema.Order, params.PrimaryKey, params.PrimaryDesc, params.SecondaryKey, params.SecondaryDesc)
	items, err := r.selectWhere(ctx, where, order, int(query.PageSize), int(query.Offset()))
	if err != nil {
		return nil, 0, storageError("list item progress", err)
	}
	return items, total, nil
}

func (r *ItemProgressRepository) ListDue(ctx context.Context, userID int64, language entity.Language, now time.Time, limit int) ([]entity.ItemProgress, error) {
	preds := []*entsql.Predicate{
		entsql.EQ("user_id", userID),
		entsql.LTE("next_review_due_at", now.UTC()),
	}
	if language != entity.LanguageUnspecified {
		preds = append(preds, entsql.EQ("language", language.Code()))
	}
	items, err := r.selectWhere(ctx, entsql.And(preds...), []string{entsql.Asc("next_review_due_at"), entsql.Asc("id")}, limit, 0)
	if err != nil {
		return nil, storageError("list due item progress", err)
	}
	return items, nil
}

func (r *ItemProgressRepository) selectWhere(ctx context.Context, where *entsql.Predicate, order []string, limit, offset int) ([]entity.ItemProgress, error) {
	sel := r.store.sql().Select(itemProgressColumns...).From(entsql.Table(itemProgressTable)).Where(where)
	if len(order) > 0 {
		sel.OrderBy(order...)
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	if offset > 0 {
		sel.Offset(offset)
	}
	rows, err := r.store.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.ItemProgress
	for rows.Next() {
		var (
			p                     entity.ItemProgress
			language, difficulty  string
			lastReviewed, nextDue stdsql.NullTime
		)
		if err := rows.Scan(
			&p.ID, &p.UserID, &language, &p.ItemID, &p.Word, &p.Translation,
			&p.CorrectAnswers, &p.TotalAttempts, &p.MasteryLevel,
			&lastReviewed, &nextDue, &difficulty, &p.Category,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Language = entity.ParseLanguage(language)
		p.Difficulty = entity.Difficulty(difficulty)
		if lastReviewed.Valid {
			p.LastReviewedAt = lastReviewed.Time
		}
		if nextDue.Valid {
			p.NextReviewDueAt = nextDue.Time
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func itemProgressFilters(params listItemProgressParams) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if params.Language != "" {
		preds = append(preds, entsql.EQ("language", entity.ParseLanguage(params.Language).Code()))
	}
	if params.Keyword != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("word", params.Keyword),
			entsql.ContainsFold("translation", params.Keyword),
		))
	}
	if params.WordPrefix != "" {
		preds = append(preds, entsql.HasPrefix("word", params.WordPrefix))
	}
	if params.MasteryMin != nil {
		preds = append(preds, entsql.GTE("mastery_level", *params.MasteryMin))
	}
	if params.MasteryMax != nil {
		preds = append(preds, entsql.LTE("mastery_level", *params.MasteryMax))
	}
	difficulties := params.Difficulties
	if params.Difficulty != "" {
		difficulties = append(difficulties, params.Difficulty)
	}
	if len(difficulties) > 0 {
		preds = append(preds, entsql.In("difficulty", toAny(difficulties)...))
	}
	if params.Category != "" {
		preds = append(preds, entsql.EQ("category", params.Category))
	}
	if params.DueBefore != nil {
		preds = append(preds, entsql.LTE("next_review_due_at", params.DueBefore.UTC()))
	}
	return preds
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

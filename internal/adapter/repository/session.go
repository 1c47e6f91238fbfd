package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/pkg/filterexpr"
)

const sessionsTable = "sessions"

var sessionColumns = []string{
	"id", "user_id", "language", "session_type",
	"words_studied", "correct_answers", "total_answers", "accuracy", "time_spent_minutes",
	"completed", "started_at", "ended_at",
}

type SessionRepository struct {
	store *Store
}

// NewSessionRepository constructs an ent-backed repository.
func NewSessionRepository(store *Store) repository.SessionRepository {
	return &SessionRepository{store: store}
}

type listSessionsParams struct {
	Language      string
	Type          string
	Types         []string
	Completed     *bool
	StartedAfter  *time.Time
	StartedBefore *time.Time
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	_, err := r.store.exec(ctx, r.store.sql().Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(sessionValues(s)...))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session %s already exists: %w", s.ID, entity.ErrInvalidInput)
		}
		return storageError("create session", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID int64, id string) (*entity.Session, error) {
	sessions, err := r.selectWhere(ctx, entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID)), nil, 1, 0)
	if err != nil {
		return nil, storageError("get session", err)
	}
	if len(sessions) == 0 {
		return nil, entity.ErrSessionNotFound
	}
	return &sessions[0], nil
}

func (r *SessionRepository) Update(ctx context.Context, s *entity.Session) error {
	var endedAt any
	if s.EndedAt != nil {
		endedAt = s.EndedAt.UTC()
	}
	affected, err := r.store.exec(ctx, r.store.sql().Update(sessionsTable).
		Set("words_studied", s.WordsStudied).
		Set("correct_answers", s.CorrectAnswers).
		Set("total_answers", s.TotalAnswers).
		Set("accuracy", s.Accuracy).
		Set("time_spent_minutes", s.TimeSpentMinutes).
		Set("completed", s.Completed).
		Set("ended_at", endedAt).
		Where(entsql.And(
			entsql.EQ("id", s.ID),
			entsql.EQ("user_id", s.UserID),
			entsql.EQ("completed", false),
		)))
	if err != nil {
		return storageError("update session", err)
	}
	if affected > 0 {
		return nil
	}
	// Distinguish a missing session from one completed concurrently.
	if _, err := r.Get(ctx, s.UserID, s.ID); err != nil {
		return err
	}
	return entity.ErrSessionAlreadyCompleted
}

func (r *SessionRepository) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.Session, int64, error) {
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	var params listSessionsParams
	if err := filterexpr.Bind(query, &params, listSessionsSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}

	where := entsql.And(append([]*entsql.Predicate{entsql.EQ("user_id", query.UserID)}, sessionFilters(params)...)...)
	total, err := r.store.count(ctx, sessionsTable, where)
	if err != nil {
		return nil, 0, storageError("count sessions", err)
	}

	order := orderTerms(listSessionsSchema.Order, params.PrimaryKey, params.PrimaryDesc, params.SecondaryKey, params.SecondaryDesc)
	sessions, err := r.selectWhere(ctx, where, order, int(query.PageSize), int(query.Offset()))
	if err != nil {
		return nil, 0, storageError("list sessions", err)
	}
	return sessions, total, nil
}

func (r *SessionRepository) ListCompleted(ctx context.Context, userID int64) ([]entity.Session, error) {
	sessions, err := r.selectWhere(ctx,
		entsql.And(entsql.EQ("user_id", userID), entsql.EQ("completed", true)),
		[]string{entsql.Asc("ended_at"), entsql.Asc("id")}, 0, 0)
	if err != nil {
		return nil, storageError("list completed sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepository) CompletionTimes(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := r.store.query(ctx, r.store.sql().Select("ended_at").From(entsql.Table(sessionsTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("completed", true), entsql.NotNull("ended_at"))))
	if err != nil {
		return nil, storageError("list completion times", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, storageError("scan completion time", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list completion times", err)
	}
	return out, nil
}

func (r *SessionRepository) CountLanguages(ctx context.Context, userID int64) (int, error) {
	rows, err := r.store.query(ctx, r.store.sql().Select("language").Distinct().From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("user_id", userID)))
	if err != nil {
		return 0, storageError("count session languages", err)
	}
	defer rows.Close()

	var languages []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return 0, storageError("scan session language", err)
		}
		languages = append(languages, entity.ParseLanguage(lang).Code())
	}
	if err := rows.Err(); err != nil {
		return 0, storageError("count session languages", err)
	}
	return len(lo.Uniq(languages)), nil
}

func (r *SessionRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.store.query(ctx, r.store.sql().Select("user_id").Distinct().From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("completed", true)).
		OrderBy(entsql.Asc("user_id")))
	if err != nil {
		return nil, storageError("list session users", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageError("scan session user", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list session users", err)
	}
	return ids, nil
}

func (r *SessionRepository) selectWhere(ctx context.Context, where *entsql.Predicate, order []string, limit, offset int) ([]entity.Session, error) {
	sel := r.store.sql().Select(sessionColumns...).From(entsql.Table(sessionsTable)).Where(where)
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

	var sessions []entity.Session
	for rows.Next() {
		var (
			s             entity.Session
			language, typ string
			endedAt       stdsql.NullTime
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &language, &typ,
			&s.WordsStudied, &s.CorrectAnswers, &s.TotalAnswers, &s.Accuracy, &s.TimeSpentMinutes,
			&s.Completed, &s.StartedAt, &endedAt,
		); err != nil {
			return nil, err
		}
		s.Language = entity.ParseLanguage(language)
		s.Type = entity.SessionType(typ)
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func sessionValues(s *entity.Session) []any {
	var endedAt any
	if s.EndedAt != nil {
		endedAt = s.EndedAt.UTC()
	}
	return []any{
		s.ID, s.UserID, s.Language.Code(), string(s.Type),
		s.WordsStudied, s.CorrectAnswers, s.TotalAnswers, s.Accuracy, s.TimeSpentMinutes,
		s.Completed, utc(s.StartedAt), endedAt,
	}
}

func sessionFilters(params listSessionsParams) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if params.Language != "" {
		preds = append(preds, entsql.EQ("language", entity.ParseLanguage(params.Language).Code()))
	}
	types := params.Types
	if params.Type != "" {
		types = append(types, params.Type)
	}
	if len(types) > 0 {
		preds = append(preds, entsql.In("session_type", toAny(types)...))
	}
	if params.Completed != nil {
		preds = append(preds, entsql.EQ("completed", *params.Completed))
	}
	if params.StartedAfter != nil {
		preds = append(preds, entsql.GTE("started_at", params.StartedAfter.UTC()))
	}
	if params.StartedBefore != nil {
		preds = append(preds, entsql.LTE("started_at", params.StartedBefore.UTC()))
	}
	return preds
}

package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vocengage/internal/entity"
)

// ListSessionQuery holds parameters for listing session history.
type ListSessionQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// SessionRepository persists learning sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, userID int64, id string) (*entity.Session, error)
	// Update overwrites an active session. Completed sessions are never rewritten and yield
	// entity.ErrSessionAlreadyCompleted.
	Update(ctx context.Context, session *entity.Session) error
	List(ctx context.Context, query *ListSessionQuery) ([]entity.Session, int64, error)
	// ListCompleted returns every completed session of the user ordered by EndedAt, then ID.
	ListCompleted(ctx context.Context, userID int64) ([]entity.Session, error)
	// CompletionTimes returns the EndedAt of every completed session of the user.
	CompletionTimes(ctx context.Context, userID int64) ([]time.Time, error)
	CountLanguages(ctx context.Context, userID int64) (int, error)
	// ListUserIDs returns every user with at least one completed session.
	ListUserIDs(ctx context.Context) ([]int64, error)
}

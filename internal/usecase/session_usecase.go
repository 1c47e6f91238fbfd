package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

// StartSessionInput opens a new learning session.
type StartSessionInput struct {
	Language entity.Language
	Type     string
}

// SessionUsecase manages the active part of the session lifecycle. Completion belongs to
// EngagementUsecase because it updates the aggregate stats.
type SessionUsecase interface {
	StartSession(ctx context.Context, userID int64, in StartSessionInput) (*entity.Session, error)
	UpdateSession(ctx context.Context, userID int64, sessionID string, update entity.SessionUpdate) (*entity.Session, error)
	GetSession(ctx context.Context, userID int64, sessionID string) (*entity.Session, error)
	ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.Session, int64, error)
}

// NewSessionUsecase wires the repository with default behaviour.
func NewSessionUsecase(repo repository.SessionRepository, locks *UserLocks, logger logrus.FieldLogger) SessionUsecase {
	return &sessionUsecase{
		repo:   repo,
		locks:  locks,
		logger: logger,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
}

type sessionUsecase struct {
	repo   repository.SessionRepository
	locks  *UserLocks
	logger logrus.FieldLogger
	clock  func() time.Time
	newID  func() string
}

func (u *sessionUsecase) StartSession(ctx context.Context, userID int64, in StartSessionInput) (*entity.Session, error) {
	typ, err := entity.ParseSessionType(in.Type)
	if err != nil {
		return nil, err
	}
	session := &entity.Session{
		ID:        u.newID(),
		UserID:    userID,
		Language:  entity.ParseLanguage(string(in.Language)),
		Type:      typ,
		StartedAt: u.clock(),
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"type":       session.Type,
	}).Info("session started")
	return session, nil
}

func (u *sessionUsecase) UpdateSession(ctx context.Context, userID int64, sessionID string, update entity.SessionUpdate) (*entity.Session, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, entity.ErrSessionNotFound
	}

	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := u.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Apply(update); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (u *sessionUsecase) GetSession(ctx context.Context, userID int64, sessionID string) (*entity.Session, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return u.repo.Get(ctx, userID, strings.TrimSpace(sessionID))
}

func (u *sessionUsecase) ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.Session, int64, error) {
	if query == nil || query.UserID <= 0 {
		return nil, 0, entity.ErrInvalidUserID
	}
	return u.repo.List(ctx, query)
}

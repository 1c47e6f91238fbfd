package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/infrastructure/scheduler"
	"github.com/eslsoft/vocengage/internal/infrastructure/server"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/internal/usecase"
)

// Container aggregates the dependencies of the serve command.
type Container struct {
	Logger    *logrus.Logger
	Server    *server.Server
	Scheduler *scheduler.Scheduler
}

// Engine aggregates the dependencies of the offline commands (recompute, seed).
type Engine struct {
	Logger     *logrus.Logger
	Tx         repository.Transactor
	Sessions   repository.SessionRepository
	Engagement usecase.EngagementUsecase
}

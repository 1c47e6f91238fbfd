//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/adapter/repository"
	"github.com/eslsoft/vocengage/internal/adapter/rest"
	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/infrastructure/database"
	"github.com/eslsoft/vocengage/internal/infrastructure/notify"
	"github.com/eslsoft/vocengage/internal/infrastructure/scheduler"
	"github.com/eslsoft/vocengage/internal/infrastructure/server"
	"github.com/eslsoft/vocengage/internal/usecase"
)

var loggerSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var databaseSet = wire.NewSet(
	database.NewDriver,
)

var repositorySet = wire.NewSet(
	repository.NewStore,
	repository.NewTransactor,
	repository.NewItemProgressRepository,
	repository.NewSessionRepository,
	repository.NewStatsRepository,
	repository.NewAchievementRepository,
)

var usecaseSet = wire.NewSet(
	NewRegistry,
	NewEngagementOptions,
	usecase.NewUserLocks,
	usecase.NewItemProgressUsecase,
	usecase.NewSessionUsecase,
	usecase.NewAchievementUsecase,
	wire.Bind(new(usecase.AchievementUsecase), new(usecase.AchievementEngine)),
	usecase.NewEngagementUsecase,
)

var notifySet = wire.NewSet(
	notify.New,
	wire.Bind(new(usecase.Notifier), new(*notify.Dispatcher)),
)

var serverSet = wire.NewSet(
	rest.NewAuthenticator,
	rest.NewHandler,
	server.NewServer,
	scheduler.New,
	wire.Bind(new(scheduler.Recomputer), new(usecase.EngagementUsecase)),
)

// Initialize builds the serve container using Wire.
func Initialize(cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		loggerSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		notifySet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server", "Scheduler"),
	)
	return nil, nil, nil
}

// InitializeEngine builds the engine for offline commands.
func InitializeEngine(cfg *config.Config) (*Engine, func(), error) {
	wire.Build(
		loggerSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		notifySet,
		wire.Struct(new(Engine), "Logger", "Tx", "Sessions", "Engagement"),
	)
	return nil, nil, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
)

// NewDriver opens the ent SQL driver configured for the application's database.
func NewDriver(cfg *config.Config, logger logrus.FieldLogger) (dialect.Driver, func(), error) {
	dsn := cfg.DatabaseURL()
	switch cfg.DatabaseDriver() {
	case "postgres":
		return openDriver(cfg, logger, "postgres", dialect.Postgres, dsn)
	case "sqlite3":
		return openDriver(cfg, logger, "sqlite3", dialect.SQLite, dsn)
	case "pgx":
		return newPgxDriver(cfg, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openDriver(cfg *config.Config, logger logrus.FieldLogger, driverName, dialectName, dsn string) (dialect.Driver, func(), error) {
	rawDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", driverName, err)
	}
	if dialectName == dialect.SQLite {
		rawDB.SetMaxOpenConns(1)
		rawDB.SetMaxIdleConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", driverName, err)
	}
	if dialectName == dialect.SQLite {
		if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			rawDB.Close()
			return nil, nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	var drv dialect.Driver = entsql.OpenDB(dialectName, rawDB)
	if cfg.Database.LogSQL {
		sqlLogger := logger.WithField("driver", driverName)
		drv = dialect.DebugWithContext(drv, func(_ context.Context, v ...any) {
			sqlLogger.Debug(v...)
		})
	}
	return drv, func() {
		_ = drv.Close()
	}, nil
}

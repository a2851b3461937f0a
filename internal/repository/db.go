package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB bundles the ent SQL driver with the pool that backs it (nil for SQLite).
type DB struct {
	Driver  *entsql.Driver
	Dialect string
	pool    *pgxpool.Pool
}

// SQL returns the underlying database handle.
func (d *DB) SQL() *sql.DB {
	return d.Driver.DB()
}

// DialectFor picks the SQL dialect from the DSN scheme.
func DialectFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// Open connects to PostgreSQL or SQLite depending on the DSN and ensures the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := DialectFor(cfg.DSN)
	logger.Info("connecting to database", "dialect", d)

	var (
		db  *DB
		err error
	)
	switch d {
	case dialect.Postgres:
		db, err = openPostgres(ctx, cfg)
	default:
		db, err = openSQLite(cfg)
	}
	if err != nil {
		logger.Error("failed to connect to database", "dialect", d, "error", err)
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		Close(db, logger)
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", d)
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "jobtracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	// Wrap pool as *sql.DB for the ent driver
	sqlDB := stdlib.OpenDBFromPool(pool)
	return &DB{
		Driver:  entsql.OpenDB(dialect.Postgres, sqlDB),
		Dialect: dialect.Postgres,
		pool:    pool,
	}, nil
}

func openSQLite(cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// One connection keeps :memory: databases alive and writes serialized.
	sqlDB.SetMaxOpenConns(1)
	if cfg.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	return &DB{
		Driver:  entsql.OpenDB(dialect.SQLite, sqlDB),
		Dialect: dialect.SQLite,
	}, nil
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if err := db.Driver.Close(); err != nil {
		logger.Error("failed to close database driver", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.SQL().PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

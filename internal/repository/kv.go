package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/fedtech/jobtracker/internal/common"
)

// KVRepository stores opaque documents under string keys.
type KVRepository interface {
	// Get returns common.ErrNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type kvRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewKVRepository(db *DB, logger *slog.Logger) KVRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &kvRepo{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *kvRepo) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := entsql.Dialect(r.db.Dialect).
		Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.db.SQL().QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to read key", "key", key, "error", err)
		return nil, fmt.Errorf("read %q: %w", key, errors.Join(common.ErrDatabase, err))
	}
	return []byte(value), nil
}

func (r *kvRepo) Put(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(r.db.Dialect).
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), r.now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.SQL().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to write key", "key", key, "bytes", len(value), "error", err)
		return fmt.Errorf("write %q: %w", key, errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("kv.put", "key", key, "bytes", len(value))
	return nil
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(r.db.Dialect).
		Delete(kvTable).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.SQL().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to delete key", "key", key, "error", err)
		return fmt.Errorf("delete %q: %w", key, errors.Join(common.ErrDatabase, err))
	}
	return nil
}

package repository

import (
	"context"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedtech/jobtracker/internal/common"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, dialect.Postgres, DialectFor("postgres://u:p@localhost/jobs"))
	assert.Equal(t, dialect.Postgres, DialectFor("PostgreSQL://localhost/jobs"))
	assert.Equal(t, dialect.SQLite, DialectFor("jobtracker.db"))
	assert.Equal(t, dialect.SQLite, DialectFor(":memory:"))
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewKVRepository(openMemory(t), nil)

	_, err := kv.Get(ctx, "fedtech-jobs")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "fedtech-jobs", []byte(`[{"id":"1"}]`)))
	got, err := kv.Get(ctx, "fedtech-jobs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	// last writer wins
	require.NoError(t, kv.Put(ctx, "fedtech-jobs", []byte(`[]`)))
	got, err = kv.Get(ctx, "fedtech-jobs")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, kv.Delete(ctx, "fedtech-jobs"))
	_, err = kv.Get(ctx, "fedtech-jobs")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestHealthCheck(t *testing.T) {
	db := openMemory(t)
	assert.NoError(t, HealthCheck(context.Background(), db, 0, nil))
}

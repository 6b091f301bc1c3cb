package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB understands just the statements Store issues.
type fakeDB struct {
	rows  map[string]string
	execs []string
	fail  error
}

type row struct {
	v   string
	err error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.v
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if f.fail != nil {
		return row{err: f.fail}
	}
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return row{err: pgx.ErrNoRows}
	}
	return row{v: v}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.fail != nil {
		return pgconn.CommandTag{}, f.fail
	}
	switch {
	case strings.Contains(sql, "INSERT INTO shop_state"):
		f.rows[args[0].(string)] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM shop_state"):
		delete(f.rows, args[0].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{rows: map[string]string{}}
	s := kv.Prefixed(&Store{DB: db}, ProfilePrefix("p-1"))

	_, err := s.Get(ctx, "shop_cart_v1")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "shop_cart_v1", "[]"))
	assert.Equal(t, "[]", db.rows["profile:p-1:shop_cart_v1"])

	v, err := s.Get(ctx, "shop_cart_v1")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Delete(ctx, "shop_cart_v1"))
	assert.Empty(t, db.rows)
}

func TestStore_Failure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("conn refused")
	s := &Store{DB: &fakeDB{rows: map[string]string{}, fail: boom}}

	_, err := s.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, kv.ErrNotFound))
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, s.Set(ctx, "k", "v"), boom)
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{rows: map[string]string{}}
	require.NoError(t, Migrate(context.Background(), db))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS shop_state")
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS checkouts")
}

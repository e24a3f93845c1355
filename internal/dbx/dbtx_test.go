package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// A minimal driver that records transaction outcomes, enough to exercise
// the commit/rollback/panic paths of WithTx without a real database.

type recorder struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
	execs     []string
}

type fakeDriver struct{ rec *recorder }

func (d *fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{rec: d.rec}, nil }

type fakeConn struct{ rec *recorder }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{rec: c.rec, query: query}, nil
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{rec: c.rec}, nil }

type fakeStmt struct {
	rec   *recorder
	query string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }
func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.rec.execs = append(s.rec.execs, s.query)
	return driver.RowsAffected(1), nil
}
func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries not supported")
}

type fakeTx struct{ rec *recorder }

func (t *fakeTx) Commit() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.commits++
	return nil
}
func (t *fakeTx) Rollback() error {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.rollbacks++
	return nil
}

var registerOnce sync.Once
var sharedRec = &recorder{}

func setupDB(t *testing.T) (*sql.DB, *recorder) {
	t.Helper()
	registerOnce.Do(func() {
		sql.Register("dbxfake", &fakeDriver{rec: sharedRec})
	})
	sharedRec.mu.Lock()
	sharedRec.commits, sharedRec.rollbacks, sharedRec.execs = 0, 0, nil
	sharedRec.mu.Unlock()

	db, err := sql.Open("dbxfake", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, sharedRec
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, rec := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t (v) VALUES ('a')`)
		return err
	})
	require.NoError(t, err)

	require.Equal(t, 1, rec.commits)
	require.Equal(t, 0, rec.rollbacks)
	require.Len(t, rec.execs, 1)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, rec := setupDB(t)

	wantErr := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	require.Equal(t, 0, rec.commits)
	require.Equal(t, 1, rec.rollbacks)
}

func TestWithTx_RollsBackOnPanicAndRethrows(t *testing.T) {
	db, rec := setupDB(t)

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			panic("kaboom")
		})
	})

	require.Equal(t, 0, rec.commits)
	require.Equal(t, 1, rec.rollbacks)
}

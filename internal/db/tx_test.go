package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// stubConn is a minimal driver connection that records transaction outcomes.
type stubConn struct {
	begins    int
	commits   int
	rollbacks int
	beginErr  error
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, io.EOF }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	c.begins++
	return &stubTx{conn: c}, nil
}

type stubTx struct{ conn *stubConn }

func (t *stubTx) Commit() error   { t.conn.commits++; return nil }
func (t *stubTx) Rollback() error { t.conn.rollbacks++; return nil }

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return nil }

func newStubDB(conn *stubConn) *sql.DB {
	db := sql.OpenDB(stubConnector{conn: conn})
	db.SetMaxOpenConns(1)
	return db
}

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	conn := &stubConn{}
	database := newStubDB(conn)
	defer database.Close()
	tm := NewTxManager(database)

	var sawTx bool
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, sawTx = Conn(ctx, database).(*sql.Tx)
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if !sawTx {
		t.Error("fn context did not carry the transaction")
	}
	if conn.commits != 1 || conn.rollbacks != 0 {
		t.Errorf("commits = %d, rollbacks = %d, want 1/0", conn.commits, conn.rollbacks)
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	conn := &stubConn{}
	database := newStubDB(conn)
	defer database.Close()
	tm := NewTxManager(database)

	wantErr := errors.New("store rejected the write")
	err := tm.RunInTx(context.Background(), func(context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("err = %v, want the fn error unchanged", err)
	}
	if conn.commits != 0 || conn.rollbacks != 1 {
		t.Errorf("commits = %d, rollbacks = %d, want 0/1", conn.commits, conn.rollbacks)
	}
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	conn := &stubConn{}
	database := newStubDB(conn)
	defer database.Close()
	tm := NewTxManager(database)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic must propagate out of RunInTx")
			}
		}()
		_ = tm.RunInTx(context.Background(), func(context.Context) error {
			panic("handler blew up")
		})
	}()

	if conn.commits != 0 || conn.rollbacks != 1 {
		t.Errorf("commits = %d, rollbacks = %d, want 0/1", conn.commits, conn.rollbacks)
	}
}

func TestRunInTxBeginFailure(t *testing.T) {
	conn := &stubConn{beginErr: errors.New("too many connections")}
	database := newStubDB(conn)
	defer database.Close()
	tm := NewTxManager(database)

	called := false
	err := tm.RunInTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected begin error to propagate")
	}
	if called {
		t.Error("fn must not run when the transaction cannot start")
	}
}

func TestConnFallsBackWithoutTransaction(t *testing.T) {
	conn := &stubConn{}
	database := newStubDB(conn)
	defer database.Close()

	q := Conn(context.Background(), database)
	if q != Querier(database) {
		t.Error("Conn without a transaction must return the fallback handle")
	}
}

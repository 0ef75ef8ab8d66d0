package controllers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stepKind int

const (
	kindQuery stepKind = iota
	kindExec
)

// capturedStmt records the statement and bound arguments a step matched,
// so a test can assert on the values a handler actually wrote.
type capturedStmt struct {
	query string
	args  []driver.Value
}

// queryStep scripts one expected statement. A nil args slice skips the
// argument check, which inserts with generated ids and timestamps need.
type queryStep struct {
	kind    stepKind
	pattern *regexp.Regexp
	args    []driver.Value
	columns []string
	rows    [][]driver.Value
	err     error
	result  driver.Result
	capture *capturedStmt
}

type scriptedDB struct {
	mu    sync.Mutex
	steps []*queryStep
}

func (db *scriptedDB) next(kind stepKind, query string, args []driver.NamedValue) (*queryStep, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if step.kind != kind {
		return nil, fmt.Errorf("unexpected kind for query %s: got %v want %v", query, kind, step.kind)
	}
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if step.args != nil {
		if len(step.args) != len(args) {
			return nil, fmt.Errorf("unexpected arg count for %s: got %d want %d", query, len(args), len(step.args))
		}
		for i := range args {
			if args[i].Value != step.args[i] {
				return nil, fmt.Errorf("unexpected arg %d for %s: got %v want %v", i, query, args[i].Value, step.args[i])
			}
		}
	}
	if step.capture != nil {
		step.capture.query = query
		step.capture.args = make([]driver.Value, len(args))
		for i := range args {
			step.capture.args[i] = args[i].Value
		}
	}
	db.steps = db.steps[1:]
	return step, nil
}

func (db *scriptedDB) verifyComplete() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) != 0 {
		return fmt.Errorf("unmet expectations: %d", len(db.steps))
	}
	return nil
}

// setArg returns the value bound to one column of a captured
// "UPDATE ... SET col=?,... WHERE" statement.
func setArg(t *testing.T, stmt *capturedStmt, column string) driver.Value {
	t.Helper()
	start := strings.Index(stmt.query, " SET ")
	end := strings.LastIndex(stmt.query, " WHERE ")
	if start < 0 || end < 0 || end <= start {
		t.Fatalf("not an update statement: %s", stmt.query)
	}
	assignments := strings.Split(stmt.query[start+5:end], ",")
	for i, a := range assignments {
		if strings.HasPrefix(strings.TrimSpace(a), "`"+column+"`=") {
			return stmt.args[i]
		}
	}
	t.Fatalf("column %s not set in %s", column, stmt.query)
	return nil
}

type scriptedDriver struct {
	db *scriptedDB
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) {
	return &scriptedConn{db: d.db}, nil
}

type scriptedConn struct {
	db *scriptedDB
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(kindQuery, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	return &scriptedRows{columns: step.columns, rows: step.rows}, nil
}

func (c *scriptedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	step, err := c.db.next(kindExec, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.result != nil {
		return step.result, nil
	}
	return scriptedResult{rowsAffected: 1}, nil
}

type scriptedResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r scriptedResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r scriptedResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type scriptedRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *scriptedRows) Columns() []string { return r.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	for i := range row {
		dest[i] = row[i]
	}
	r.idx++
	return nil
}

func newScriptedGormDB(t *testing.T, steps []*queryStep) (*gorm.DB, *scriptedDB, func()) {
	t.Helper()
	state := &scriptedDB{steps: steps}
	driverName := fmt.Sprintf("scripted_%d", time.Now().UnixNano())
	sql.Register(driverName, &scriptedDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("failed to open sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gormDB, state, cleanup
}

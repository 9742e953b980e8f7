package logic

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// MockPool scripts Postgres responses by SQL text. tx is nil for calls made
// outside a transaction.
type MockPool struct {
	QueryFunc    func(tx *MockTx, sql string, args []any) (pgx.Rows, error)
	QueryRowFunc func(tx *MockTx, sql string, args []any) pgx.Row
	ExecFunc     func(tx *MockTx, sql string, args []any) (pgconn.CommandTag, error)

	mu         sync.Mutex
	Statements []string
	Begins     int
	Commits    int
	Rollbacks  int
}

func (m *MockPool) record(sql string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = append(m.Statements, strings.Join(strings.Fields(sql), " "))
}

// Ran counts recorded statements containing fragment
func (m *MockPool) Ran(fragment string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Statements {
		if strings.Contains(s, fragment) {
			n++
		}
	}
	return n
}

func (m *MockPool) query(tx *MockTx, sql string, args []any) (pgx.Rows, error) {
	m.record(sql)
	if m.QueryFunc == nil {
		return &MockRows{}, nil
	}
	return m.QueryFunc(tx, sql, args)
}

func (m *MockPool) queryRow(tx *MockTx, sql string, args []any) pgx.Row {
	m.record(sql)
	if m.QueryRowFunc == nil {
		return &MockRow{err: pgx.ErrNoRows}
	}
	return m.QueryRowFunc(tx, sql, args)
}

func (m *MockPool) exec(tx *MockTx, sql string, args []any) (pgconn.CommandTag, error) {
	m.record(sql)
	if m.ExecFunc == nil {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return m.ExecFunc(tx, sql, args)
}

// Query fails once ctx is done, as pgx does
func (m *MockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := m.query(nil, sql, args)
	if err == nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return rows, err
}

func (m *MockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRow(nil, sql, args)
}

func (m *MockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.exec(nil, sql, args)
}

func (m *MockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	m.Begins++
	m.mu.Unlock()
	return &MockTx{pool: m}, nil
}

// MockTx stages writes in Pending; they run only on Commit
type MockTx struct {
	pgx.Tx
	pool    *MockPool
	done    bool
	Pending []func()
}

func (t *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.pool.query(t, sql, args)
}

func (t *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.pool.queryRow(t, sql, args)
}

func (t *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.pool.exec(t, sql, args)
}

func (t *MockTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	for _, apply := range t.Pending {
		apply()
	}
	t.pool.mu.Lock()
	t.pool.Commits++
	t.pool.mu.Unlock()
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.pool.mu.Lock()
	t.pool.Rollbacks++
	t.pool.mu.Unlock()
	return nil
}

type MockRows struct {
	pgx.Rows
	Data [][]any
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.Data)
}

func (m *MockRows) Scan(dest ...any) error {
	return scanInto(m.Data[m.idx-1], dest)
}

func (m *MockRows) Close()     {}
func (m *MockRows) Err() error { return nil }

type MockRow struct {
	values []any
	err    error
}

func row(values ...any) *MockRow {
	return &MockRow{values: values}
}

func rowErr(err error) *MockRow {
	return &MockRow{err: err}
}

func (m *MockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	return scanInto(m.values, dest)
}

func scanInto(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("mock scan: %d values for %d destinations", len(values), len(dest))
	}
	for i := range dest {
		assign(dest[i], values[i])
	}
	return nil
}

// assign sets *dest to val, wrapping val in a pointer or converting it when
// the destination needs that.
func assign(dest any, val any) {
	v := reflect.ValueOf(dest).Elem()
	if val == nil {
		v.Set(reflect.Zero(v.Type()))
		return
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(v.Type()):
		v.Set(rv)
	case v.Kind() == reflect.Pointer && rv.Type().AssignableTo(v.Type().Elem()):
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(rv)
		v.Set(p)
	default:
		v.Set(rv.Convert(v.Type()))
	}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint"}
}

func strPtr(s string) *string { return &s }

func datePtr(s string) *time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return &t
}

func eventValues(e models.Event) []any {
	var date any
	if e.Date != nil {
		date = *e.Date
	}
	return []any{e.ID, e.Name, date, e.Location, e.Promotion, e.CreatedAt}
}

func fightValues(f models.Fight) []any {
	return []any{f.ID, f.EventID, f.FighterA, f.FighterB, f.WeightClass, f.BoutOrder, f.TitleFight, string(f.Status)}
}

func pickValues(p models.AnalystPick) []any {
	var picked any
	if p.PickedFighter != nil {
		picked = *p.PickedFighter
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{p.ID, p.FightID, p.AnalystName, p.Platform, p.SourceURL, picked,
		string(p.MethodPrediction), string(p.ConfidenceTag), p.ReasoningNotes, tags, p.CreatedAt}
}

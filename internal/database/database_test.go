package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ropebot/internal/logger"
)

// recorder - минимальный драйвер database/sql, который запоминает выполненные запросы
type recorder struct {
	mu      sync.Mutex
	queries []string
	args    [][]driver.Value
	fail    bool
	rows    [][]driver.Value // ответ на любой SELECT
}

func (r *recorder) Open(string) (driver.Conn, error) { return &conn{r: r}, nil }

type conn struct{ r *recorder }

func (c *conn) Prepare(query string) (driver.Stmt, error) { return &stmt{r: c.r, query: query}, nil }
func (c *conn) Close() error                              { return nil }
func (c *conn) Begin() (driver.Tx, error)                 { return nil, errors.New("no transactions") }

type stmt struct {
	r     *recorder
	query string
}

func (s *stmt) Close() error  { return nil }
func (s *stmt) NumInput() int { return -1 }
func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if s.r.fail {
		return nil, errors.New("table is locked")
	}
	s.r.queries = append(s.r.queries, s.query)
	s.r.args = append(s.r.args, args)
	return driver.RowsAffected(1), nil
}
func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if s.r.fail {
		return nil, errors.New("table is locked")
	}
	s.r.queries = append(s.r.queries, s.query)
	s.r.args = append(s.r.args, args)
	return &cannedRows{rows: s.r.rows}, nil
}

type cannedRows struct {
	rows [][]driver.Value
}

func (r *cannedRows) Columns() []string {
	if len(r.rows) == 0 {
		return nil
	}
	return make([]string, len(r.rows[0]))
}

func (r *cannedRows) Close() error { return nil }

func (r *cannedRows) Next(dest []driver.Value) error {
	if len(r.rows) == 0 {
		return io.EOF
	}
	copy(dest, r.rows[0])
	r.rows = r.rows[1:]
	return nil
}

type connector struct{ r *recorder }

func (c connector) Connect(context.Context) (driver.Conn, error) { return &conn{r: c.r}, nil }
func (c connector) Driver() driver.Driver                        { return c.r }

func newRecorded(t *testing.T) (*DatabaseManager, *recorder) {
	t.Helper()
	r := &recorder{}
	db := sql.OpenDB(connector{r: r})
	t.Cleanup(func() { db.Close() })
	return NewDatabaseManager(db, logger.Discard()), r
}

func TestEnsureSchema(t *testing.T) {
	m, r := newRecorded(t)
	if err := m.EnsureSchema(); err != nil {
		t.Fatal(err)
	}
	if len(r.queries) != 2 || !strings.Contains(r.queries[0], "agent_cycles") || !strings.Contains(r.queries[1], "action_verifications") {
		t.Errorf("queries = %v", r.queries)
	}
}

func TestRecordAsync(t *testing.T) {
	m, r := newRecorded(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	m.RecordCycle(CycleRecord{RunID: "run", Cycle: 7, State: "engaging", Enemies: 3, Action: "attack", CreatedAt: now})
	m.RecordVerification(VerificationRecord{RunID: "run", Label: "down", Ratio: 0.03, Verdict: "strong", Effect: true, CreatedAt: now})
	m.WaitForAsyncOperations()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) != 2 {
		t.Fatalf("queries = %d, want 2", len(r.queries))
	}
	var cycleArgs []driver.Value
	for i, q := range r.queries {
		if strings.Contains(q, "agent_cycles") {
			cycleArgs = r.args[i]
		}
	}
	if len(cycleArgs) != 11 || cycleArgs[1] != int64(7) || cycleArgs[2] != "engaging" {
		t.Errorf("cycle args = %v", cycleArgs)
	}
}

func TestRecordFailureIsLogged(t *testing.T) {
	m, r := newRecorded(t)
	r.fail = true

	var buf strings.Builder
	m.logger = logger.NewWriterLogger(&buf)
	m.RecordCycle(CycleRecord{Cycle: 1})
	m.WaitForAsyncOperations()

	if !strings.Contains(buf.String(), "Ошибка сохранения цикла 1") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestRecentRuns(t *testing.T) {
	m, r := newRecorded(t)
	start := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)
	r.rows = [][]driver.Value{
		{"20240102_030000", int64(120), int64(35), start, end},
	}

	runs, err := m.RecentRuns(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %v", runs)
	}
	got := runs[0]
	if got.RunID != "20240102_030000" || got.Cycles != 120 || got.Attacks != 35 || !got.EndedAt.Equal(end) {
		t.Errorf("run = %+v", got)
	}
	if len(r.args) != 1 || r.args[0][0] != int64(5) {
		t.Errorf("args = %v", r.args)
	}
}

func TestVerificationStats(t *testing.T) {
	m, r := newRecorded(t)
	r.rows = [][]driver.Value{
		{"down", int64(4), int64(3), 0.02},
		{"left_jump", int64(2), int64(0), 0.0001},
	}

	stats, err := m.VerificationStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %v", stats)
	}
	if stats[0].Label != "down" || stats[0].Rate() != 0.75 {
		t.Errorf("down = %+v, rate %v", stats[0], stats[0].Rate())
	}
	if stats[1].Rate() != 0 {
		t.Errorf("left_jump rate = %v", stats[1].Rate())
	}
	if (VerificationStat{}).Rate() != 0 {
		t.Error("empty stat rate must be 0")
	}
}

func TestQueryFailure(t *testing.T) {
	m, r := newRecorded(t)
	r.fail = true

	if _, err := m.RecentRuns(1); err == nil {
		t.Error("RecentRuns: expected error")
	}
	if _, err := m.VerificationStats(); err == nil {
		t.Error("VerificationStats: expected error")
	}
}

// Package transcript provides SQLite-based persistence of plan runs and
// per-task outcomes. It records history only; execution never depends on it.
package transcript

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/calebhart/stepline/pkg/models"
)

// Store wraps an SQLite database holding run transcripts.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns the XDG data path for the transcript database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "stepline", "transcripts.db")
}

// Open opens (creating if needed) the transcript database at path.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	plan_name TEXT NOT NULL,
	halt_on_error INTEGER NOT NULL,
	status TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at DATETIME
);
CREATE TABLE IF NOT EXISTS task_results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx INTEGER NOT NULL,
	task_type TEXT NOT NULL,
	prompt TEXT NOT NULL,
	status TEXT NOT NULL,
	started_at DATETIME,
	ended_at DATETIME,
	results TEXT,
	PRIMARY KEY (run_id, idx)
);
`

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Run is one recorded plan execution.
type Run struct {
	ID          string
	PlanName    string
	HaltOnError bool
	Status      string
	StartedAt   time.Time
	EndedAt     *time.Time
}

// BeginRun records the start of a plan execution and returns its run ID.
func (s *Store) BeginRun(planName string, haltOnError bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()[:8]
	_, err := s.conn.Exec(
		`INSERT INTO runs (id, plan_name, halt_on_error, status, started_at) VALUES (?, ?, ?, 'running', ?)`,
		id, planName, boolInt(haltOnError), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun records the terminal status of a run.
func (s *Store) FinishRun(runID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(
		`UPDATE runs SET status = ?, ended_at = ? WHERE id = ?`,
		status, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordTask upserts the outcome of one task within a run.
func (s *Store) RecordTask(runID string, index int, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(
		`INSERT INTO task_results (run_id, idx, task_type, prompt, status, started_at, ended_at, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, idx) DO UPDATE SET
		 status = excluded.status, started_at = excluded.started_at,
		 ended_at = excluded.ended_at, results = excluded.results`,
		runID, index, string(task.Type), task.Prompt, string(task.Status),
		timePtr(task.StartTime), timePtr(task.EndTime),
		strings.Join(task.Results, "\n"),
	)
	if err != nil {
		return fmt.Errorf("record task: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(
		`SELECT id, plan_name, halt_on_error, status, started_at, ended_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var halt int
		var ended sql.NullTime
		if err := rows.Scan(&r.ID, &r.PlanName, &halt, &r.Status, &r.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.HaltOnError = halt != 0
		if ended.Valid {
			t := ended.Time
			r.EndedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TaskRecord is one recorded task outcome.
type TaskRecord struct {
	Index    int
	TaskType string
	Prompt   string
	Status   string
	Results  []string
}

// RunTasks returns the recorded task outcomes for a run, in plan order.
func (s *Store) RunTasks(runID string) ([]TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(
		`SELECT idx, task_type, prompt, status, results
		 FROM task_results WHERE run_id = ? ORDER BY idx`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task results: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var rec TaskRecord
		var results sql.NullString
		if err := rows.Scan(&rec.Index, &rec.TaskType, &rec.Prompt, &rec.Status, &results); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		if results.Valid && results.String != "" {
			rec.Results = strings.Split(results.String, "\n")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

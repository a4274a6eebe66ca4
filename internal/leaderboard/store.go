package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/movabench/ukreval/internal/results"
)

const (
	defaultLimit  = 50
	DefaultDBPath = "leaderboard.db"
)

// Store persists per-task benchmark scores in a SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one scored task from one evaluation run.
type Entry struct {
	ID        int64     `json:"id"`
	Model     string    `json:"model"`
	Backend   string    `json:"backend"`
	Task      string    `json:"task"`
	Accuracy  float64   `json:"accuracy"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Errors    int       `json:"errors"`
	LatencyMs int64     `json:"latency_ms"`
	Tokens    int       `json:"tokens"`
	EvalDate  time.Time `json:"eval_date"`
}

// Standing is a model's aggregate position across all tasks.
type Standing struct {
	Model       string    `json:"model"`
	Backend     string    `json:"backend"`
	AvgAccuracy float64   `json:"avg_accuracy"`
	Tasks       int       `json:"tasks"`
	LastEval    time.Time `json:"last_eval"`
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("leaderboard: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("leaderboard: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leaderboard: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("leaderboard: nil db")
	}

	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS benchmark_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model TEXT NOT NULL,
			backend TEXT NOT NULL,
			task TEXT NOT NULL,
			accuracy REAL NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			tokens INTEGER NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_task ON benchmark_entries(task)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_model_task ON benchmark_entries(model, task)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_eval_date ON benchmark_entries(eval_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("leaderboard: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if s == nil || s.db == nil {
		return errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return errors.New("leaderboard: nil context")
	}
	if entry == nil {
		return errors.New("leaderboard: nil entry")
	}

	model := strings.TrimSpace(entry.Model)
	backend := strings.TrimSpace(entry.Backend)
	task := strings.TrimSpace(entry.Task)
	if model == "" || backend == "" || task == "" {
		return errors.New("leaderboard: missing model/backend/task")
	}

	evalDate := entry.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO benchmark_entries (
			model, backend, task, accuracy, correct, total, errors, latency_ms, tokens, eval_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, model, backend, task, entry.Accuracy, entry.Correct, entry.Total, entry.Errors, entry.LatencyMs, entry.Tokens, evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("leaderboard: insert entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.EvalDate = evalDate
	entry.Model = model
	entry.Backend = backend
	entry.Task = task
	return nil
}

// SaveRun records every task score from a finished run.
func (s *Store) SaveRun(ctx context.Context, run *results.RunResult) error {
	if run == nil {
		return errors.New("leaderboard: nil run")
	}
	for task, score := range run.Tasks {
		entry := &Entry{
			Model:     run.Model,
			Backend:   run.Backend,
			Task:      task,
			Accuracy:  score.Accuracy,
			Correct:   score.Correct,
			Total:     score.Total,
			Errors:    score.Errors,
			LatencyMs: score.LatencyMs,
			Tokens:    score.Tokens,
			EvalDate:  run.FinishedAt,
		}
		if err := s.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Top returns the best entries for one task, ordered by accuracy.
func (s *Store) Top(ctx context.Context, task string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, errors.New("leaderboard: empty task")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, backend, task, accuracy, correct, total, errors, latency_ms, tokens, eval_date
		FROM benchmark_entries
		WHERE task = ?
		ORDER BY accuracy DESC, latency_ms ASC, eval_date DESC
		LIMIT ?
	`, task, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query task leaderboard: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Overall ranks models by their mean accuracy across all recorded tasks.
func (s *Store) Overall(ctx context.Context, limit int) ([]Standing, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, backend, AVG(accuracy), COUNT(DISTINCT task), MAX(eval_date)
		FROM benchmark_entries
		GROUP BY model, backend
		ORDER BY AVG(accuracy) DESC, MAX(eval_date) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query overall leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var st Standing
		var lastEvalMS int64
		if err := rows.Scan(&st.Model, &st.Backend, &st.AvgAccuracy, &st.Tasks, &lastEvalMS); err != nil {
			return nil, fmt.Errorf("leaderboard: scan standing: %w", err)
		}
		st.LastEval = time.UnixMilli(lastEvalMS).UTC()
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan standings: %w", err)
	}
	return out, nil
}

// ModelHistory returns all entries for one model and task, newest first.
func (s *Store) ModelHistory(ctx context.Context, model, task string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	model = strings.TrimSpace(model)
	task = strings.TrimSpace(task)
	if model == "" || task == "" {
		return nil, errors.New("leaderboard: missing model/task")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, backend, task, accuracy, correct, total, errors, latency_ms, tokens, eval_date
		FROM benchmark_entries
		WHERE model = ? AND task = ?
		ORDER BY eval_date DESC
	`, model, task)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query model history: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var evalDateMS int64
		if err := rows.Scan(
			&e.ID,
			&e.Model,
			&e.Backend,
			&e.Task,
			&e.Accuracy,
			&e.Correct,
			&e.Total,
			&e.Errors,
			&e.LatencyMs,
			&e.Tokens,
			&evalDateMS,
		); err != nil {
			return nil, fmt.Errorf("leaderboard: scan entry: %w", err)
		}
		e.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}

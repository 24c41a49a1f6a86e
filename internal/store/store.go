// Package store хранит итоги запусков в SQLite: лучшее решение каждого
// запуска вместе со статистикой.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound возвращается, когда для экземпляра нет сохранённых запусков.
var ErrNotFound = errors.New("run not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open создаёт или открывает базу по пути path и применяет схему.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite допускает одного писателя.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run — сохранённый запуск.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Instance    string
	Algo        string
	Seed        int64
	Makespan    int
	Feasible    bool
	Stopped     bool
	Evaluations int
	Iterations  int
	Duration    time.Duration
	Fingerprint string
	// Queues — очереди станков как пары (работа, индекс операции).
	Queues [][][2]int
}

// Solution восстанавливает решение по задаче p.
func (r Run) Solution(p *jobshop.Problem) (*jobshop.Solution, error) {
	queues := make([][]jobshop.Task, len(r.Queues))
	for m, q := range r.Queues {
		queues[m] = make([]jobshop.Task, len(q))
		for pos, id := range q {
			job, idx := id[0], id[1]
			if job < 0 || job >= len(p.Jobs) || idx < 0 || idx >= len(p.Jobs[job].Ops) {
				return nil, fmt.Errorf("run %s: machine %d pos %d: unknown operation %d of job %d", r.ID, m, pos, idx, job)
			}
			queues[m][pos] = jobshop.Task{Job: job, Op: p.Jobs[job].Ops[idx]}
		}
	}
	sol := jobshop.NewSolution(queues)
	if err := sol.Validate(p); err != nil {
		return nil, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return sol, nil
}

// SaveRun записывает итог запуска и возвращает его идентификатор (UUIDv7).
func (s *Store) SaveRun(ctx context.Context, instance, algo string, seed int64, res opt.Result) (string, error) {
	if res.Solution == nil {
		return "", errors.New("save run: result has no solution")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	queues, err := marshalQueues(res.Solution)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, instance, algo, seed, makespan, feasible, stopped,
		 evaluations, iterations, duration_ns, fingerprint, queues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id.String(),
		s.now().UnixNano(),
		instance,
		algo,
		seed,
		res.Makespan,
		res.Feasible,
		res.Stopped,
		res.Evaluations,
		res.Iterations,
		int64(res.Duration),
		res.Solution.Fingerprint(),
		queues,
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id.String(), nil
}

const runColumns = `id, created_at, instance, algo, seed, makespan, feasible, stopped,
	evaluations, iterations, duration_ns, fingerprint, queues`

// BestRun возвращает лучший запуск для экземпляра: допустимые раньше
// недопустимых, затем по makespan, затем более ранний.
func (s *Store) BestRun(ctx context.Context, instance string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE instance = ?
		ORDER BY feasible DESC, makespan ASC, created_at ASC, id ASC
		LIMIT 1
	`, instance)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("best run for %q: %w", instance, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("best run for %q: %w", instance, err)
	}
	return r, nil
}

// ListRuns возвращает запуски от новых к старым. Пустой instance — все
// экземпляры, limit <= 0 — без ограничения.
func (s *Store) ListRuns(ctx context.Context, instance string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE ? = '' OR instance = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, instance, instance, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r         Run
		createdAt int64
		duration  int64
		queues    string
	)
	err := sc.Scan(
		&r.ID, &createdAt, &r.Instance, &r.Algo, &r.Seed, &r.Makespan,
		&r.Feasible, &r.Stopped, &r.Evaluations, &r.Iterations,
		&duration, &r.Fingerprint, &queues,
	)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	r.Duration = time.Duration(duration)
	if r.Queues, err = unmarshalQueues(queues); err != nil {
		return Run{}, err
	}
	return r, nil
}

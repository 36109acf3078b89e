// Package store persists percolation sweep results in SQLite.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"epibox/internal/percolation"
)

// DB wraps a SQLite connection holding sweep runs.
type DB struct {
	conn *sqlx.DB
}

// Run describes one stored sweep.
type Run struct {
	ID        int64  `db:"id"`
	CreatedAt string `db:"created_at"`
	Seed      int64  `db:"seed"`
	Mode      string `db:"mode"`
	Trials    int    `db:"trials"`
	Points    int    `db:"points"`
}

// Estimate is one stored (grid size, density) point of a run.
type Estimate struct {
	RunID        int64   `db:"run_id"`
	GridSize     int     `db:"grid_size"`
	Density      float64 `db:"density"`
	Trials       int     `db:"trials"`
	Percolated   int     `db:"percolated"`
	Probability  float64 `db:"probability"`
	StdErr       float64 `db:"std_err"`
	MeanTicks    float64 `db:"mean_ticks"`
	MeanClusters float64 `db:"mean_clusters"`
	Seed         int64   `db:"seed"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		mode TEXT NOT NULL,
		trials INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS estimates (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		grid_size INTEGER NOT NULL,
		density REAL NOT NULL,
		trials INTEGER NOT NULL,
		percolated INTEGER NOT NULL,
		probability REAL NOT NULL,
		std_err REAL NOT NULL,
		mean_ticks REAL NOT NULL,
		mean_clusters REAL NOT NULL,
		seed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_estimates_run ON estimates(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a sweep and all of its points in one transaction and returns
// the new run id.
func (db *DB) SaveRun(ctx context.Context, seed int64, mode percolation.Mode, trials int, results []percolation.Result) (int64, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (created_at, seed, mode, trials) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), seed, string(mode), trials,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range results {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO estimates
			(run_id, grid_size, density, trials, percolated, probability,
			 std_err, mean_ticks, mean_clusters, seed)
			VALUES (:run_id, :grid_size, :density, :trials, :percolated, :probability,
			 :std_err, :mean_ticks, :mean_clusters, :seed)`,
			fromResult(runID, r),
		)
		if err != nil {
			return 0, fmt.Errorf("insert estimate L=%d p=%v: %w", r.GridSize, r.Density, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// Runs returns stored runs, newest first.
func (db *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.SelectContext(ctx, &runs, `
		SELECT r.id, r.created_at, r.seed, r.mode, r.trials, COUNT(e.run_id) AS points
		FROM runs r LEFT JOIN estimates e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	return runs, err
}

// Run returns a single stored run.
func (db *DB) Run(ctx context.Context, id int64) (Run, error) {
	var r Run
	err := db.conn.GetContext(ctx, &r, `
		SELECT r.id, r.created_at, r.seed, r.mode, r.trials, COUNT(e.run_id) AS points
		FROM runs r LEFT JOIN estimates e ON e.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id`, id)
	if err != nil {
		return Run{}, fmt.Errorf("run %d: %w", id, err)
	}
	return r, nil
}

// Estimates returns the points of a run ordered by grid size, then density.
func (db *DB) Estimates(ctx context.Context, runID int64) ([]Estimate, error) {
	var out []Estimate
	err := db.conn.SelectContext(ctx, &out, `
		SELECT run_id, grid_size, density, trials, percolated, probability,
		       std_err, mean_ticks, mean_clusters, seed
		FROM estimates WHERE run_id = ?
		ORDER BY grid_size, density`, runID)
	return out, err
}

func fromResult(runID int64, r percolation.Result) Estimate {
	return Estimate{
		RunID:        runID,
		GridSize:     r.GridSize,
		Density:      r.Density,
		Trials:       r.Trials,
		Percolated:   r.Percolated,
		Probability:  r.Probability,
		StdErr:       r.StdErr,
		MeanTicks:    r.MeanTicks,
		MeanClusters: r.MeanClusters,
		Seed:         r.Seed,
	}
}

// Result converts a stored point back into estimator output.
func (e Estimate) Result(mode percolation.Mode) percolation.Result {
	return percolation.Result{
		GridSize:     e.GridSize,
		Density:      e.Density,
		Trials:       e.Trials,
		Mode:         mode,
		Seed:         e.Seed,
		Percolated:   e.Percolated,
		Probability:  e.Probability,
		StdErr:       e.StdErr,
		MeanTicks:    e.MeanTicks,
		MeanClusters: e.MeanClusters,
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sqlite "modernc.org/sqlite"

	"pv-sizing/internal/model"
)

// Store persists search runs and their cost surfaces in SQLite so the API can
// serve a run after the request that produced it has finished.
type Store struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
}

var ErrRunNotFound = errors.New("run not found")

const initSQL = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA temp_store = MEMORY;
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;
`

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		created_at    TEXT NOT NULL,
		label         TEXT NOT NULL DEFAULT '',
		pv_kw         REAL NOT NULL,
		battery_kwh   REAL NOT NULL,
		pv_cost       REAL NOT NULL,
		battery_cost  REAL NOT NULL,
		residual_cost REAL NOT NULL,
		export_credit REAL NOT NULL,
		total_cost    REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS surface_points (
		run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		pv_kw         REAL NOT NULL,
		battery_kwh   REAL NOT NULL,
		pv_cost       REAL NOT NULL,
		battery_cost  REAL NOT NULL,
		residual_cost REAL NOT NULL,
		export_credit REAL NOT NULL,
		total_cost    REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_surface_points_run ON surface_points(run_id);
`

// Open a run store. Two handles: readers can be concurrent, a single writer
// never is.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
		_, err := conn.ExecContext(ctx, initSQL, nil)
		return err
	})

	read, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run store (read): %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetConnMaxIdleTime(time.Minute)

	write, err := sql.Open("sqlite", path)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("opening run store (write): %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	s := &Store{
		logger: slog.Default().With(slog.String("module", "store")),
		read:   read,
		write:  write,
	}
	if _, err := write.ExecContext(ctx, schemaSQL); err != nil {
		read.Close()
		write.Close()
		return nil, fmt.Errorf("creating run store schema: %w", err)
	}
	return s, nil
}

func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Store) Close() {
	s.read.Close()
	s.write.Close()
}

// Run is one persisted search: its arg-min plus the full surface.
type Run struct {
	ID        string
	CreatedAt time.Time
	Label     string
	Best      model.CostResult
	Surface   []model.CostResult
}

// SaveRun stores a run and its surface in one transaction. An empty ID is
// assigned a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.logger.Debug("saving run",
		"id", run.ID,
		"label", run.Label,
		"points", len(run.Surface))

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, label, pv_kw, battery_kwh, pv_cost, battery_cost, residual_cost, export_credit, total_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339),
		run.Label,
		run.Best.PVCapacityKW,
		run.Best.BatteryCapacityKWh,
		run.Best.PVCost,
		run.Best.BatteryCost,
		run.Best.ResidualCost,
		run.Best.ExportCredit,
		run.Best.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("inserting run row: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO surface_points (run_id, pv_kw, battery_kwh, pv_cost, battery_cost, residual_cost, export_credit, total_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("preparing surface insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range run.Surface {
		if _, err := stmt.ExecContext(ctx,
			run.ID, p.PVCapacityKW, p.BatteryCapacityKWh,
			p.PVCost, p.BatteryCost, p.ResidualCost, p.ExportCredit, p.TotalCost,
		); err != nil {
			return fmt.Errorf("inserting surface point: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun returns a run without its surface; see GetSurface.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.read.QueryRowContext(ctx, `
		SELECT id, created_at, label, pv_kw, battery_kwh, pv_cost, battery_cost, residual_cost, export_credit, total_cost
		FROM runs WHERE id = ?`, id)

	var r Run
	var createdAt string
	err := row.Scan(&r.ID, &createdAt, &r.Label,
		&r.Best.PVCapacityKW, &r.Best.BatteryCapacityKWh,
		&r.Best.PVCost, &r.Best.BatteryCost, &r.Best.ResidualCost, &r.Best.ExportCredit, &r.Best.TotalCost)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scanning run row: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		r.CreatedAt = t
	}
	return r, nil
}

func (s *Store) GetSurface(ctx context.Context, id string) ([]model.CostResult, error) {
	rows, err := s.read.QueryContext(ctx, `
		SELECT pv_kw, battery_kwh, pv_cost, battery_cost, residual_cost, export_credit, total_cost
		FROM surface_points WHERE run_id = ?
		ORDER BY pv_kw, battery_kwh`, id)
	if err != nil {
		return nil, fmt.Errorf("querying surface: %w", err)
	}
	defer rows.Close()

	var out []model.CostResult
	for rows.Next() {
		var p model.CostResult
		if err := rows.Scan(&p.PVCapacityKW, &p.BatteryCapacityKWh,
			&p.PVCost, &p.BatteryCost, &p.ResidualCost, &p.ExportCredit, &p.TotalCost); err != nil {
			return nil, fmt.Errorf("scanning surface point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.read.QueryContext(ctx, `
		SELECT id, created_at, label, pv_kw, battery_kwh, pv_cost, battery_cost, residual_cost, export_credit, total_cost
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.Label,
			&r.Best.PVCapacityKW, &r.Best.BatteryCapacityKWh,
			&r.Best.PVCost, &r.Best.BatteryCost, &r.Best.ResidualCost, &r.Best.ExportCredit, &r.Best.TotalCost); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, trials, topology, best_index, best_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			trials = excluded.trials,
			topology = excluded.topology,
			best_index = excluded.best_index,
			best_score = excluded.best_score,
			created_at = excluded.created_at
	`, run.ID, run.Seed, run.Trials, run.Topology, run.BestIndex, run.BestScore, run.CreatedAt.UnixNano())
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}
	var (
		run     RunRecord
		created int64
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, seed, trials, topology, best_index, best_score, created_at
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Seed, &run.Trials, &run.Topology, &run.BestIndex, &run.BestScore, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	return run, true, nil
}

func (s *SQLiteStore) SaveTrials(ctx context.Context, trials []TrialRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trials (run_id, idx, material, layers, lambda_nm, q, gamma, l_int_um,
			contrast, t0, knee_i, e_sw_pj, tau_s, score, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, idx) DO UPDATE SET
			material = excluded.material,
			layers = excluded.layers,
			lambda_nm = excluded.lambda_nm,
			q = excluded.q,
			gamma = excluded.gamma,
			l_int_um = excluded.l_int_um,
			contrast = excluded.contrast,
			t0 = excluded.t0,
			knee_i = excluded.knee_i,
			e_sw_pj = excluded.e_sw_pj,
			tau_s = excluded.tau_s,
			score = excluded.score,
			error = excluded.error
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trials {
		if _, err := stmt.ExecContext(ctx, t.RunID, t.Index, t.Material, t.Layers, t.LambdaNM, t.Q, t.Gamma, t.LIntUM,
			nullable(t.Contrast), nullable(t.T0), nullable(t.KneeI), nullable(t.ESwPJ), nullable(t.TauS), t.Score, t.Error); err != nil {
			return fmt.Errorf("save trial %s/%d: %w", t.RunID, t.Index, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListTrials(ctx context.Context, runID string) ([]TrialRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, idx, material, layers, lambda_nm, q, gamma, l_int_um,
			contrast, t0, knee_i, e_sw_pj, tau_s, score, error
		FROM trials WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrialRecord
	for rows.Next() {
		var (
			t                            TrialRecord
			contrast, t0, knee, esw, tau sql.NullFloat64
		)
		if err := rows.Scan(&t.RunID, &t.Index, &t.Material, &t.Layers, &t.LambdaNM, &t.Q, &t.Gamma, &t.LIntUM,
			&contrast, &t0, &knee, &esw, &tau, &t.Score, &t.Error); err != nil {
			return nil, err
		}
		t.Contrast, t.T0, t.KneeI, t.ESwPJ, t.TauS = orNaN(contrast), orNaN(t0), orNaN(knee), orNaN(esw), orNaN(tau)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			trials INTEGER NOT NULL,
			topology TEXT NOT NULL,
			best_index INTEGER NOT NULL,
			best_score REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trials (
			run_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			material TEXT NOT NULL,
			layers INTEGER NOT NULL,
			lambda_nm INTEGER NOT NULL,
			q REAL NOT NULL,
			gamma REAL NOT NULL,
			l_int_um REAL NOT NULL,
			contrast REAL,
			t0 REAL,
			knee_i REAL,
			e_sw_pj REAL,
			tau_s REAL,
			score REAL NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (run_id, idx)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// nullable maps NaN to SQL NULL; sqlite has no NaN.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

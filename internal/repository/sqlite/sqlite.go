// Package sqlite persists resolution run history: which spec was resolved
// against which system description, the warnings hit, and the per-subsystem
// resolved payloads. Recording is optional and enabled with the --db flag.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Repository stores resolution runs in a SQLite database
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) a run-history database
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return repo, nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		spec_path TEXT NOT NULL,
		sdt_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS warnings (
		run_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS domains (
		run_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		subsystem_id INTEGER NOT NULL,
		cpus JSON,
		access JSON,
		memory JSON,
		sram JSON,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_warnings_run ON warnings(run_id);
	CREATE INDEX IF NOT EXISTS idx_domains_run ON domains(run_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Run is one recorded resolution pass
type Run struct {
	ID         int64
	SpecPath   string
	SDTPath    string
	OutputPath string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Warnings   []string
	Domains    []DomainRecord
}

// DomainRecord is the persisted form of one resolved subsystem. The list
// attributes hold the same JSON payloads written to domains.yaml.
type DomainRecord struct {
	Name        string
	SubsystemID int64
	CPUs        string
	Access      string
	Memory      string
	SRAM        string
}

// SaveRun records a run with its warnings and domains in one transaction
// and fills in the run ID
func (r *Repository) SaveRun(ctx context.Context, run *Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (spec_path, sdt_path, output_path, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.SpecPath, run.SDTPath, run.OutputPath, run.Status, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	run.ID = id

	for i, msg := range run.Warnings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO warnings (run_id, seq, message) VALUES (?, ?, ?)
		`, id, i, msg); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}

	for _, d := range run.Domains {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO domains (run_id, name, subsystem_id, cpus, access, memory, sram)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, d.Name, d.SubsystemID,
			stringToNull(d.CPUs), stringToNull(d.Access),
			stringToNull(d.Memory), stringToNull(d.SRAM)); err != nil {
			return fmt.Errorf("insert domain %s: %w", d.Name, err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run with its warnings and domains
func (r *Repository) GetRun(ctx context.Context, id int64) (*Run, error) {
	run := &Run{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, spec_path, sdt_path, output_path, status, started_at, finished_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.SpecPath, &run.SDTPath, &run.OutputPath,
		&run.Status, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("query run %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT message FROM warnings WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		run.Warnings = append(run.Warnings, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	drows, err := r.db.QueryContext(ctx, `
		SELECT name, subsystem_id, cpus, access, memory, sram
		FROM domains WHERE run_id = ? ORDER BY name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var d DomainRecord
		var cpus, access, memory, sram sql.NullString
		if err := drows.Scan(&d.Name, &d.SubsystemID, &cpus, &access, &memory, &sram); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.CPUs = nullToString(cpus)
		d.Access = nullToString(access)
		d.Memory = nullToString(memory)
		d.SRAM = nullToString(sram)
		run.Domains = append(run.Domains, d)
	}
	if err := drows.Err(); err != nil {
		return nil, err
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first, without their
// warnings or domains
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, spec_path, sdt_path, output_path, status, started_at, finished_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SpecPath, &run.SDTPath, &run.OutputPath,
			&run.Status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

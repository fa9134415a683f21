package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS extraction_runs (
    job_id TEXT PRIMARY KEY,
    project_root TEXT NOT NULL,
    written_at TEXT NOT NULL,
    files_processed INTEGER NOT NULL,
    record_count INTEGER NOT NULL,
    failure_count INTEGER NOT NULL,
    cancelled INTEGER NOT NULL DEFAULT 0
)`

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS method_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL REFERENCES extraction_runs(job_id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    source_file TEXT NOT NULL,
    declared_order INTEGER NOT NULL,
    line INTEGER NOT NULL,
    language TEXT NOT NULL
)`

const createFailuresTable = `
CREATE TABLE IF NOT EXISTS extraction_failures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL REFERENCES extraction_runs(job_id) ON DELETE CASCADE,
    source_file TEXT NOT NULL,
    kind TEXT NOT NULL,
    message TEXT NOT NULL
)`

const createRecordsFileIndex = `CREATE INDEX IF NOT EXISTS idx_method_records_file ON method_records(source_file)`

// SQLiteSink stores results in a SQLite database. Truncate removes every earlier
// run; append keeps them. Records keep their order through the seq column.
type SQLiteSink struct{}

// Write stores result in the database at destination inside one transaction.
func (s *SQLiteSink) Write(ctx context.Context, destination string, result *extraction.Result, mode Mode) (err error) {
	if mode != ModeAppend && mode != ModeTruncate && mode != "" {
		return &SinkWriteError{Destination: destination, Op: "open", Err: fmt.Errorf("unknown mode %q", mode)}
	}
	if err := checkResult(destination, result); err != nil {
		return err
	}

	lock, err := lockDestination(ctx, destination)
	if err != nil {
		return err
	}
	defer unlock(lock, destination, &err)

	db, err := openDB(destination)
	if err != nil {
		return &SinkWriteError{Destination: destination, Op: "open", Err: err}
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = &SinkWriteError{Destination: destination, Op: "close", Err: cerr}
		}
	}()

	if err := createSchema(ctx, db); err != nil {
		return &SinkWriteError{Destination: destination, Op: "schema", Err: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &SinkWriteError{Destination: destination, Op: "begin", Err: err}
	}
	defer tx.Rollback() // Safe to call even after commit

	if mode != ModeAppend {
		for _, table := range []string{"method_records", "extraction_failures", "extraction_runs"} {
			if _, err := sq.Delete(table).RunWith(tx).ExecContext(ctx); err != nil {
				return &SinkWriteError{Destination: destination, Op: "truncate", Err: fmt.Errorf("clear %s: %w", table, err)}
			}
		}
	}

	if err := insertResult(ctx, tx, result); err != nil {
		return &SinkWriteError{Destination: destination, Op: "write", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &SinkWriteError{Destination: destination, Op: "commit", Err: err}
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{createRunsTable, createRecordsTable, createFailuresTable, createRecordsFileIndex} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

func insertResult(ctx context.Context, tx *sql.Tx, result *extraction.Result) error {
	_, err := sq.Insert("extraction_runs").
		Columns("job_id", "project_root", "written_at", "files_processed", "record_count", "failure_count", "cancelled").
		Values(result.JobID, result.ProjectRoot, time.Now().UTC().Format(time.RFC3339),
			result.FilesProcessed, len(result.Records), len(result.Failures), boolToInt(result.Cancelled)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", result.JobID, err)
	}

	for _, rec := range result.Records {
		_, err := sq.Insert("method_records").
			Columns("job_id", "name", "source_file", "declared_order", "line", "language").
			Values(result.JobID, rec.Name, rec.SourceFile, rec.DeclaredOrder, rec.Line, rec.Language).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert method %s: %w", rec.Name, err)
		}
	}

	for _, f := range result.Failures {
		_, err := sq.Insert("extraction_failures").
			Columns("job_id", "source_file", "kind", "message").
			Values(result.JobID, f.SourceFile, string(f.Kind), f.Message).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert failure %s: %w", f.SourceFile, err)
		}
	}
	return nil
}

// ReadMethodNames returns every stored method name in write order, the same
// sequence the text sink would have produced. The database must already exist.
func ReadMethodNames(ctx context.Context, destination string) (names []string, err error) {
	if _, err := os.Stat(destination); err != nil {
		return nil, fmt.Errorf("open method database: %w", err)
	}

	db, err := openDB(destination)
	if err != nil {
		return nil, fmt.Errorf("open method database %s: %w", destination, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close method database %s: %w", destination, cerr)
		}
	}()

	rows, err := sq.Select("name").From("method_records").OrderBy("seq").RunWith(db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query method names: %w", err)
	}
	defer rows.Close()

	names = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

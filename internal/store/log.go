package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Compile outcome statuses as stored in the compile_log table.
const (
	StatusOK           = "ok"
	StatusParseError   = "parse_error"
	StatusVerifyError  = "verify_error"
	StatusResolveError = "resolve_error"
)

// CompileRecord is one row of the compile audit log.
type CompileRecord struct {
	ID          string
	ProgramHash string
	ModuleName  string
	Status      string
	Diagnostic  string
	FuncCount   int
	Duration    time.Duration
	CreatedAt   time.Time
}

// RecordCompile inserts a compile attempt into the log. If rec.ID is
// empty a UUIDv7 is generated so rows sort by insertion time. Returns
// the ID of the inserted row.
func (s *Store) RecordCompile(ctx context.Context, rec CompileRecord) (string, error) {
	id := rec.ID
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("record compile: generate id: %w", err)
		}
		id = u.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compile_log
		(id, program_hash, module_name, status, diagnostic, func_count, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		rec.ProgramHash,
		rec.ModuleName,
		rec.Status,
		rec.Diagnostic,
		rec.FuncCount,
		rec.Duration.Microseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("record compile: %w", err)
	}

	return id, nil
}

// Recent returns the most recent compile records, newest first.
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) Recent(ctx context.Context, limit int) ([]CompileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_hash, module_name, status, diagnostic, func_count, duration_us, created_at
		FROM compile_log
		ORDER BY id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query compile log: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByHash returns all compile records for a program hash, newest first.
func (s *Store) ByHash(ctx context.Context, programHash string) ([]CompileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_hash, module_name, status, diagnostic, func_count, duration_us, created_at
		FROM compile_log
		WHERE program_hash = ?
		ORDER BY id COLLATE BINARY DESC
	`, programHash)
	if err != nil {
		return nil, fmt.Errorf("query compile log by hash: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]CompileRecord, error) {
	records := []CompileRecord{}
	for rows.Next() {
		var (
			rec        CompileRecord
			durationUS int64
			createdAt  string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.ProgramHash,
			&rec.ModuleName,
			&rec.Status,
			&rec.Diagnostic,
			&rec.FuncCount,
			&durationUS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan compile record: %w", err)
		}
		rec.Duration = time.Duration(durationUS) * time.Microsecond

		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		rec.CreatedAt = ts

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compile log: %w", err)
	}

	return records, nil
}

// File path: internal/sqlite/catalog.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// InsertCopybook stores a compiled copybook. Re-inserting a copybook
// with a fingerprint already in the catalog returns the existing row
// unchanged, so repeated uploads of the same source deduplicate.
func (s *Store) InsertCopybook(ctx context.Context, cb Copybook) (*Copybook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	if strings.TrimSpace(cb.Name) == "" {
		return nil, fmt.Errorf("copybook name required")
	}
	if existing, err := s.CopybookByFingerprint(ctx, cb.Fingerprint); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO copybooks (name, fingerprint, source, record_name, record_length, field_count)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		cb.Name, cb.Fingerprint, cb.Source, cb.RecordName, cb.RecordLength, cb.FieldCount)
	if err != nil {
		return nil, fmt.Errorf("insert copybook: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("copybook insert id: %w", err)
	}
	return s.CopybookByID(ctx, id)
}

// CopybookByID retrieves a single catalogued copybook.
func (s *Store) CopybookByID(ctx context.Context, id int64) (*Copybook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	var cb Copybook
	if err := s.db.GetContext(ctx, &cb, `SELECT * FROM copybooks WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &cb, nil
}

// CopybookByFingerprint retrieves the copybook keyed by source hash.
func (s *Store) CopybookByFingerprint(ctx context.Context, fingerprint string) (*Copybook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	var cb Copybook
	if err := s.db.GetContext(ctx, &cb, `SELECT * FROM copybooks WHERE fingerprint = ?`, fingerprint); err != nil {
		return nil, err
	}
	return &cb, nil
}

// ListCopybooks returns the catalogue ordered by name.
func (s *Store) ListCopybooks(ctx context.Context) ([]Copybook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	copybooks := []Copybook{}
	if err := s.db.SelectContext(ctx, &copybooks, `SELECT * FROM copybooks ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("select copybooks: %w", err)
	}
	return copybooks, nil
}

// InsertDecodeRun records the outcome of a decode attempt.
func (s *Store) InsertDecodeRun(ctx context.Context, run DecodeRun) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlite store not initialised")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decode_runs (copybook_id, code_page, input_bytes, record_count, status, error)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		run.CopybookID, run.CodePage, run.InputBytes, run.RecordCount, run.Status, run.Error)
	if err != nil {
		return 0, fmt.Errorf("insert decode run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("decode run insert id: %w", err)
	}
	return id, nil
}

// RunsForCopybook returns the decode history for one copybook, newest
// first.
func (s *Store) RunsForCopybook(ctx context.Context, copybookID int64) ([]DecodeRun, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	runs := []DecodeRun{}
	if err := s.db.SelectContext(ctx, &runs, `SELECT * FROM decode_runs WHERE copybook_id = ? ORDER BY id DESC`, copybookID); err != nil {
		return nil, fmt.Errorf("select decode runs: %w", err)
	}
	return runs, nil
}

// ListActivity reads the copybook_activity rollup view.
func (s *Store) ListActivity(ctx context.Context) ([]Activity, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	activity := []Activity{}
	if err := s.db.SelectContext(ctx, &activity, `SELECT * FROM copybook_activity ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select copybook activity: %w", err)
	}
	return activity, nil
}

// File path: internal/sqlite/types.go
package sqlite

import (
	"database/sql"
	"time"
)

// Copybook represents a catalogued copybook compilation.
type Copybook struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Fingerprint  string    `db:"fingerprint"`
	Source       string    `db:"source"`
	RecordName   string    `db:"record_name"`
	RecordLength int       `db:"record_length"`
	FieldCount   int       `db:"field_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// DecodeRun represents one recorded decode attempt against a copybook.
type DecodeRun struct {
	ID          int64          `db:"id"`
	CopybookID  int64          `db:"copybook_id"`
	CodePage    string         `db:"code_page"`
	InputBytes  int            `db:"input_bytes"`
	RecordCount int            `db:"record_count"`
	Status      string         `db:"status"`
	Error       sql.NullString `db:"error"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Activity summarises run history for one copybook.
type Activity struct {
	CopybookID int64          `db:"copybook_id"`
	Name       string         `db:"name"`
	Runs       int            `db:"runs"`
	Succeeded  int            `db:"succeeded"`
	LastRunAt  sql.NullString `db:"last_run_at"`
}

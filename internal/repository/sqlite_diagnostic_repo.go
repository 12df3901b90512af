package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"promptbox-backend/internal/models"
)

const sqliteDiagnosticsSchema = `
CREATE TABLE IF NOT EXISTS diagnostics (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL,
	model TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diagnostics_session ON diagnostics(session_id, created_at);
`

// SQLiteDiagnosticRepo stores diagnostics in a local file for the terminal client.
type SQLiteDiagnosticRepo struct {
	db *sql.DB
}

func NewSQLiteDiagnosticRepo(path string) (*SQLiteDiagnosticRepo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostics database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping diagnostics database: %w", err)
	}
	if _, err := db.Exec(sqliteDiagnosticsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create diagnostics schema: %w", err)
	}
	return &SQLiteDiagnosticRepo{db: db}, nil
}

func (r *SQLiteDiagnosticRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteDiagnosticRepo) Record(ctx context.Context, d *models.Diagnostic) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diagnostics (id, session_id, kind, detail, model, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.SessionID.String(), string(d.Kind), d.Detail, d.Model, d.StatusCode, d.CreatedAt.UTC(),
	)
	return err
}

func (r *SQLiteDiagnosticRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.Diagnostic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, kind, detail, model, status_code, created_at
		FROM diagnostics WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Diagnostic
	for rows.Next() {
		var id, session, kind string
		d := &models.Diagnostic{}
		if err := rows.Scan(&id, &session, &kind, &d.Detail, &d.Model, &d.StatusCode, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.ID, _ = uuid.Parse(id)
		d.SessionID, _ = uuid.Parse(session)
		d.Kind = models.OutcomeKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}

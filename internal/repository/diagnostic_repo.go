package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptbox-backend/internal/models"
)

type DiagnosticRepo struct {
	pool *pgxpool.Pool
}

func NewDiagnosticRepo(pool *pgxpool.Pool) *DiagnosticRepo {
	return &DiagnosticRepo{pool: pool}
}

func (r *DiagnosticRepo) Record(ctx context.Context, d *models.Diagnostic) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	query := `INSERT INTO diagnostics (id, session_id, kind, detail, model, status_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.SessionID, string(d.Kind), d.Detail, d.Model, d.StatusCode, d.CreatedAt,
	)
	return err
}

func (r *DiagnosticRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.Diagnostic, error) {
	query := `SELECT id, session_id, kind, detail, model, status_code, created_at
		FROM diagnostics WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Diagnostic
	for rows.Next() {
		d := &models.Diagnostic{}
		var kind string
		if err := rows.Scan(&d.ID, &d.SessionID, &kind, &d.Detail, &d.Model, &d.StatusCode, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = models.OutcomeKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}

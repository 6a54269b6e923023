package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/domain/repository"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, ev entity.AuditEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_audit_logs (user_id, email, action, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.UserID, ev.Email, string(ev.Action), ev.IP, ev.UserAgent, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

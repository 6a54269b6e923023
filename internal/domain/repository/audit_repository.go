package repository

import (
	"context"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

type AuditRepository interface {
	Record(ctx context.Context, ev entity.AuditEvent) error
}

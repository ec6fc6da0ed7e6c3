package audit

import (
	"context"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type DatabaseRepo interface {
	// SaveAuditEntry persists the given audit entry.
	SaveAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
}

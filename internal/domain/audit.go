package domain

import (
	"context"
	"time"
)

type AuditSeverityLevel string

const AuditSeverityLevelLow AuditSeverityLevel = "low"
const AuditSeverityLevelMedium AuditSeverityLevel = "medium"
const AuditSeverityLevelHigh AuditSeverityLevel = "high"

// AuditEventWrapper attaches the request context to an audit event so the recorder
// can resolve the acting user.
type AuditEventWrapper[T any] struct {
	Ctx    context.Context
	Source string
	Event  T
}

type AuditEntry struct {
	UniqueId  uint64    `gorm:"primaryKey;autoIncrement:true;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_au_created"`

	Severity AuditSeverityLevel `gorm:"column:severity;index:idx_au_severity"`

	Origin string `gorm:"column:origin"` // origin: for example session, auth, ...

	Message string `gorm:"column:message"`
}

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// Recorder writes authentication events from the message bus to the audit table.
type Recorder struct {
	cfg *config.Config
	bus evbus.MessageBus

	db DatabaseRepo
}

func NewAuditRecorder(cfg *config.Config, bus evbus.MessageBus, db DatabaseRepo) (*Recorder, error) {
	r := &Recorder{
		cfg: cfg,
		bus: bus,

		db: db,
	}

	err := r.connectToMessageBus()
	if err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return r, nil
}

func (r *Recorder) connectToMessageBus() error {
	if !r.cfg.Statistics.CollectAuditData {
		return nil // nothing to do
	}

	if err := r.bus.Subscribe(app.TopicAuditLoginSuccess, r.handleAuthEvent(
		domain.AuditSeverityLevelLow, "login succeeded")); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", app.TopicAuditLoginSuccess, err)
	}
	if err := r.bus.Subscribe(app.TopicAuditLoginFailed, r.handleAuthEvent(
		domain.AuditSeverityLevelMedium, "login failed")); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", app.TopicAuditLoginFailed, err)
	}
	if err := r.bus.Subscribe(app.TopicAuditLogout, r.handleAuthEvent(
		domain.AuditSeverityLevelLow, "logout")); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", app.TopicAuditLogout, err)
	}

	return nil
}

func (r *Recorder) handleAuthEvent(
	severity domain.AuditSeverityLevel,
	action string,
) func(domain.AuditEventWrapper[AuthEvent]) {
	return func(wrapper domain.AuditEventWrapper[AuthEvent]) {
		message := fmt.Sprintf("%s: %s", action, wrapper.Event.Email)
		if wrapper.Event.Error != "" {
			message = fmt.Sprintf("%s (%s)", message, wrapper.Event.Error)
		}

		err := r.db.SaveAuditEntry(context.Background(), &domain.AuditEntry{
			CreatedAt: time.Now(),
			Severity:  severity,
			Origin:    wrapper.Source,
			Message:   message,
		})
		if err != nil {
			slog.Error("failed to create audit entry", "action", action, "error", err)
			return
		}
	}
}

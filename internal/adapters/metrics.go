package adapters

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	evbus "github.com/vardius/message-bus"
	"gorm.io/gorm"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/audit"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// MetricsServer exposes session and login metrics for Prometheus.
type MetricsServer struct {
	*http.Server
	db *gorm.DB

	loginsTotal       *prometheus.CounterVec
	loginsFailedTotal *prometheus.CounterVec
	logoutsTotal      prometheus.Counter
	activeSessions    prometheus.Gauge
}

// NewMetricsServer returns a new prometheus server
func NewMetricsServer(cfg *config.Config, db *gorm.DB, bus evbus.MessageBus) (*MetricsServer, error) {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	m := &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Statistics.ListeningAddress,
			Handler: mux,
		},
		db: db,

		loginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "invenpulse_logins_total",
				Help: "Successful logins, by login source.",
			}, []string{"source"},
		),
		loginsFailedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "invenpulse_logins_failed_total",
				Help: "Failed login attempts, by login source.",
			}, []string{"source"},
		),
		logoutsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "invenpulse_logouts_total",
				Help: "Logouts.",
			},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "invenpulse_active_sessions",
				Help: "Number of non-expired sessions in the session store.",
			},
		),
	}

	if err := m.connectToMessageBus(bus); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MetricsServer) connectToMessageBus(bus evbus.MessageBus) error {
	if err := bus.Subscribe(app.TopicAuditLoginSuccess, func(w domain.AuditEventWrapper[audit.AuthEvent]) {
		m.loginsTotal.WithLabelValues(w.Source).Inc()
	}); err != nil {
		return err
	}

	if err := bus.Subscribe(app.TopicAuditLoginFailed, func(w domain.AuditEventWrapper[audit.AuthEvent]) {
		m.loginsFailedTotal.WithLabelValues(w.Source).Inc()
	}); err != nil {
		return err
	}

	if err := bus.Subscribe(app.TopicAuditLogout, func(w domain.AuditEventWrapper[audit.AuthEvent]) {
		m.logoutsTotal.Inc()
	}); err != nil {
		return err
	}

	return nil
}

// Run starts the metrics server. It blocks until the context is cancelled.
func (m *MetricsServer) Run(ctx context.Context) {
	go func() {
		if err := m.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()

	slog.Info("started metrics service", "address", m.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shutdown gracefully", "address", m.Addr)
	}
}

// StartBackgroundJobs periodically refreshes the active session gauge.
func (m *MetricsServer) StartBackgroundJobs(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var count int64
				err := m.db.Model(&SessionRecord{}).Where("expiry >= ?", time.Now()).Count(&count).Error
				if err != nil {
					slog.Warn("failed to count active sessions", "error", err)
					continue
				}
				m.activeSessions.Set(float64(count))
			}
		}
	}()
}

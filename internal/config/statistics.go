package config

// StatisticsConfig contains the configuration for the metrics endpoint.
type StatisticsConfig struct {
	// Enabled controls whether the Prometheus metrics endpoint is started.
	Enabled bool `yaml:"enabled"`
	// ListeningAddress is the address and port for the metrics server.
	ListeningAddress string `yaml:"listening_address"`
	// CollectAuditData controls whether login and logout events are written to the audit table.
	CollectAuditData bool `yaml:"collect_audit_data"`
}

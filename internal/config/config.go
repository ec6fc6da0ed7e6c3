package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Core struct {
		// AdminUser defines the default administrator account that will be created
		// in the embedded directory. Must be an email address.
		AdminUser     string `yaml:"admin_user"`
		AdminPassword string `yaml:"admin_password"`

		// SelfSignupAllowed controls whether unknown password logins may register
		// a new account through the signup endpoint.
		SelfSignupAllowed bool `yaml:"self_signup_allowed"`
	} `yaml:"core"`

	Advanced struct {
		LogLevel string `yaml:"log_level"`
		LogJson  bool   `yaml:"log_json"`
	} `yaml:"advanced"`

	Statistics StatisticsConfig `yaml:"statistics"`

	Auth Auth `yaml:"auth"`

	Database DatabaseConfig `yaml:"database"`

	Directory DirectoryConfig `yaml:"directory"`

	Web WebConfig `yaml:"web"`
}

// LogStartupValues logs the effective configuration. Secrets are never logged.
func (c *Config) LogStartupValues() {
	slog.Info("Config Features",
		"embeddedDirectory", c.Directory.Embedded,
		"selfSignupAllowed", c.Core.SelfSignupAllowed,
		"statisticsEnabled", c.Statistics.Enabled,
		"collectAuditData", c.Statistics.CollectAuditData,
	)

	slog.Info("Config Settings",
		"listeningAddress", c.Web.ListeningAddress,
		"externalUrl", c.Web.ExternalUrl,
		"sessionLifetime", c.Web.SessionLifetime,
		"databaseType", c.Database.Type,
		"logLevel", c.Advanced.LogLevel,
	)
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.AdminUser = "admin@invenpulse.local"
	cfg.Core.AdminPassword = "invenpulse-default"
	cfg.Core.SelfSignupAllowed = true

	cfg.Advanced.LogLevel = "info"

	cfg.Database = DatabaseConfig{
		Type: "sqlite",
		DSN:  "data/invenpulse.db",
	}

	cfg.Web = WebConfig{
		RequestLogging:    true,
		ListeningAddress:  ":8080",
		ExternalUrl:       "http://localhost:8080",
		SessionIdentifier: "ipSession",
		SessionSecret:     "verysecret",
		CsrfSecret:        "extremelysecret",
		SessionLifetime:   defaultSessionLifetime,
		RoutePaths: RoutePathConfig{
			Login:          "/login",
			UserDashboard:  "/dashboard",
			AdminDashboard: "/admin",
		},
	}

	cfg.Directory = DirectoryConfig{
		Embedded: true,
		Timeout:  defaultDirectoryTimeout,
	}

	cfg.Statistics = StatisticsConfig{
		Enabled:          false,
		ListeningAddress: ":8787",
		CollectAuditData: true,
	}

	cfg.Auth.CallbackUrlPrefix = "/api/v0"

	return cfg
}

// GetConfig loads the configuration from the config file. Missing values fall back to
// defaults, environment variable references in the file are expanded before parsing.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	cfgFileName := "config/config.yaml"
	if envCfgFileName := os.Getenv("INVENPULSE_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	cfg.Web.Sanitize()

	return cfg, nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no config file, defaults apply
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}

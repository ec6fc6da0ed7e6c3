package config

import "time"

const defaultDirectoryTimeout = 10 * time.Second

// DirectoryConfig configures the user directory that backs password logins.
// Either the embedded directory is used, or an external user service is
// reached over HTTP.
type DirectoryConfig struct {
	// Embedded enables the built-in user directory. If it is true, BaseUrl is ignored.
	Embedded bool `yaml:"embedded"`
	// BaseUrl is the base URL of the external user service, e.g. http://users.internal:5000.
	BaseUrl string `yaml:"base_url"`
	// ApiToken is sent as a bearer token to the external user service. Optional.
	ApiToken string `yaml:"api_token"`
	// Timeout is the request timeout for calls to the external user service.
	Timeout time.Duration `yaml:"timeout"`
}

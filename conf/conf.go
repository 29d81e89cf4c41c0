// Package conf loads the bridge configuration from a TOML file. Secrets can
// be overridden from the environment so the config file stays committable;
// the cmd mains load .env via godotenv before calling Load.
package conf

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Algotester struct {
	APIKey    string `toml:"api_key"`
	Subdomain string `toml:"subdomain"`
	ContestID int    `toml:"contest_id"`
}

type Auth struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type Config struct {
	Algotester Algotester `toml:"algotester"`
	Auth       Auth       `toml:"auth"`

	ContestPackagePath     string `toml:"contest_package_path"`
	PollingIntervalSeconds int    `toml:"polling_interval_seconds"`
	DataDir                string `toml:"data_dir"`
	TeamMappingFile        string `toml:"team_mapping_file"`
	ProblemMappingFile     string `toml:"problem_mapping_file"`
	ListenAddr             string `toml:"listen_addr"`
}

// Environment overrides for values that should not live in the config file.
const (
	EnvConfigPath   = "CCSFEED_CONFIG"
	EnvAPIKey       = "ALGOTESTER_API_KEY"
	EnvAuthUsername = "CCSFEED_AUTH_USERNAME"
	EnvAuthPassword = "CCSFEED_AUTH_PASSWORD"
)

// DefaultPath returns the config path from CCSFEED_CONFIG, falling back to
// config.toml in the working directory.
func DefaultPath() string {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return "config.toml"
}

// Load reads the config at path, applies defaults and env overrides, and
// validates required fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		PollingIntervalSeconds: 30,
		DataDir:                "./data",
		TeamMappingFile:        "./team_mapping.yaml",
		ProblemMappingFile:     "./problem_mapping.yaml",
		ListenAddr:             ":8080",
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Algotester.APIKey = v
	}
	if v := os.Getenv(EnvAuthUsername); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv(EnvAuthPassword); v != "" {
		cfg.Auth.Password = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Algotester.APIKey == "" {
		return fmt.Errorf("algotester.api_key is required (or %s)", EnvAPIKey)
	}
	if c.Algotester.Subdomain == "" {
		return fmt.Errorf("algotester.subdomain is required")
	}
	if c.Algotester.ContestID == 0 {
		return fmt.Errorf("algotester.contest_id is required")
	}
	if c.ContestPackagePath == "" {
		return fmt.Errorf("contest_package_path is required")
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth.username and auth.password are required (or %s/%s)",
			EnvAuthUsername, EnvAuthPassword)
	}
	return nil
}

func (c *Config) PollingInterval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}

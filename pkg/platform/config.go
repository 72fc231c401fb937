// Package platform provides server configuration loading and validation.
package platform

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStorageAPIURL is the Keboola Storage API endpoint used when no
// override is configured.
const DefaultStorageAPIURL = "https://connection.keboola.com"

// defaultLogLevel is applied when no log level is configured.
const defaultLogLevel = "INFO"

// validLogLevels enumerates accepted log level names.
var validLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Config holds the complete server configuration. The storage token is the
// only required field; the Snowflake block is optional and gates the query
// toolkit.
type Config struct {
	StorageToken  string `yaml:"storage_token"`
	StorageAPIURL string `yaml:"storage_api_url"`
	LogLevel      string `yaml:"log_level"`

	Snowflake SnowflakeConfig `yaml:"snowflake"`
}

// SnowflakeConfig holds warehouse credentials. All fields are optional
// individually; HasSnowflakeConfig reports whether the set is usable.
type SnowflakeConfig struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Role      string `yaml:"role"`
}

// FromEnv creates a config from KBC_-prefixed environment variables.
func FromEnv() *Config {
	cfg := &Config{
		StorageToken:  os.Getenv("KBC_STORAGE_TOKEN"),
		StorageAPIURL: os.Getenv("KBC_STORAGE_API_URL"),
		LogLevel:      os.Getenv("KBC_LOG_LEVEL"),
		Snowflake: SnowflakeConfig{
			Account:   os.Getenv("KBC_SNOWFLAKE_ACCOUNT"),
			User:      os.Getenv("KBC_SNOWFLAKE_USER"),
			Password:  os.Getenv("KBC_SNOWFLAKE_PASSWORD"),
			Warehouse: os.Getenv("KBC_SNOWFLAKE_WAREHOUSE"),
			Database:  os.Getenv("KBC_SNOWFLAKE_DATABASE"),
			Schema:    os.Getenv("KBC_SNOWFLAKE_SCHEMA"),
			Role:      os.Getenv("KBC_SNOWFLAKE_ROLE"),
		},
	}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a YAML file. ${VAR} references are
// expanded from the environment before parsing, and any field left empty by
// the file falls back to its KBC_ environment variable.
// The path comes from command line arguments, controlled by the operator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// mergeEnv fills empty fields from the environment.
func mergeEnv(cfg *Config) {
	env := FromEnv()
	if cfg.StorageToken == "" {
		cfg.StorageToken = env.StorageToken
	}
	if cfg.StorageAPIURL == "" {
		cfg.StorageAPIURL = env.StorageAPIURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = env.LogLevel
	}
	fillSnowflake(&cfg.Snowflake, env.Snowflake)
}

// fillSnowflake copies env values into unset Snowflake fields.
func fillSnowflake(dst *SnowflakeConfig, env SnowflakeConfig) {
	if dst.Account == "" {
		dst.Account = env.Account
	}
	if dst.User == "" {
		dst.User = env.User
	}
	if dst.Password == "" {
		dst.Password = env.Password
	}
	if dst.Warehouse == "" {
		dst.Warehouse = env.Warehouse
	}
	if dst.Database == "" {
		dst.Database = env.Database
	}
	if dst.Schema == "" {
		dst.Schema = env.Schema
	}
	if dst.Role == "" {
		dst.Role = env.Role
	}
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.StorageAPIURL == "" {
		cfg.StorageAPIURL = DefaultStorageAPIURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.StorageToken == "" {
		errs = append(errs, "storage token is required (KBC_STORAGE_TOKEN)")
	}
	if c.StorageAPIURL == "" {
		errs = append(errs, "storage API URL is required")
	}
	if !validLogLevels[strings.ToUpper(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// HasSnowflakeConfig reports whether the Snowflake credential set is complete
// enough to open warehouse connections.
func (c *Config) HasSnowflakeConfig() bool {
	sf := c.Snowflake
	return sf.Account != "" && sf.User != "" && sf.Password != "" && sf.Warehouse != ""
}

// WarehouseDatabase returns the Snowflake database to qualify table
// identifiers with. When no database is configured it falls back to the
// KEBOOLA_<project> convention derived from the storage token, whose first
// dash-separated segment is the project id.
func (c *Config) WarehouseDatabase() string {
	if c.Snowflake.Database != "" {
		return c.Snowflake.Database
	}
	if c.StorageToken == "" {
		return ""
	}
	project, _, _ := strings.Cut(c.StorageToken, "-")
	return "KEBOOLA_" + project
}

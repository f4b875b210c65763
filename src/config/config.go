package config

import (
	"fmt"
	"os"

	"venue-collections/src/helpers"
	"venue-collections/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "./collections"
	}
	for i := range c.Venues {
		if c.Venues[i].Type == "" {
			c.Venues[i].Type = "static"
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server is optional: port 0 disables it
	if c.Port != 0 {
		if c.Host == "" {
			return fmt.Errorf("server host cannot be empty")
		}
		if c.Port <= 1024 || c.Port > 65535 {
			return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
		}
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Aggregation configuration
	switch c.Aggregation.FailurePolicy {
	case models.PolicyAbort, models.PolicySkip:
	default:
		return fmt.Errorf("failure policy must be %q or %q", models.PolicyAbort, models.PolicySkip)
	}
	if c.Aggregation.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	if c.Aggregation.RebuildIntervalSeconds < 0 {
		return fmt.Errorf("rebuild interval cannot be negative")
	}

	// Validate Venues
	if len(c.Venues) == 0 {
		return fmt.Errorf("at least one venue must be configured")
	}
	names := make(map[string]struct{}, len(c.Venues))
	for i, v := range c.Venues {
		if v.Name == "" {
			return fmt.Errorf("venue %d must have a name", i)
		}
		if _, dup := names[v.Name]; dup {
			return fmt.Errorf("venue '%s' is configured twice", v.Name)
		}
		names[v.Name] = struct{}{}

		switch v.Type {
		case "static":
		case "http":
			if v.URL == "" {
				return fmt.Errorf("venue '%s' must have a url", v.Name)
			}
		case "table":
			if v.Table == "" {
				return fmt.Errorf("venue '%s' must have a table reference", v.Name)
			}
			if c.Storage.DBType == "none" {
				return fmt.Errorf("venue '%s' reads a table but no database is configured", v.Name)
			}
		default:
			return fmt.Errorf("venue '%s' has unsupported type '%s'", v.Name, v.Type)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

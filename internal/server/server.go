// Package server wires configuration, toolkits and the MCP server together.
package server

import (
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	storage "github.com/keboola-community/mcp-keboola/pkg/keboola"
	"github.com/keboola-community/mcp-keboola/pkg/platform"
	"github.com/keboola-community/mcp-keboola/pkg/registry"
	keboolatk "github.com/keboola-community/mcp-keboola/pkg/toolkits/keboola"
	snowflaketk "github.com/keboola-community/mcp-keboola/pkg/toolkits/snowflake"
	"github.com/keboola-community/mcp-keboola/pkg/warehouse"
)

// Version is set at build time.
var Version = "dev"

// New creates an MCP server from the given configuration. The storage
// toolkit is always registered; the query toolkit only joins when the
// Snowflake credential set is complete.
func New(cfg *platform.Config, log *slog.Logger) (*mcp.Server, *registry.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := storage.NewClient(cfg.StorageAPIURL, cfg.StorageToken, storage.WithLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("creating storage client: %w", err)
	}

	resolver := warehouse.NewResolver(client, cfg.WarehouseDatabase())

	reg := registry.New()

	metadataToolkit, err := keboolatk.New("storage", client, resolver)
	if err != nil {
		return nil, nil, fmt.Errorf("creating storage toolkit: %w", err)
	}
	if err := reg.Register(metadataToolkit); err != nil {
		return nil, nil, fmt.Errorf("registering storage toolkit: %w", err)
	}

	if cfg.HasSnowflakeConfig() {
		executor, err := warehouse.NewExecutor(warehouse.Config{
			Account:   cfg.Snowflake.Account,
			User:      cfg.Snowflake.User,
			Password:  cfg.Snowflake.Password,
			Warehouse: cfg.Snowflake.Warehouse,
			Database:  cfg.Snowflake.Database,
			Schema:    cfg.Snowflake.Schema,
			Role:      cfg.Snowflake.Role,
		}, warehouse.WithExecutorLogger(log))
		if err != nil {
			return nil, nil, fmt.Errorf("creating query executor: %w", err)
		}

		queryToolkit, err := snowflaketk.New("warehouse", resolver, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("creating query toolkit: %w", err)
		}
		if err := reg.Register(queryToolkit); err != nil {
			return nil, nil, fmt.Errorf("registering query toolkit: %w", err)
		}
	} else {
		log.Info("snowflake credentials not configured, query tools disabled")
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "mcp-keboola",
		Version: Version,
	}, nil)

	reg.RegisterAllTools(s)
	reg.RegisterAllResources(s)

	log.Info("server ready",
		"toolkits", len(reg.All()),
		"tools", len(reg.AllTools()))

	return s, reg, nil
}

// NewWithConfigFile loads configuration from a YAML file and creates the
// server from it.
func NewWithConfigFile(path string, log *slog.Logger) (*mcp.Server, *registry.Registry, error) {
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return New(cfg, log)
}

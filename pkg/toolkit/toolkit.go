// Package toolkit defines the interface composable toolkits implement and
// shared connection types. It has zero internal dependencies to avoid import
// cycles between the registry and toolkit implementations.
package toolkit

import "github.com/modelcontextprotocol/go-sdk/mcp"

// Toolkit is the interface that all composable toolkits must implement.
type Toolkit interface {
	// Kind returns the toolkit type (e.g., "keboola", "snowflake").
	Kind() string

	// Name returns the instance name.
	Name() string

	// Connection returns the backend connection name, for logging.
	Connection() string

	// RegisterTools registers all tools with the MCP server.
	RegisterTools(s *mcp.Server)

	// RegisterResources registers MCP resources, if the toolkit has any.
	RegisterResources(s *mcp.Server)

	// Tools returns a list of tool names provided by this toolkit.
	Tools() []string

	// Close releases resources.
	Close() error
}

// ConnectionDetail provides information about a single connection within a
// toolkit.
type ConnectionDetail struct {
	Name        string
	Description string
	IsDefault   bool
}

// Package registry provides toolkit registration and management.
package registry

import (
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keboola-community/mcp-keboola/pkg/toolkit"
)

// Registry manages toolkit registration and lifecycle.
type Registry struct {
	mu       sync.RWMutex
	toolkits map[string]toolkit.Toolkit
}

// New creates a new toolkit registry.
func New() *Registry {
	return &Registry{
		toolkits: make(map[string]toolkit.Toolkit),
	}
}

// Register adds a toolkit to the registry.
func (r *Registry) Register(tk toolkit.Toolkit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := toolkitKey(tk.Kind(), tk.Name())
	if _, exists := r.toolkits[key]; exists {
		return fmt.Errorf("toolkit %s already registered", key)
	}
	r.toolkits[key] = tk
	return nil
}

// Get retrieves a toolkit by kind and name.
func (r *Registry) Get(kind, name string) (toolkit.Toolkit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tk, ok := r.toolkits[toolkitKey(kind, name)]
	return tk, ok
}

// GetByKind retrieves all toolkits of a kind.
func (r *Registry) GetByKind(kind string) []toolkit.Toolkit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []toolkit.Toolkit
	for _, tk := range r.toolkits {
		if tk.Kind() == kind {
			result = append(result, tk)
		}
	}
	return result
}

// All returns all registered toolkits.
func (r *Registry) All() []toolkit.Toolkit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]toolkit.Toolkit, 0, len(r.toolkits))
	for _, tk := range r.toolkits {
		result = append(result, tk)
	}
	return result
}

// AllTools returns all tool names from all toolkits.
func (r *Registry) AllTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]string, 0, len(r.toolkits)*4)
	for _, tk := range r.toolkits {
		tools = append(tools, tk.Tools()...)
	}
	return tools
}

// RegisterAllTools registers every toolkit's tools with the MCP server.
func (r *Registry) RegisterAllTools(s *mcp.Server) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tk := range r.toolkits {
		tk.RegisterTools(s)
	}
}

// RegisterAllResources registers every toolkit's resources with the MCP
// server.
func (r *Registry) RegisterAllResources(s *mcp.Server) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tk := range r.toolkits {
		tk.RegisterResources(s)
	}
}

// Close closes all toolkits, returning the combined errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for key, tk := range r.toolkits {
		if err := tk.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing toolkits: %v", errs)
	}
	return nil
}

// toolkitKey builds the registry key for a kind and name.
func toolkitKey(kind, name string) string {
	return kind + "/" + name
}

// Package snowflake provides the warehouse query toolkit.
package snowflake

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keboola-community/mcp-keboola/pkg/warehouse"
)

// Resolver resolves storage table ids to warehouse identifiers.
type Resolver interface {
	Resolve(ctx context.Context, tableID string) (*warehouse.ResolvedTable, error)
}

// Executor runs SQL text against the warehouse and returns CSV output.
type Executor interface {
	Execute(ctx context.Context, sqlText string) (string, error)
}

// Toolkit exposes raw and structured warehouse queries as MCP tools.
type Toolkit struct {
	name     string
	resolver Resolver
	executor Executor
}

// New creates the query toolkit.
func New(name string, resolver Resolver, executor Executor) (*Toolkit, error) {
	if resolver == nil {
		return nil, fmt.Errorf("identifier resolver is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("query executor is required")
	}
	return &Toolkit{name: name, resolver: resolver, executor: executor}, nil
}

// Kind returns the toolkit kind.
func (*Toolkit) Kind() string {
	return "snowflake"
}

// Name returns the toolkit instance name.
func (t *Toolkit) Name() string {
	return t.name
}

// Connection returns the backend connection name for logging.
func (t *Toolkit) Connection() string {
	return t.name
}

type queryInput struct {
	SQL string `json:"sql"`
}

type queryTableInput struct {
	TableID string   `json:"table_id"`
	Columns []string `json:"columns,omitempty"`
	Where   string   `json:"where,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// readOnly marks both query tools; only SELECTs are expected here, and the
// warehouse role should enforce it.
var readOnly = &mcp.ToolAnnotations{ReadOnlyHint: true}

// RegisterTools registers the query tools with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "snowflake_query",
		Description: "Execute a Snowflake SQL query against the project warehouse and return CSV. " +
			"Statements must use the full path including database name, e.g. " +
			`SELECT * FROM SAPI_10025."in.c-sales"."orders". Snowflake is case sensitive, so ` +
			"wrap column names in double quotes. Use keboola_get_table_detail to obtain identifiers.",
		Annotations: readOnly,
	}, t.handleQuery)

	mcp.AddTool(s, &mcp.Tool{
		Name: "snowflake_query_table",
		Description: "Query a table by its storage id with optional columns, WHERE clause and row limit. " +
			"Identifiers are resolved and quoted automatically; prefer this over snowflake_query " +
			"for single-table reads.",
		Annotations: readOnly,
	}, t.handleQueryTable)
}

// RegisterResources registers MCP resources; the query toolkit has none.
func (*Toolkit) RegisterResources(*mcp.Server) {}

// Tools returns the list of tool names provided by this toolkit.
func (*Toolkit) Tools() []string {
	return []string{
		"snowflake_query",
		"snowflake_query_table",
	}
}

// Close releases resources. Connections are per-call, nothing is held open.
func (*Toolkit) Close() error {
	return nil
}

func (t *Toolkit) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input queryInput) (*mcp.CallToolResult, any, error) {
	if input.SQL == "" {
		return errorResult(fmt.Errorf("sql is required")), nil, nil
	}

	out, err := t.executor.Execute(ctx, input.SQL)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(out), nil, nil
}

func (t *Toolkit) handleQueryTable(ctx context.Context, _ *mcp.CallToolRequest, input queryTableInput) (*mcp.CallToolResult, any, error) {
	if input.TableID == "" {
		return errorResult(fmt.Errorf("table_id is required")), nil, nil
	}

	resolved, err := t.resolver.Resolve(ctx, input.TableID)
	if err != nil {
		return errorResult(err), nil, nil
	}

	sqlText, err := warehouse.BuildSelect(resolved, warehouse.QuerySpec{
		TableID: input.TableID,
		Columns: input.Columns,
		Where:   input.Where,
		Limit:   input.Limit,
	})
	if err != nil {
		return errorResult(err), nil, nil
	}

	out, err := t.executor.Execute(ctx, sqlText)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(out), nil, nil
}

// textResult creates a success CallToolResult with a single text block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult creates an error CallToolResult. Tool failures are reported in
// the result per the MCP protocol, not as handler errors.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// Verify interface compliance.
var _ interface {
	Kind() string
	Name() string
	Connection() string
	RegisterTools(s *mcp.Server)
	RegisterResources(s *mcp.Server)
	Tools() []string
	Close() error
} = (*Toolkit)(nil)

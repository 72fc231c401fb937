// Package keboola provides the Storage API metadata toolkit.
package keboola

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	storage "github.com/keboola-community/mcp-keboola/pkg/keboola"
	"github.com/keboola-community/mcp-keboola/pkg/warehouse"
)

// StorageClient is the subset of the Storage API client the toolkit needs.
type StorageClient interface {
	ListBuckets(ctx context.Context) ([]storage.Bucket, error)
	GetBucket(ctx context.Context, bucketID string) (*storage.Bucket, error)
	ListBucketTables(ctx context.Context, bucketID string) ([]storage.Table, error)
	GetTable(ctx context.Context, tableID string) (*storage.Table, error)
	ListComponents(ctx context.Context) ([]storage.Component, error)
	ListComponentConfigs(ctx context.Context, componentID string) ([]storage.ComponentConfig, error)
}

// TableDetail is the structured result of keboola_get_table_detail: the raw
// descriptor plus resolved warehouse identifiers.
type TableDetail struct {
	ID                string                       `json:"id"`
	Name              string                       `json:"name"`
	PrimaryKey        []string                     `json:"primary_key"`
	Created           string                       `json:"created"`
	RowCount          int64                        `json:"row_count"`
	DataSizeBytes     int64                        `json:"data_size_bytes"`
	Columns           []string                     `json:"columns"`
	ColumnIdentifiers []warehouse.ColumnIdentifier `json:"column_identifiers"`
	DBIdentifier      string                       `json:"db_identifier"`
}

// Toolkit exposes Storage API metadata as MCP tools and resources.
type Toolkit struct {
	name     string
	client   StorageClient
	resolver *warehouse.Resolver
}

// New creates the metadata toolkit.
func New(name string, client StorageClient, resolver *warehouse.Resolver) (*Toolkit, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("identifier resolver is required")
	}
	return &Toolkit{name: name, client: client, resolver: resolver}, nil
}

// Kind returns the toolkit kind.
func (*Toolkit) Kind() string {
	return "keboola"
}

// Name returns the toolkit instance name.
func (t *Toolkit) Name() string {
	return t.name
}

// Connection returns the backend connection name for logging.
func (t *Toolkit) Connection() string {
	return t.name
}

type bucketInput struct {
	BucketID string `json:"bucket_id"`
}

type tableInput struct {
	TableID string `json:"table_id"`
}

type componentInput struct {
	ComponentID string `json:"component_id"`
}

type emptyInput struct{}

// readOnly marks every tool in this toolkit; the whole surface is reads.
var readOnly = &mcp.ToolAnnotations{ReadOnlyHint: true}

// RegisterTools registers all metadata tools with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_list_buckets",
		Description: "List all buckets in the Keboola project with their basic information.",
		Annotations: readOnly,
	}, t.handleListBuckets)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_get_bucket",
		Description: "Get detailed information about a specific bucket.",
		Annotations: readOnly,
	}, t.handleGetBucket)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_list_bucket_tables",
		Description: "List all tables in a specific bucket with row counts, sizes and columns.",
		Annotations: readOnly,
	}, t.handleListBucketTables)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_get_table",
		Description: "Get the raw descriptor of a specific table.",
		Annotations: readOnly,
	}, t.handleGetTable)

	mcp.AddTool(s, &mcp.Tool{
		Name: "keboola_get_table_detail",
		Description: "Get detailed information about a table including its warehouse identifier " +
			"and quoted column identifiers for use in SQL queries.",
		Annotations: readOnly,
	}, t.handleGetTableDetail)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_list_components",
		Description: "List all components available to the project.",
		Annotations: readOnly,
	}, t.handleListComponents)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "keboola_list_component_configs",
		Description: "List all configurations of a specific component.",
		Annotations: readOnly,
	}, t.handleListComponentConfigs)
}

// Tools returns the list of tool names provided by this toolkit.
func (*Toolkit) Tools() []string {
	return []string{
		"keboola_list_buckets",
		"keboola_get_bucket",
		"keboola_list_bucket_tables",
		"keboola_get_table",
		"keboola_get_table_detail",
		"keboola_list_components",
		"keboola_list_component_configs",
	}
}

// Close releases resources. The HTTP client has nothing to release.
func (*Toolkit) Close() error {
	return nil
}

func (t *Toolkit) handleListBuckets(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	buckets, err := t.client.ListBuckets(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatBucketList(buckets)), nil, nil
}

func (t *Toolkit) handleGetBucket(ctx context.Context, _ *mcp.CallToolRequest, input bucketInput) (*mcp.CallToolResult, any, error) {
	if input.BucketID == "" {
		return errorResult(fmt.Errorf("bucket_id is required")), nil, nil
	}
	bucket, err := t.client.GetBucket(ctx, input.BucketID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatBucket(bucket)), nil, nil
}

func (t *Toolkit) handleListBucketTables(ctx context.Context, _ *mcp.CallToolRequest, input bucketInput) (*mcp.CallToolResult, any, error) {
	if input.BucketID == "" {
		return errorResult(fmt.Errorf("bucket_id is required")), nil, nil
	}
	tables, err := t.client.ListBucketTables(ctx, input.BucketID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatTableList(tables)), nil, nil
}

func (t *Toolkit) handleGetTable(ctx context.Context, _ *mcp.CallToolRequest, input tableInput) (*mcp.CallToolResult, any, error) {
	if input.TableID == "" {
		return errorResult(fmt.Errorf("table_id is required")), nil, nil
	}
	table, err := t.client.GetTable(ctx, input.TableID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatTable(table)), nil, nil
}

func (t *Toolkit) handleGetTableDetail(ctx context.Context, _ *mcp.CallToolRequest, input tableInput) (*mcp.CallToolResult, any, error) {
	if input.TableID == "" {
		return errorResult(fmt.Errorf("table_id is required")), nil, nil
	}
	detail, err := t.tableDetail(ctx, input.TableID)
	if err != nil {
		return errorResult(err), nil, nil
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("marshaling table detail: %w", err)), nil, nil
	}
	return textResult(string(data)), detail, nil
}

func (t *Toolkit) handleListComponents(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	components, err := t.client.ListComponents(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatComponentList(components)), nil, nil
}

func (t *Toolkit) handleListComponentConfigs(ctx context.Context, _ *mcp.CallToolRequest, input componentInput) (*mcp.CallToolResult, any, error) {
	if input.ComponentID == "" {
		return errorResult(fmt.Errorf("component_id is required")), nil, nil
	}
	configs, err := t.client.ListComponentConfigs(ctx, input.ComponentID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(FormatConfigList(input.ComponentID, configs)), nil, nil
}

// tableDetail resolves a table and assembles the structured detail record.
func (t *Toolkit) tableDetail(ctx context.Context, tableID string) (*TableDetail, error) {
	resolved, err := t.resolver.Resolve(ctx, tableID)
	if err != nil {
		return nil, err
	}

	table := resolved.Table
	return &TableDetail{
		ID:                table.ID,
		Name:              table.Name,
		PrimaryKey:        table.PrimaryKey,
		Created:           table.Created,
		RowCount:          table.RowsCount,
		DataSizeBytes:     table.DataSizeBytes,
		Columns:           table.Columns,
		ColumnIdentifiers: resolved.Columns,
		DBIdentifier:      resolved.Identifier,
	}, nil
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

package keboola

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// Resource URIs and templates.
const (
	bucketsResourceURI    = "keboola://buckets"
	componentsResourceURI = "keboola://components"
	bucketTablesTemplate  = "keboola://buckets/{bucket_id}/tables"
	tableDetailTemplate   = "keboola://tables/{table_id}"
)

// RegisterResources registers keboola:// resources with the MCP server.
func (t *Toolkit) RegisterResources(s *mcp.Server) {
	s.AddResource(&mcp.Resource{
		URI:         bucketsResourceURI,
		Name:        "Buckets",
		Description: "All buckets in the Keboola project",
		MIMEType:    "application/json",
	}, t.handleBucketsResource)

	s.AddResource(&mcp.Resource{
		URI:         componentsResourceURI,
		Name:        "Components",
		Description: "All components available to the project",
		MIMEType:    "text/plain",
	}, t.handleComponentsResource)

	s.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: bucketTablesTemplate,
		Name:        "Bucket Tables",
		Description: "Tables in a specific bucket",
		MIMEType:    "text/plain",
	}, t.handleBucketTablesResource)

	s.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tableDetailTemplate,
		Name:        "Table Detail",
		Description: "Table descriptor with warehouse identifier and column identifiers",
		MIMEType:    "application/json",
	}, t.handleTableDetailResource)
}

// parseTemplateVars extracts named variables from a URI using a URI template.
func parseTemplateVars(templateStr, uri string) (map[string]string, error) {
	tmpl, err := uritemplate.New(templateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", templateStr, err)
	}

	match := tmpl.Match(uri)
	if match == nil {
		return nil, fmt.Errorf("uri %q does not match template %q", uri, templateStr)
	}

	result := make(map[string]string)
	for _, name := range tmpl.Varnames() {
		result[name] = match.Get(name).String()
	}
	return result, nil
}

func (t *Toolkit) handleBucketsResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	buckets, err := t.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}

	data, err := json.Marshal(buckets)
	if err != nil {
		return nil, fmt.Errorf("marshaling buckets: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      bucketsResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (t *Toolkit) handleComponentsResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	components, err := t.client.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      componentsResourceURI,
			MIMEType: "text/plain",
			Text:     FormatComponentList(components),
		}},
	}, nil
}

func (t *Toolkit) handleBucketTablesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	vars, err := parseTemplateVars(bucketTablesTemplate, uri)
	if err != nil || vars["bucket_id"] == "" {
		return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
	}

	tables, err := t.client.ListBucketTables(ctx, vars["bucket_id"])
	if err != nil {
		return nil, fmt.Errorf("listing tables in %s: %w", vars["bucket_id"], err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     FormatTableList(tables),
		}},
	}, nil
}

func (t *Toolkit) handleTableDetailResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	vars, err := parseTemplateVars(tableDetailTemplate, uri)
	if err != nil || vars["table_id"] == "" {
		return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
	}

	detail, err := t.tableDetail(ctx, vars["table_id"])
	if err != nil {
		return nil, fmt.Errorf("resolving table %s: %w", vars["table_id"], err)
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshaling table detail: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

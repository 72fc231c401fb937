package keboola

import (
	"fmt"
	"strings"

	storage "github.com/keboola-community/mcp-keboola/pkg/keboola"
)

// orDefault substitutes a placeholder for empty metadata fields so the text
// blocks read consistently.
func orDefault(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FormatBucketList renders the bucket listing text block.
func FormatBucketList(buckets []storage.Bucket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Bucket List\n\nTotal Buckets: %d\n\n## Details\n", len(buckets))

	for _, bucket := range buckets {
		fmt.Fprintf(&b, "### %s (%s)\n", bucket.Name, bucket.ID)
		fmt.Fprintf(&b, "    - Stage: %s\n", orDefault(bucket.Stage))
		fmt.Fprintf(&b, "    - Description: %s\n", orDefault(bucket.Description))
		fmt.Fprintf(&b, "    - Created: %s\n", orDefault(bucket.Created))
		fmt.Fprintf(&b, "    - Tables: %d\n", bucket.TablesCount)
		fmt.Fprintf(&b, "    - Size: %d bytes\n", bucket.DataSizeBytes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatBucket renders one bucket's detail text block.
func FormatBucket(bucket *storage.Bucket) string {
	return fmt.Sprintf(
		"Bucket Information:\n"+
			"ID: %s\n"+
			"Name: %s\n"+
			"Description: %s\n"+
			"Created: %s\n"+
			"Tables Count: %d\n"+
			"Data Size Bytes: %d",
		bucket.ID,
		bucket.Name,
		orDefault(bucket.Description),
		orDefault(bucket.Created),
		bucket.TablesCount,
		bucket.DataSizeBytes,
	)
}

// FormatTableList renders a bucket's table listing.
func FormatTableList(tables []storage.Table) string {
	blocks := make([]string, 0, len(tables))
	for _, table := range tables {
		blocks = append(blocks, fmt.Sprintf(
			"Table: %s\nName: %s\nRows: %d\nSize: %d bytes\nColumns: %s",
			table.ID,
			orDefault(table.Name),
			table.RowsCount,
			table.DataSizeBytes,
			strings.Join(table.Columns, ", "),
		))
	}
	return strings.Join(blocks, "\n---\n")
}

// FormatTable renders one table's raw descriptor view.
func FormatTable(table *storage.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table Information:\n")
	fmt.Fprintf(&b, "ID: %s\n", table.ID)
	fmt.Fprintf(&b, "Name: %s\n", orDefault(table.Name))
	fmt.Fprintf(&b, "Primary Key: %s\n", orDefault(strings.Join(table.PrimaryKey, ", ")))
	fmt.Fprintf(&b, "Created: %s\n", orDefault(table.Created))
	fmt.Fprintf(&b, "Rows: %d\n", table.RowsCount)
	fmt.Fprintf(&b, "Size: %d bytes\n", table.DataSizeBytes)
	fmt.Fprintf(&b, "Columns: %s", strings.Join(table.Columns, ", "))
	if table.SourceTable != nil {
		fmt.Fprintf(&b, "\nLinked From: %s (project %d)", table.SourceTable.ID, table.SourceTable.Project.ID)
	}
	return b.String()
}

// FormatComponentList renders the component listing.
func FormatComponentList(components []storage.Component) string {
	lines := make([]string, 0, len(components))
	for _, comp := range components {
		lines = append(lines, fmt.Sprintf("- %s: %s", comp.ID, comp.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatConfigList renders a component's configuration listing.
func FormatConfigList(componentID string, configs []storage.ComponentConfig) string {
	if len(configs) == 0 {
		return fmt.Sprintf("No configurations found for component %s", componentID)
	}

	blocks := make([]string, 0, len(configs))
	for _, cfg := range configs {
		blocks = append(blocks, fmt.Sprintf(
			"Configuration: %s\nName: %s\nDescription: %s\nCreated: %s",
			cfg.ID,
			cfg.Name,
			orDefault(cfg.Description),
			orDefault(cfg.Created),
		))
	}
	return strings.Join(blocks, "\n---\n")
}

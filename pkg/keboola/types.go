// Package keboola provides a typed client for the Keboola Storage API.
package keboola

// Bucket describes a storage bucket.
type Bucket struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description"`
	Stage         string `json:"stage"`
	Created       string `json:"created"`
	TablesCount   int    `json:"tablesCount"`
	DataSizeBytes int64  `json:"dataSizeBytes"`
}

// Table describes a storage table. The descriptor is retrieved verbatim from
// the API and never mutated or persisted locally.
type Table struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	DisplayName   string       `json:"displayName"`
	PrimaryKey    []string     `json:"primaryKey"`
	Created       string       `json:"created"`
	RowsCount     int64        `json:"rowsCount"`
	DataSizeBytes int64        `json:"dataSizeBytes"`
	Columns       []string     `json:"columns"`
	SourceTable   *SourceTable `json:"sourceTable,omitempty"`
}

// SourceTable is present on tables linked from another project. Queries
// against such tables must target the source project's database.
type SourceTable struct {
	ID      string        `json:"id"`
	Project SourceProject `json:"project"`
}

// SourceProject identifies the project owning a linked table.
type SourceProject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Component describes an available component.
type Component struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ComponentConfig describes one configuration of a component.
type ComponentConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Created     string `json:"created"`
	IsDisabled  bool   `json:"isDisabled"`
	Version     int    `json:"version"`
}

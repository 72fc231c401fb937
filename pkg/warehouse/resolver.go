// Package warehouse implements the bridge between Storage API metadata and
// the Snowflake warehouse: identifier resolution, SELECT assembly, and
// one-shot query execution.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/keboola-community/mcp-keboola/pkg/keboola"
)

// TableFetcher fetches table descriptors. *keboola.Client implements it.
type TableFetcher interface {
	GetTable(ctx context.Context, tableID string) (*keboola.Table, error)
}

// ColumnIdentifier pairs a logical column name with its quoted warehouse
// identifier.
type ColumnIdentifier struct {
	Name   string `json:"name"`
	Quoted string `json:"db_identifier"`
}

// ResolvedTable is a table descriptor plus its warehouse-qualified identifier
// and per-column quoted identifiers. It is immutable after creation and
// scoped to a single resolution call.
type ResolvedTable struct {
	Table      *keboola.Table
	Identifier string
	Columns    []ColumnIdentifier

	columnIndex map[string]string
}

// QuotedColumn returns the quoted identifier for a logical column name.
func (r *ResolvedTable) QuotedColumn(name string) (string, bool) {
	quoted, ok := r.columnIndex[name]
	return quoted, ok
}

// Resolver maps storage-side table identifiers to warehouse identifiers.
// Every call re-resolves from the Storage API; nothing is cached, so schema
// changes are always picked up at the cost of one metadata request per query.
type Resolver struct {
	fetcher  TableFetcher
	database string
}

// NewResolver creates a resolver qualifying identifiers with database.
func NewResolver(fetcher TableFetcher, database string) *Resolver {
	return &Resolver{fetcher: fetcher, database: database}
}

// Resolve fetches the descriptor for tableID and derives its warehouse
// identifier and column identifiers. Fetch failures are surfaced unchanged;
// there is no retry.
func (r *Resolver) Resolve(ctx context.Context, tableID string) (*ResolvedTable, error) {
	table, err := r.fetcher.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return r.resolveTable(table)
}

// ResolveTable derives identifiers from an already-fetched descriptor.
func (r *Resolver) ResolveTable(table *keboola.Table) (*ResolvedTable, error) {
	return r.resolveTable(table)
}

func (r *Resolver) resolveTable(table *keboola.Table) (*ResolvedTable, error) {
	identifier, err := r.tableIdentifier(table)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnIdentifier, 0, len(table.Columns))
	index := make(map[string]string, len(table.Columns))
	for _, name := range table.Columns {
		quoted := quoteIdentifier(name)
		columns = append(columns, ColumnIdentifier{Name: name, Quoted: quoted})
		index[name] = quoted
	}

	return &ResolvedTable{
		Table:       table,
		Identifier:  identifier,
		Columns:     columns,
		columnIndex: index,
	}, nil
}

// tableIdentifier builds <database>."<bucket>"."<table name>". Tables linked
// from another project resolve against that project's KEBOOLA_<id> database
// using the source table's id and name.
func (r *Resolver) tableIdentifier(table *keboola.Table) (string, error) {
	database := r.database
	tablePath := table.ID
	tableName := table.Name

	if table.SourceTable != nil {
		database = fmt.Sprintf("KEBOOLA_%d", table.SourceTable.Project.ID)
		tablePath = table.SourceTable.ID
	}

	bucket, name, ok := splitTableID(tablePath)
	if !ok {
		return "", fmt.Errorf("malformed table id %q: expected <stage>.<bucket>.<table>", tablePath)
	}
	if tableName == "" {
		tableName = name
	}

	return database + "." + quoteIdentifier(bucket) + "." + quoteIdentifier(tableName), nil
}

// splitTableID splits a storage table id into its bucket part (everything up
// to the last dot) and table part.
func splitTableID(tableID string) (bucket, name string, ok bool) {
	idx := strings.LastIndex(tableID, ".")
	if idx <= 0 || idx == len(tableID)-1 {
		return "", "", false
	}
	return tableID[:idx], tableID[idx+1:], true
}

// quoteIdentifier wraps a name in Snowflake identifier quotes. Embedded
// quote characters are NOT escaped; column and bucket names containing `"`
// will produce broken SQL. This matches the upstream naming contract and is
// kept as an explicit boundary rather than silently hardened.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

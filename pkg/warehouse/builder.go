package warehouse

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// QuerySpec is the caller-supplied shape of a structured query. All fields
// are request-scoped; nothing persists across calls.
type QuerySpec struct {
	TableID string
	Columns []string
	Where   string
	Limit   int
}

// UnknownColumnError reports a requested column absent from the resolved
// table's column set. No SQL is produced when this occurs.
type UnknownColumnError struct {
	Column  string
	TableID string
}

// Error implements the error interface.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q in table %q", e.Column, e.TableID)
}

// BuildSelect assembles a single SELECT statement from a resolved table and
// a query spec.
//
// Explicit columns must all belong to the resolved table; an unknown name
// fails with UnknownColumnError rather than being dropped. Without explicit
// columns the star wildcard is selected. The WHERE clause is appended
// verbatim with no validation -- the caller is trusted to supply well-formed
// predicate text, an explicit boundary of this design. LIMIT appears only
// for a nonzero limit; zero means no limit.
func BuildSelect(table *ResolvedTable, spec QuerySpec) (string, error) {
	columns := []string{"*"}
	if len(spec.Columns) > 0 {
		columns = make([]string, 0, len(spec.Columns))
		for _, name := range spec.Columns {
			quoted, ok := table.QuotedColumn(name)
			if !ok {
				return "", &UnknownColumnError{Column: name, TableID: table.Table.ID}
			}
			columns = append(columns, quoted)
		}
	}

	builder := sq.Select(columns...).From(table.Identifier)
	if spec.Where != "" {
		builder = builder.Where(spec.Where)
	}
	if spec.Limit > 0 {
		builder = builder.Limit(uint64(spec.Limit))
	}

	sqlText, _, err := builder.ToSql()
	if err != nil {
		return "", fmt.Errorf("building select: %w", err)
	}
	return sqlText, nil
}

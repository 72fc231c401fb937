package snowflake

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola-community/mcp-keboola/pkg/keboola"
	"github.com/keboola-community/mcp-keboola/pkg/warehouse"
)

type fakeResolver struct {
	resolved *warehouse.ResolvedTable
	err      error
}

func (f *fakeResolver) Resolve(context.Context, string) (*warehouse.ResolvedTable, error) {
	return f.resolved, f.err
}

type fakeExecutor struct {
	out     string
	err     error
	lastSQL string
}

func (f *fakeExecutor) Execute(_ context.Context, sqlText string) (string, error) {
	f.lastSQL = sqlText
	return f.out, f.err
}

func resolvedOrders(t *testing.T) *warehouse.ResolvedTable {
	t.Helper()
	r := warehouse.NewResolver(nil, "SAPI_10025")
	resolved, err := r.ResolveTable(&keboola.Table{
		ID:      "in.c-sales.orders",
		Name:    "orders",
		Columns: []string{"ID", "Amount"},
	})
	require.NoError(t, err)
	return resolved
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNew_Validation(t *testing.T) {
	_, err := New("warehouse", nil, &fakeExecutor{})
	require.Error(t, err)

	_, err = New("warehouse", &fakeResolver{}, nil)
	require.Error(t, err)
}

func TestToolkitIdentity(t *testing.T) {
	tk, err := New("warehouse", &fakeResolver{}, &fakeExecutor{})
	require.NoError(t, err)

	assert.Equal(t, "snowflake", tk.Kind())
	assert.Equal(t, "warehouse", tk.Name())
	assert.Equal(t, []string{"snowflake_query", "snowflake_query_table"}, tk.Tools())
	assert.NoError(t, tk.Close())
}

func TestHandleQuery(t *testing.T) {
	exec := &fakeExecutor{out: "ID,Amount\no-1,100\n"}
	tk, err := New("warehouse", &fakeResolver{}, exec)
	require.NoError(t, err)

	res, _, err := tk.handleQuery(context.Background(), nil, queryInput{SQL: "SELECT 1"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "ID,Amount\no-1,100\n", resultText(t, res))
	assert.Equal(t, "SELECT 1", exec.lastSQL)
}

func TestHandleQuery_MissingSQL(t *testing.T) {
	tk, err := New("warehouse", &fakeResolver{}, &fakeExecutor{})
	require.NoError(t, err)

	res, _, err := tk.handleQuery(context.Background(), nil, queryInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleQuery_QueryErrorSurfaced(t *testing.T) {
	exec := &fakeExecutor{err: &warehouse.QueryError{Err: assert.AnError}}
	tk, err := New("warehouse", &fakeResolver{}, exec)
	require.NoError(t, err)

	res, _, err := tk.handleQuery(context.Background(), nil, queryInput{SQL: "SELEC 1"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "query error")
}

func TestHandleQueryTable_BuildsExpectedSQL(t *testing.T) {
	exec := &fakeExecutor{out: "Amount\n150\n"}
	tk, err := New("warehouse", &fakeResolver{resolved: resolvedOrders(t)}, exec)
	require.NoError(t, err)

	res, _, err := tk.handleQueryTable(context.Background(), nil, queryTableInput{
		TableID: "in.c-sales.orders",
		Columns: []string{"Amount"},
		Where:   "Amount > 100",
		Limit:   5,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.Equal(t, `SELECT "Amount" FROM SAPI_10025."in.c-sales"."orders" WHERE Amount > 100 LIMIT 5`, exec.lastSQL)
	assert.Equal(t, "Amount\n150\n", resultText(t, res))
}

func TestHandleQueryTable_UnknownColumn(t *testing.T) {
	exec := &fakeExecutor{}
	tk, err := New("warehouse", &fakeResolver{resolved: resolvedOrders(t)}, exec)
	require.NoError(t, err)

	res, _, err := tk.handleQueryTable(context.Background(), nil, queryTableInput{
		TableID: "in.c-sales.orders",
		Columns: []string{"Nope"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown column")
	assert.Empty(t, exec.lastSQL, "no SQL must reach the warehouse")
}

func TestHandleQueryTable_ResolveError(t *testing.T) {
	tk, err := New("warehouse", &fakeResolver{err: &keboola.APIError{StatusCode: 404, Message: "not found"}}, &fakeExecutor{})
	require.NoError(t, err)

	res, _, err := tk.handleQueryTable(context.Background(), nil, queryTableInput{TableID: "in.c-x.y"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestRegisterTools(t *testing.T) {
	tk, err := New("warehouse", &fakeResolver{}, &fakeExecutor{})
	require.NoError(t, err)

	s := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	tk.RegisterTools(s)
	tk.RegisterResources(s)
}

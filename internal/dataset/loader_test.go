package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func countRows(t *testing.T, uri, table string) int64 {
	t.Helper()
	db, err := adapter.Open(context.Background(), uri)
	require.NoError(t, err)
	defer db.Close()
	result, err := db.ExecuteQuery(context.Background(), `SELECT COUNT(*) AS n FROM "`+table+`"`)
	require.NoError(t, err)
	return result.Rows[0]["n"].(int64)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "data/freelancer_earnings_bd.db", StorePath("data/freelancer_earnings_bd.csv"))
	assert.Equal(t, "sqlite:///freelancer_earnings_bd.db", StoreURI("freelancer_earnings_bd.csv"))
	assert.Equal(t, "freelancer_earnings_bd", TableName("/tmp/x/freelancer_earnings_bd.csv"))
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	csvPath := filepath.Join(t.TempDir(), "earnings.csv")
	writeCSV(t, csvPath, "id,usd\n1,10.5\n2,20\n3,30\n")

	uri, err := Load(ctx, csvPath, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, StoreURI(csvPath), uri)
	assert.Equal(t, int64(3), countRows(t, uri, "earnings"))

	_, err = Load(ctx, csvPath, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(3), countRows(t, uri, "earnings"))
}

func TestReloadReplacesRows(t *testing.T) {
	ctx := context.Background()
	csvPath := filepath.Join(t.TempDir(), "earnings.csv")

	writeCSV(t, csvPath, "id,usd\n1,1\n2,2\n3,3\n")
	uri, err := Load(ctx, csvPath, zap.NewNop())
	require.NoError(t, err)

	writeCSV(t, csvPath, "id,usd\n4,4\n5,5\n")
	_, err = Load(ctx, csvPath, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(2), countRows(t, uri, "earnings"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())
	assert.Error(t, err)
}

func TestLoadMalformedKeepsPreviousTable(t *testing.T) {
	ctx := context.Background()
	csvPath := filepath.Join(t.TempDir(), "earnings.csv")
	writeCSV(t, csvPath, "id\n1\n2\n")
	uri, err := Load(ctx, csvPath, zap.NewNop())
	require.NoError(t, err)

	writeCSV(t, csvPath, "id,usd\n1\n")
	_, err = Load(ctx, csvPath, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, int64(2), countRows(t, uri, "earnings"))
}

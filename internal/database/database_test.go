package database

import (
	"context"
	"testing"

	"github.com/nfrund/parley/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBRejectsBadURL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := &config.Config{DBUrl: "invalid://url", DBNs: "test", DBDb: "test"}
	_, err := NewDB(context.Background(), cfg)
	assert.Error(t, err)
}

type probe struct {
	ID    string `json:"_id"`
	Value int    `json:"value"`
}

func TestQueryHelpers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Execute(ctx, db, "CREATE type::thing('probe', $id) CONTENT { value: $value }",
		map[string]any{"id": "a", "value": 1}))
	require.NoError(t, Execute(ctx, db, "CREATE type::thing('probe', $id) CONTENT { value: $value }",
		map[string]any{"id": "b", "value": 2}))

	rows, err := Query[probe](ctx, db, "SELECT meta::id(id) AS _id, value FROM probe ORDER BY value", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)

	one, err := QueryOne[probe](ctx, db, "SELECT meta::id(id) AS _id, value FROM type::thing('probe', $id)",
		map[string]any{"id": "b"})
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 2, one.Value)

	missing, err := QueryOne[probe](ctx, db, "SELECT meta::id(id) AS _id, value FROM type::thing('probe', 'zzz')", nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

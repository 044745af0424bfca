package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteDefault(t *testing.T) {
	repo, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, ok, err := repo.FindPostIDByToken(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.ErrorContains(t, err, "unsupported driver")
}

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/model"
)

// WEBFORM_TEST_POSTGRES_DSN points at a disposable database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("WEBFORM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WEBFORM_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestStore_FormMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	postID := time.Now().UnixNano()
	token := fmt.Sprintf("tok-%d", postID)
	require.NoError(t, s.PutMeta(ctx, postID,
		model.Row{Key: "token", Value: token},
		model.Row{Key: "custom_css", Value: ".x{}"},
	))

	id, ok, err := s.FindPostIDByToken(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, postID, id)

	rows, err := s.PostMeta(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []model.Row{{Key: "token", Value: token}, {Key: "custom_css", Value: ".x{}"}}, rows)

	css, ok, err := s.MetaValue(ctx, id, "custom_css")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ".x{}", css)
}

func TestStore_SiteKeys(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id := fmt.Sprintf("site-%d", time.Now().UnixNano())
	require.NoError(t, s.PutSiteKey(ctx, apikeys.DefaultPrefix, apikeys.Key{ID: id, Key: "k", Token: "t"}))

	key, ok, err := s.SiteKey(ctx, apikeys.DefaultPrefix, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, apikeys.Key{ID: id, Key: "k", Token: "t"}, key)
}

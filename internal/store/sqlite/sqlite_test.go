package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/cache"
	"github.com/goliatone/go-webform/pkg/metastore"
	"github.com/goliatone/go-webform/pkg/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_FormMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.PutMeta(ctx, 11,
		model.Row{Key: "title", Value: "Signup"},
		model.Row{Key: "token", Value: "abc"},
		model.Row{Key: "custom_css", Value: "#wrapper{}"},
	))
	require.NoError(t, s.PutMeta(ctx, 12, model.Row{Key: "token", Value: "other"}))

	id, ok, err := s.FindPostIDByToken(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(11), id)

	rows, err := s.PostMeta(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []model.Row{
		{Key: "title", Value: "Signup"},
		{Key: "token", Value: "abc"},
		{Key: "custom_css", Value: "#wrapper{}"},
	}, rows)

	css, ok, err := s.MetaValue(ctx, id, "custom_css")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "#wrapper{}", css)

	_, ok, err = s.MetaValue(ctx, id, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_UnknownToken(t *testing.T) {
	s := newStore(t)

	_, ok, err := s.FindPostIDByToken(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_TokenMustMatchTokenKey(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.PutMeta(ctx, 3, model.Row{Key: "title", Value: "abc"}))

	_, ok, err := s.FindPostIDByToken(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SiteKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.PutSiteKey(ctx, apikeys.DefaultPrefix, apikeys.Key{ID: "site-1", Key: "k", Token: "t1"}))
	require.NoError(t, s.PutSiteKey(ctx, apikeys.DefaultPrefix, apikeys.Key{ID: "site-1", Key: "k", Token: "t2"}))

	key, ok, err := s.SiteKey(ctx, apikeys.DefaultPrefix, "site-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, apikeys.Key{ID: "site-1", Key: "k", Token: "t2"}, key)

	_, ok, err = s.SiteKey(ctx, "other", "site-1")
	require.NoError(t, err)
	require.False(t, ok)

	valid, err := apikeys.NewChecker(s).CheckAPIKey(ctx, "site-1", "t2", "")
	require.NoError(t, err)
	require.True(t, valid)
}

func TestStore_BacksMetaStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.PutMeta(ctx, 5,
		model.Row{Key: "token", Value: "form-5"},
		model.Row{Key: "_edit_lock", Value: "1:1"},
		model.Row{Key: "field_a", Value: `{"key":"field_a","type":"text","labels":"Name","order":"1"}`},
	))

	meta, ok, err := metastore.New(s, cache.New()).Meta(ctx, "form-5")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"token", "field_a"}, meta.Keys())

	fields := meta.Fields()
	require.Len(t, fields, 1)
	require.Equal(t, model.FieldTypeText, fields[0].Type)
}

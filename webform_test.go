package webform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-webform/internal/config"
	"github.com/goliatone/go-webform/internal/store"
	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/model"
)

func newTestServer(t *testing.T, mutate func(*config.Config), options ...Option) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: store.DriverSQLite}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := NewServer(context.Background(), cfg, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ctx := context.Background()
	require.NoError(t, srv.Store.PutMeta(ctx, 7,
		model.Row{Key: "token", Value: "form-7"},
		model.Row{Key: "field_b", Value: `{"key":"field_b","type":"text","labels":"Last","order":"2"}`},
		model.Row{Key: "field_a", Value: `{"key":"field_a","type":"text","labels":"First","order":"1"}`},
		model.Row{Key: "custom_css", Value: ".brand{color:red}"},
	))
	require.NoError(t, srv.Store.PutSiteKey(ctx, apikeys.DefaultPrefix, apikeys.Key{ID: "site-1", Key: "k", Token: "t"}))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_ServesForms(t *testing.T) {
	_, ts := newTestServer(t, nil)

	status, body := get(t, ts.URL+"/dt-public/v1/webform/fields/form-7")
	require.Equal(t, http.StatusOK, status)
	var payload struct {
		Token string `json:"token"`
		Data  []struct {
			Key string `json:"key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "form-7", payload.Token)
	require.Len(t, payload.Data, 2)
	require.Equal(t, "field_a", payload.Data[0].Key)
	require.Equal(t, "field_b", payload.Data[1].Key)

	status, body = get(t, ts.URL+"/dt-public/v1/webform/theme/form-7?theme=none")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ".brand{color:red}", body)

	status, _ = get(t, ts.URL+"/dt-public/v1/webform/fields/missing")
	require.Equal(t, http.StatusNotFound, status)
}

func TestServer_SiteLinkCheck(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/dt-public/v1/webform/site_link_check", "application/json",
		strings.NewReader(`{"id":"site-1","token":"t"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "true", strings.TrimSpace(string(body)))
}

func TestServer_MetricsAndHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)

	get(t, ts.URL+"/dt-public/v1/webform/fields/form-7")
	get(t, ts.URL+"/dt-public/v1/webform/fields/form-7")

	status, body := get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body)

	status, body = get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `webform_http_requests_total{code="200",route="/webform/fields/{token}"} 2`)
	require.Contains(t, body, `result="hit"`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv, ts := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })
	require.Nil(t, srv.Metrics)

	status, _ := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusNotFound, status)
}

func TestServer_DocumentUsesBasePath(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) { c.HTTP.BasePath = "/forms" })

	status, body := get(t, ts.URL+"/forms/webform/openapi.json")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"url":"/forms"`)
}

func TestServer_ContactDefaultsFromSiteLink(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer transfer" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"sources":{"web":"Web"}}`))
	}))
	t.Cleanup(remote.Close)

	_, ts := newTestServer(t, func(c *config.Config) {
		c.SiteLink.URL = remote.URL
		c.SiteLink.TransferToken = "transfer"
	}, WithHTTPClient(remote.Client()))

	status, body := get(t, ts.URL+"/dt-public/v1/webform/contact_defaults")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"sources":{"web":"Web"}}`, body)
}

func TestServer_ContactDefaultsUnconfigured(t *testing.T) {
	_, ts := newTestServer(t, nil)

	status, body := get(t, ts.URL+"/dt-public/v1/webform/contact_defaults")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Contains(t, body, "Not site link set.")
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Size = 0
	_, err := NewServer(context.Background(), cfg)
	require.Error(t, err)
}

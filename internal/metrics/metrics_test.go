package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCache(t *testing.T) {
	m := New()
	m.ObserveCache("get_form_meta", false)
	m.ObserveCache("get_form_meta", true)
	m.ObserveCache("get_form_meta", true)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("get_form_meta", "hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("get_form_meta", "miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestHandlerExposesRequests(t *testing.T) {
	m := New()
	m.ObserveRequest("/webform/site_link_check", http.StatusBadRequest)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	want := `webform_http_requests_total{code="400",route="/webform/site_link_check"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("expected %q in exposition:\n%s", want, body)
	}
}

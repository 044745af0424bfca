package apidoc

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-webform/components/endpoints"
)

func TestLoad_DocumentsEveryRoute(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []Operation{
		{ID: "contactDefaults", Method: http.MethodGet, Path: endpoints.RouteContactDefaults},
		{ID: "formFields", Method: http.MethodGet, Path: endpoints.RouteFields},
		{ID: "formSubmit", Method: http.MethodPost, Path: endpoints.RouteFormSubmit},
		{ID: "apiDocument", Method: http.MethodGet, Path: endpoints.RouteDocument},
		{ID: "siteLinkCheck", Method: http.MethodPost, Path: endpoints.RouteSiteLinkCheck},
		{ID: "formTheme", Method: http.MethodGet, Path: endpoints.RouteTheme},
	}
	if diff := cmp.Diff(want, Operations(doc)); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_OverridesServer(t *testing.T) {
	data, err := JSON(context.Background(), "/forms/v2")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var payload struct {
		OpenAPI string `json:"openapi"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.OpenAPI != "3.0.3" || len(payload.Servers) != 1 || payload.Servers[0].URL != "/forms/v2" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestSourceIsCopied(t *testing.T) {
	a := Source()
	a[0] = 'X'
	if Source()[0] == 'X' {
		t.Fatalf("Source must return a copy")
	}
}

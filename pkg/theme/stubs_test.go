package theme

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-webform/pkg/metastore"
	"github.com/goliatone/go-webform/pkg/testsupport"
)

func TestRenderStubs_Golden(t *testing.T) {
	out, err := RenderStubs([]Stub{
		{Key: "field_a", Comment: "First"},
		{Key: "field_b", Comment: DividerLabel},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	path := filepath.Join("testdata", "stubs.golden.css")
	if testsupport.WriteMaybeGolden(t, path, []byte(out)) {
		return
	}
	want := string(testsupport.MustReadGolden(t, path))
	if diff := testsupport.CompareGolden(want, out); diff != "" {
		t.Fatalf("stub output mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_GeneratedForUnknownToken(t *testing.T) {
	r := NewResolver(metastore.New(testsupport.NewRepository(), nil))
	css, err := r.Resolve(testsupport.Context(), "custom", "missing")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stylesheet, err := r.Catalog().Stylesheet(NameDefault)
	if err != nil {
		t.Fatalf("default stylesheet: %v", err)
	}
	if css != Minify(stylesheet) {
		t.Fatalf("expected the bare default stylesheet")
	}
}

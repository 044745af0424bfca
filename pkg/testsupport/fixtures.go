package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-webform/pkg/model"
)

// Form is an in-memory stored form: its token and meta rows.
type Form struct {
	ID    int64
	Token string
	Rows  []model.Row
}

// Repository is an in-memory form repository that counts the queries it
// serves, so tests can assert cache behaviour.
type Repository struct {
	mu    sync.Mutex
	forms map[int64]Form
	Err   error

	FindCalls  int
	MetaCalls  int
	ValueCalls int
}

// NewRepository seeds a Repository with forms.
func NewRepository(forms ...Form) *Repository {
	repo := &Repository{forms: make(map[int64]Form, len(forms))}
	for _, form := range forms {
		repo.Put(form)
	}
	return repo
}

// Put adds or replaces a form.
func (r *Repository) Put(form Form) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[form.ID] = form
}

// FindPostIDByToken satisfies metastore.Repository.
func (r *Repository) FindPostIDByToken(_ context.Context, token string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FindCalls++
	if r.Err != nil {
		return 0, false, r.Err
	}
	for id, form := range r.forms {
		if form.Token == token {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// PostMeta satisfies metastore.Repository. The token row is prepended the way
// the host stores it.
func (r *Repository) PostMeta(_ context.Context, postID int64) ([]model.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.MetaCalls++
	if r.Err != nil {
		return nil, r.Err
	}
	form, ok := r.forms[postID]
	if !ok {
		return nil, nil
	}
	rows := make([]model.Row, 0, len(form.Rows)+1)
	rows = append(rows, model.Row{Key: model.KeyToken, Value: form.Token})
	rows = append(rows, form.Rows...)
	return rows, nil
}

// MetaValue satisfies metastore.Repository.
func (r *Repository) MetaValue(_ context.Context, postID int64, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ValueCalls++
	if r.Err != nil {
		return "", false, r.Err
	}
	for _, row := range r.forms[postID].Rows {
		if row.Key == key {
			return row.Value, true, nil
		}
	}
	return "", false, nil
}

// FieldRow encodes a field blob as the host stores it.
func FieldRow(t *testing.T, key string, blob map[string]any) model.Row {
	t.Helper()
	if _, ok := blob["key"]; !ok {
		blob["key"] = key
	}
	payload, err := json.Marshal(blob)
	if err != nil {
		t.Fatalf("marshal field %s: %v", key, err)
	}
	return model.Row{Key: key, Value: string(payload)}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

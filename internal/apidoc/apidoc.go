// Package apidoc embeds and validates the OpenAPI document of the public
// webform endpoints.
package apidoc

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var source []byte

// Operation is one documented route.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Source returns the embedded YAML document.
func Source() []byte {
	return append([]byte(nil), source...)
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(source)
	if err != nil {
		return nil, fmt.Errorf("apidoc: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("apidoc: document does not contain any paths")
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("apidoc: validate: %w", err)
	}
	return doc, nil
}

// JSON returns the validated document as JSON with its server URL set to
// basePath. A blank basePath keeps the embedded server.
func JSON(ctx context.Context, basePath string) ([]byte, error) {
	doc, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if basePath = strings.TrimSpace(basePath); basePath != "" {
		doc.Servers = openapi3.Servers{{URL: basePath}}
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("apidoc: encode: %w", err)
	}
	return data, nil
}

// Operations lists the documented routes sorted by path then method.
func Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{ID: id, Method: method, Path: path})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

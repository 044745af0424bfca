package theme

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-webform/pkg/model"
)

// DividerLabel names stubs for fields without label text.
const DividerLabel = "Divider"

// Comments are HTML escaped by autoescape.
const stubTemplateSource = `{% autoescape on %}{% for stub in stubs %}/* {{ stub.Comment }} */
#section-{{ stub.Key }} {}
#{{ stub.Key }} {}

{% endfor %}{% endautoescape %}`

var (
	stubTemplateOnce sync.Once
	stubTemplate     *pongo2.Template
	stubTemplateErr  error
)

// Stub is one generated selector pair for a form field.
type Stub struct {
	Key     string
	Comment string
}

// BuildStubs returns a stub for every `field*` entry whose labels are scalar,
// in meta order. Fields with empty labels are named DividerLabel.
func BuildStubs(meta *model.Meta) []Stub {
	var stubs []Stub
	for _, entry := range meta.Entries() {
		if !strings.HasPrefix(entry.Key, model.FieldKeyPrefix) {
			continue
		}
		field, ok := model.FieldFromBlob(entry.Key, entry.Value)
		if !ok {
			continue
		}
		label := field.Labels
		if label.IsEmpty() {
			label = model.SingleLabel(DividerLabel)
		}
		if label.IsMulti() {
			continue
		}
		// selectors target the meta key, not the blob's own key attribute
		stubs = append(stubs, Stub{
			Key:     entry.Key,
			Comment: commentText(label.Text()),
		})
	}
	return stubs
}

// RenderStubs renders stubs as CSS.
func RenderStubs(stubs []Stub) (string, error) {
	if len(stubs) == 0 {
		return "", nil
	}
	tpl, err := loadStubTemplate()
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(pongo2.Context{"stubs": stubs})
	if err != nil {
		return "", fmt.Errorf("theme: render field stubs: %w", err)
	}
	return out, nil
}

func loadStubTemplate() (*pongo2.Template, error) {
	stubTemplateOnce.Do(func() {
		stubTemplate, stubTemplateErr = pongo2.FromString(stubTemplateSource)
		if stubTemplateErr != nil {
			stubTemplateErr = fmt.Errorf("theme: parse stub template: %w", stubTemplateErr)
		}
	})
	return stubTemplate, stubTemplateErr
}

// commentText keeps a label from closing the surrounding CSS comment.
func commentText(label string) string {
	return strings.ReplaceAll(label, "*/", "* /")
}

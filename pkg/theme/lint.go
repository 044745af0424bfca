package theme

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Issue is a formatting defect found in a stylesheet.
type Issue struct {
	Prelude string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Prelude, i.Message)
}

// Lint parses stylesheet and reports selectors that browsers drop: preludes
// carrying `//` line comments (CSS only has block comments) and preludes that
// start with a stray comma left after a closing brace.
func Lint(stylesheet string) ([]Issue, error) {
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return nil, fmt.Errorf("theme: parse stylesheet: %w", err)
	}
	var issues []Issue
	lintRules(sheet.Rules, &issues)
	return issues, nil
}

// LintCatalog lints every stylesheet in the catalog plus the location block,
// keyed by theme name.
func LintCatalog(c *Catalog) (map[string][]Issue, error) {
	out := make(map[string][]Issue)
	sheets := map[string]string{}
	for _, name := range c.Manifests() {
		body, err := c.Stylesheet(name)
		if err != nil {
			return nil, err
		}
		sheets[name] = body
	}
	location, err := LocationStyles()
	if err != nil {
		return nil, err
	}
	sheets["location"] = location

	for name, body := range sheets {
		issues, err := Lint(body)
		if err != nil {
			return nil, fmt.Errorf("theme: lint %s: %w", name, err)
		}
		if len(issues) > 0 {
			out[name] = issues
		}
	}
	return out, nil
}

func lintRules(rules []*css.Rule, issues *[]Issue) {
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		prelude := strings.TrimSpace(rule.Prelude)
		switch {
		case strings.Contains(prelude, "//"):
			*issues = append(*issues, Issue{Prelude: prelude, Message: "line comment is not valid CSS, use /* */"})
		case strings.HasPrefix(prelude, ","):
			*issues = append(*issues, Issue{Prelude: prelude, Message: "stray comma after previous rule"})
		}
		if len(rule.Rules) > 0 {
			lintRules(rule.Rules, issues)
		}
	}
}

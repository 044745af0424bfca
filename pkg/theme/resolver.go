package theme

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/model"
)

// DefaultAssetPrefix is the URL prefix theme stylesheets are served under.
const DefaultAssetPrefix = "/dt-public/v1/webform/themes"

// MetaSource resolves a form's meta from its token.
type MetaSource interface {
	Meta(ctx context.Context, token string) (*model.Meta, bool, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCatalog overrides the built-in catalog.
func WithCatalog(catalog *Catalog) Option {
	return func(r *Resolver) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver assembles the stylesheet of a form: the optional location block,
// the selected theme body, then the form's custom CSS, minified.
type Resolver struct {
	meta    MetaSource
	catalog *Catalog
	logger  *zap.Logger
}

// NewResolver constructs a Resolver reading meta from source.
func NewResolver(source MetaSource, options ...Option) *Resolver {
	r := &Resolver{
		meta:   source,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = MustCatalog(DefaultAssetPrefix)
	}
	return r
}

// Catalog returns the catalog backing the resolver.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the complete stylesheet for the named theme and form token.
// Unknown names fall back to the generated default. A blank or unknown token
// resolves against empty meta. The only error source is the meta lookup.
func (r *Resolver) Resolve(ctx context.Context, name, token string) (string, error) {
	meta := &model.Meta{}
	if r.meta != nil {
		found, ok, err := r.meta.Meta(ctx, token)
		if err != nil {
			return "", fmt.Errorf("theme: load form meta: %w", err)
		}
		if ok && found != nil {
			meta = found
		}
	}
	return r.Render(name, meta)
}

// Render composes the stylesheet for name against meta without any lookup.
func (r *Resolver) Render(name string, meta *model.Meta) (string, error) {
	variant := ParseVariant(name)

	body, err := r.body(variant, meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if HasLocationField(meta) {
		location, err := LocationStyles()
		if err != nil {
			return "", err
		}
		b.WriteString(location)
	}
	b.WriteString(body)
	if css := meta.CustomCSS(); strings.TrimSpace(css) != "" {
		b.WriteString(css)
	}

	r.logger.Debug("resolved theme",
		zap.String("requested", name),
		zap.Stringer("variant", variant),
		zap.Int("bytes", b.Len()))
	return Minify(b.String()), nil
}

func (r *Resolver) body(variant Variant, meta *model.Meta) (string, error) {
	switch variant {
	case VariantNone:
		return "", nil
	case VariantGenerated:
		base, err := r.catalog.Stylesheet(NameDefault)
		if err != nil {
			return "", err
		}
		stubs, err := RenderStubs(BuildStubs(meta))
		if err != nil {
			return "", err
		}
		return base + stubs, nil
	default:
		return r.catalog.Stylesheet(variant.String())
	}
}

// HasLocationField reports whether any `field*` entry is a location field.
func HasLocationField(meta *model.Meta) bool {
	for _, entry := range meta.Entries() {
		if !strings.HasPrefix(entry.Key, model.FieldKeyPrefix) {
			continue
		}
		field, ok := model.FieldFromBlob(entry.Key, entry.Value)
		if ok && field.IsLocation() {
			return true
		}
	}
	return false
}

var (
	locationOnce sync.Once
	locationCSS  string
	locationErr  error
)

// LocationStyles returns the map, geocoder, and autocomplete stylesheet.
func LocationStyles() (string, error) {
	locationOnce.Do(func() {
		data, err := fs.ReadFile(Styles(), locationFile)
		if err != nil {
			locationErr = fmt.Errorf("theme: read location styles: %w", err)
			return
		}
		locationCSS = string(data)
	})
	return locationCSS, locationErr
}

// Minify drops line breaks, collapses runs of spaces, and trims the result.
func Minify(css string) string {
	css = strings.NewReplacer("\r", "", "\n", "").Replace(css)
	for strings.Contains(css, "  ") {
		css = strings.ReplaceAll(css, "  ", " ")
	}
	return strings.TrimSpace(css)
}

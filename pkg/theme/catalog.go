package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

const (
	// StylesheetAsset is the manifest asset key holding a theme's stylesheet.
	StylesheetAsset = "webform.stylesheet"

	manifestVersion = "1.0.0"
)

// ErrUnknownTheme is returned when a name is not in the catalog.
var ErrUnknownTheme = errors.New("theme: unknown theme")

type manifestRegistry interface {
	Register(manifest *gotheme.Manifest) error
}

// Catalog holds the built-in theme manifests and their stylesheets. It
// satisfies go-theme's ThemeSelector so hosts can plug it into any component
// that selects themes through that contract.
type Catalog struct {
	mu        sync.RWMutex
	registry  manifestRegistry
	manifests map[string]*gotheme.Manifest
	files     fs.FS
	cache     map[string]string
}

var _ gotheme.ThemeSelector = (*Catalog)(nil)

// NewCatalog registers the built-in manifests. assetPrefix is the public URL
// prefix stylesheets are served under.
func NewCatalog(assetPrefix string) (*Catalog, error) {
	c := &Catalog{
		registry:  gotheme.NewRegistry(),
		manifests: make(map[string]*gotheme.Manifest),
		files:     Styles(),
		cache:     make(map[string]string),
	}
	for _, manifest := range builtinManifests(assetPrefix) {
		if err := c.Register(manifest); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on error.
func MustCatalog(assetPrefix string) *Catalog {
	c, err := NewCatalog(assetPrefix)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds a manifest. Its stylesheet asset, when present, must resolve
// inside the embedded styles.
func (c *Catalog) Register(manifest *gotheme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("theme: manifest name is required")
	}
	if file := manifest.Assets.Files[StylesheetAsset]; file != "" {
		if _, err := fs.Stat(c.files, file); err != nil {
			return fmt.Errorf("theme: manifest %q stylesheet %q: %w", manifest.Name, file, err)
		}
	}
	if err := c.registry.Register(manifest); err != nil {
		return fmt.Errorf("theme: register %q: %w", manifest.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.manifests[manifest.Name] = manifest
	delete(c.cache, manifest.Name)
	return nil
}

// Select satisfies go-theme's ThemeSelector. Variants are not used by webform
// themes; the requested variant is echoed back.
func (c *Catalog) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	c.mu.RLock()
	manifest, ok := c.manifests[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return &gotheme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// Stylesheet returns the raw stylesheet of a catalog theme. Themes without a
// stylesheet asset return "".
func (c *Catalog) Stylesheet(name string) (string, error) {
	c.mu.RLock()
	cached, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	selection, err := c.Select(name, "")
	if err != nil {
		return "", err
	}
	file := selection.Manifest.Assets.Files[StylesheetAsset]
	css := ""
	if file != "" {
		data, err := fs.ReadFile(c.files, file)
		if err != nil {
			return "", fmt.Errorf("theme: read stylesheet %q: %w", file, err)
		}
		css = string(data)
	}

	c.mu.Lock()
	c.cache[name] = css
	c.mu.Unlock()
	return css, nil
}

// AssetURL returns the public URL of a theme's stylesheet, or "".
func (c *Catalog) AssetURL(name string) string {
	selection, err := c.Select(name, "")
	if err != nil {
		return ""
	}
	file := selection.Manifest.Assets.Files[StylesheetAsset]
	if file == "" {
		return ""
	}
	return path.Join(selection.Manifest.Assets.Prefix, file)
}

// Manifests returns the registered manifest names.
func (c *Catalog) Manifests() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	return names
}

func builtinManifests(assetPrefix string) []*gotheme.Manifest {
	prefix := strings.TrimRight(strings.TrimSpace(assetPrefix), "/")
	if prefix == "" {
		prefix = "/"
	}
	stylesheet := func(name, file, maxWidth string) *gotheme.Manifest {
		m := &gotheme.Manifest{
			Name:    name,
			Version: manifestVersion,
			Tokens:  map[string]string{},
			Assets: gotheme.Assets{
				Prefix: prefix,
				Files:  map[string]string{},
			},
		}
		if file != "" {
			m.Assets.Files[StylesheetAsset] = file
		}
		if maxWidth != "" {
			m.Tokens["wrapper-max-width"] = maxWidth
		}
		return m
	}
	return []*gotheme.Manifest{
		stylesheet(NameSimple, "simple.css", "400px"),
		stylesheet(NameHeavy, "heavy.css", "400px"),
		stylesheet(NameNone, "", ""),
		stylesheet(NameMinimum, "minimum.css", ""),
		stylesheet(NameWideHeavy, "wide-heavy.css", "1000px"),
		stylesheet(NameDefault, "default.css", "1000px"),
	}
}

package theme

import (
	"embed"
	"io/fs"
)

//go:embed styles/*.css
var embeddedStyles embed.FS

const (
	stylesDir    = "styles"
	locationFile = "location.css"
)

// Styles exposes the embedded stylesheets rooted at the styles directory.
func Styles() fs.FS {
	sub, err := fs.Sub(embeddedStyles, stylesDir)
	if err != nil {
		return embeddedStyles
	}
	return sub
}

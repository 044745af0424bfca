package endpoints

import "net/http"

// Component bundles the endpoint configuration with its router and routing
// helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns the CORS enabled router.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return NewRouter()
	}
	return RouterWithOptions(c.opts)
}

// RegisterRoutes mounts the component under its base path on mux.
func (c *Component) RegisterRoutes(mux Mux) (string, error) {
	if c == nil {
		return RegisterRoutes(mux)
	}
	return RegisterRoutesWithOptions(mux, c.opts)
}

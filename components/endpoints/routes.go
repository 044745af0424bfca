package endpoints

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Route paths relative to the base path.
const (
	RouteSiteLinkCheck   = "/webform/site_link_check"
	RouteFormSubmit      = "/webform/form_submit"
	RouteTheme           = "/webform/theme/{token}"
	RouteFields          = "/webform/fields/{token}"
	RouteContactDefaults = "/webform/contact_defaults"
	RouteDocument        = "/webform/openapi.json"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full path of route under the configured base path.
func MountPath(route string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(opts.BasePath, route)
}

// NewRouter builds the CORS enabled router serving every public route.
func NewRouter(fns ...OptionFn) http.Handler {
	return RouterWithOptions(NewOptions(fns...))
}

// RouterWithOptions builds the router from a pre-constructed Options value.
func RouterWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := handlers{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.guard)

	route := func(method, path string, fn http.HandlerFunc) {
		pattern := mountPath(opts.BasePath, path)
		r.Method(method, pattern, h.instrument(path, fn))
	}
	route(http.MethodPost, RouteSiteLinkCheck, h.siteLinkCheck)
	route(http.MethodPost, RouteFormSubmit, h.formSubmit)
	route(http.MethodGet, RouteTheme, h.theme)
	route(http.MethodHead, RouteTheme, h.theme)
	route(http.MethodGet, RouteFields, h.fields)
	route(http.MethodGet, RouteContactDefaults, h.contactDefaults)
	route(http.MethodGet, RouteDocument, h.document)

	return cors.AllowAll().Handler(r)
}

// RegisterRoutes mounts the router under its base path on mux.
func RegisterRoutes(mux Mux, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, NewOptions(fns...))
}

// RegisterRoutesWithOptions mounts a router built from opts on mux.
func RegisterRoutesWithOptions(mux Mux, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("endpoints: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := strings.TrimRight(mountPath(opts.BasePath, "/"), "/") + "/"
	mux.Handle(pattern, RouterWithOptions(opts))
	return pattern, nil
}

func (h handlers) instrument(route string, next http.HandlerFunc) http.Handler {
	if h.opts.Observer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.opts.Observer(route, status)
	})
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}

// Package webform wires the form meta store, theme resolver, site key checker
// and contact defaults client behind the public webform endpoints.
package webform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-webform/components/endpoints"
	"github.com/goliatone/go-webform/internal/apidoc"
	"github.com/goliatone/go-webform/internal/config"
	"github.com/goliatone/go-webform/internal/metrics"
	"github.com/goliatone/go-webform/internal/store"
	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/cache"
	"github.com/goliatone/go-webform/pkg/contactdefaults"
	"github.com/goliatone/go-webform/pkg/metastore"
	"github.com/goliatone/go-webform/pkg/theme"
)

// Option customises NewServer.
type Option func(*serverOptions)

type serverOptions struct {
	logger     *zap.Logger
	repo       store.Repository
	httpClient *http.Client
	links      contactdefaults.SiteLinkProvider
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *serverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRepository uses repo instead of opening the configured database. The
// server does not close a repository it did not open.
func WithRepository(repo store.Repository) Option {
	return func(o *serverOptions) {
		o.repo = repo
	}
}

// WithHTTPClient sets the client used for remote contact defaults.
func WithHTTPClient(client *http.Client) Option {
	return func(o *serverOptions) {
		o.httpClient = client
	}
}

// WithSiteLink replaces the site link built from the configuration.
func WithSiteLink(links contactdefaults.SiteLinkProvider) Option {
	return func(o *serverOptions) {
		o.links = links
	}
}

// Server bundles the assembled components.
type Server struct {
	Config    config.Config
	Store     store.Repository
	Cache     *cache.Memory
	Meta      *metastore.Store
	Themes    *theme.Resolver
	Checker   *apikeys.Checker
	Contacts  *contactdefaults.Client
	Metrics   *metrics.Metrics
	Endpoints *endpoints.Component

	logger    *zap.Logger
	ownsStore bool
	handler   http.Handler
}

// NewServer builds every component from cfg.
func NewServer(ctx context.Context, cfg config.Config, options ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := serverOptions{logger: zap.NewNop()}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}

	s := &Server{Config: cfg, logger: opts.logger}

	s.Store = opts.repo
	if s.Store == nil {
		repo, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("webform: open store: %w", err)
		}
		s.Store = repo
		s.ownsStore = true
	}

	fail := func(err error) (*Server, error) {
		_ = s.Close()
		return nil, err
	}

	s.Cache = cache.New(
		cache.WithSize(cfg.Cache.Size),
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithNamespaceTTL(contactdefaults.Namespace, contactdefaults.TTL),
	)

	var observeCache metastore.Observer
	var observeRequest endpoints.RequestObserver
	if cfg.Metrics.Enabled {
		s.Metrics = metrics.New()
		observeCache = s.Metrics.ObserveCache
		observeRequest = s.Metrics.ObserveRequest
	}

	s.Meta = metastore.New(s.Store, s.Cache,
		metastore.WithLogger(opts.logger.Named("metastore")),
		metastore.WithObserver(observeCache),
	)

	catalog, err := theme.NewCatalog(cfg.Theme.AssetPrefix)
	if err != nil {
		return fail(fmt.Errorf("webform: theme catalog: %w", err))
	}
	s.Themes = theme.NewResolver(s.Meta,
		theme.WithCatalog(catalog),
		theme.WithLogger(opts.logger.Named("theme")),
	)

	s.Checker = apikeys.NewChecker(s.Store, apikeys.WithLogger(opts.logger.Named("apikeys")))

	links := opts.links
	if links == nil {
		links = contactdefaults.NewStaticSiteLink(cfg.SiteLink.URL, cfg.SiteLink.TransferToken)
	}
	contactOpts := []contactdefaults.Option{
		contactdefaults.WithCache(s.Cache),
		contactdefaults.WithTimeout(cfg.SiteLink.Timeout),
		contactdefaults.WithLogger(opts.logger.Named("contactdefaults")),
	}
	if opts.httpClient != nil {
		contactOpts = append(contactOpts, contactdefaults.WithHTTPClient(opts.httpClient))
	}
	s.Contacts = contactdefaults.New(links, contactOpts...)

	doc, err := apidoc.JSON(ctx, cfg.HTTP.BasePath)
	if err != nil {
		return fail(err)
	}

	s.Endpoints = endpoints.New(
		endpoints.WithBasePath(cfg.HTTP.BasePath),
		endpoints.WithKeyPrefix(cfg.HTTP.KeyPrefix),
		endpoints.WithDefaultTheme(cfg.Theme.Default),
		endpoints.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		endpoints.WithChecker(s.Checker),
		endpoints.WithThemes(s.Themes),
		endpoints.WithMeta(s.Meta),
		endpoints.WithContactDefaults(s.Contacts),
		endpoints.WithDocument(doc),
		endpoints.WithLogger(opts.logger.Named("endpoints")),
		endpoints.WithObserver(observeRequest),
	)

	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	if s.Metrics != nil {
		path := strings.TrimSpace(s.Config.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, s.Metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", s.Endpoints.Handler())
	return r
}

// Handler serves the public endpoints, the health check and, when enabled,
// the metrics.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases the store when the server opened it.
func (s *Server) Close() error {
	if s == nil || !s.ownsStore || s.Store == nil {
		return nil
	}
	err := s.Store.Close()
	s.Store = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("webform: close store: %w", err)
	}
	return nil
}

// Package contactdefaults fetches the contact field settings of the linked CRM
// site and caches them for a day.
package contactdefaults

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// Namespace is the cache namespace holding the settings payload.
	Namespace = "transient"
	// CacheKey is the key the payload is stored under.
	CacheKey = "dt_webform_contact_defaults"
	// TTL is how long a fetched payload is reused.
	TTL = 24 * time.Hour

	// SettingsPath is appended to the linked site URL.
	SettingsPath = "wp-json/dt-posts/v2/contacts/settings"

	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 10 * time.Second

	// MaxBodyBytes caps the settings document read from the linked site.
	MaxBodyBytes = 4 << 20

	sourcesKey = "sources"
)

// Defaults is the decoded settings document. It always carries `sources`.
type Defaults map[string]any

// Sources returns the configured contact sources.
func (d Defaults) Sources() any {
	return d[sourcesKey]
}

// valid reports whether `sources` is present and not null.
func (d Defaults) valid() bool {
	return d[sourcesKey] != nil
}

// Cache stores raw payloads by namespace and key.
type Cache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// LocalSource answers directly when the host is itself the CRM.
type LocalSource interface {
	ContactSettings(ctx context.Context) (Defaults, error)
}

// SiteLink holds the connection vars of the linked CRM site.
type SiteLink struct {
	ID            string
	URL           string
	TransferToken string
}

// SiteLinkProvider resolves the configured site link and its connection vars.
type SiteLinkProvider interface {
	SiteLinkID(ctx context.Context) (string, bool, error)
	ConnectionVars(ctx context.Context, id string) (SiteLink, bool, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each remote fetch. Non-positive values disable it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithCache enables payload caching.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLocalSource short-circuits remote fetching.
func WithLocalSource(source LocalSource) Option {
	return func(c *Client) {
		c.local = source
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches contact defaults.
type Client struct {
	links   SiteLinkProvider
	http    *http.Client
	cache   Cache
	local   LocalSource
	timeout time.Duration
	logger  *zap.Logger
}

// New constructs a Client resolving the remote site through links.
func New(links SiteLinkProvider, options ...Option) *Client {
	c := &Client{
		links:   links,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Fetch returns the contact settings. A cached payload is reused unless force
// is set. Failures are never cached.
func (c *Client) Fetch(ctx context.Context, force bool) (Defaults, error) {
	if c.local != nil {
		return c.local.ContactSettings(ctx)
	}

	if !force {
		if defaults, ok := c.cached(ctx); ok {
			return defaults, nil
		}
	}

	link, err := c.siteLink(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := SettingsURL(link.URL)
	body, err := c.get(ctx, endpoint, link.TransferToken)
	if err != nil {
		c.logger.Warn("contact defaults fetch failed", zap.String("url", endpoint), zap.Error(err))
		return nil, &RemoteFetchFailedError{URL: endpoint, Err: err}
	}

	var defaults Defaults
	if err := json.Unmarshal(body, &defaults); err != nil || !defaults.valid() {
		return nil, ErrMalformedRemoteResponse
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, Namespace, CacheKey, body); err != nil {
			c.logger.Warn("contact defaults cache write failed", zap.Error(err))
		}
	}
	return defaults, nil
}

func (c *Client) cached(ctx context.Context) (Defaults, bool) {
	if c.cache == nil {
		return nil, false
	}
	payload, ok, err := c.cache.Get(ctx, Namespace, CacheKey)
	if err != nil {
		c.logger.Warn("contact defaults cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var defaults Defaults
	if err := json.Unmarshal(payload, &defaults); err != nil || !defaults.valid() {
		return nil, false
	}
	return defaults, true
}

func (c *Client) siteLink(ctx context.Context) (SiteLink, error) {
	if c.links == nil {
		return SiteLink{}, errNoSiteLink
	}
	id, ok, err := c.links.SiteLinkID(ctx)
	if err != nil {
		return SiteLink{}, fmt.Errorf("contactdefaults: resolve site link: %w", err)
	}
	if !ok || strings.TrimSpace(id) == "" {
		return SiteLink{}, errNoSiteLink
	}
	link, ok, err := c.links.ConnectionVars(ctx, id)
	if err != nil {
		return SiteLink{}, fmt.Errorf("contactdefaults: load connection vars: %w", err)
	}
	if !ok || strings.TrimSpace(link.URL) == "" {
		return SiteLink{}, errNoSiteData
	}
	return link, nil
}

func (c *Client) get(ctx context.Context, url, token string) ([]byte, error) {
	if c.http == nil {
		return nil, errors.New("http client is not configured")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxBodyBytes)
	}
	return body, nil
}

// SettingsURL builds the settings endpoint of a linked site. Bare hosts are
// reached over https.
func SettingsURL(site string) string {
	site = strings.TrimSpace(site)
	if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
		site = "https://" + site
	}
	return strings.TrimRight(site, "/") + "/" + SettingsPath
}

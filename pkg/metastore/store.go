// Package metastore resolves a form's configuration from its public token.
//
// Reads go through a namespaced cache first and fall back to the repository on
// a miss, writing the decoded result back. The store never writes to the
// repository. Concurrent readers may populate the same cache entry; the last
// writer wins, which is harmless because every writer derives the value from
// the same repository row.
package metastore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/model"
)

// Cache namespaces used by the store.
const (
	NamespaceFormMeta  = "get_form_meta"
	NamespaceCustomCSS = "get_custom_css"
)

// Cache is the shared object cache. Implementations own expiry.
type Cache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// Repository is the persistent source of form meta.
type Repository interface {
	// FindPostIDByToken returns the id of the form whose token meta matches.
	FindPostIDByToken(ctx context.Context, token string) (int64, bool, error)
	// PostMeta returns every meta row of a form in storage order.
	PostMeta(ctx context.Context, postID int64) ([]model.Row, error)
	// MetaValue returns a single meta value of a form.
	MetaValue(ctx context.Context, postID int64, key string) (string, bool, error)
}

// Observer receives cache outcomes, typically to feed metrics.
type Observer func(namespace string, hit bool)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a cache outcome observer.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		s.observe = observer
	}
}

// Store is the FormMetaStore.
type Store struct {
	repo    Repository
	cache   Cache
	logger  *zap.Logger
	observe Observer
}

// New constructs a Store. A nil cache disables caching.
func New(repo Repository, cache Cache, options ...Option) *Store {
	s := &Store{
		repo:   repo,
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Meta returns the decoded meta of the form identified by token. A blank
// token, or a token no form carries, yields (nil, false, nil).
func (s *Store) Meta(ctx context.Context, token string) (*model.Meta, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false, nil
	}

	if payload, ok := s.cacheGet(ctx, NamespaceFormMeta, token); ok {
		var meta model.Meta
		err := json.Unmarshal(payload, &meta)
		if err == nil {
			return &meta, true, nil
		}
		s.logger.Warn("discarding undecodable cached form meta",
			zap.String("token", token), zap.Error(err))
	}

	postID, found, err := s.repo.FindPostIDByToken(ctx, token)
	if err != nil {
		return nil, false, fmt.Errorf("metastore: find form by token: %w", err)
	}
	if !found {
		s.logger.Debug("no form for token", zap.String("token", token))
		return nil, false, nil
	}

	rows, err := s.repo.PostMeta(ctx, postID)
	if err != nil {
		return nil, false, fmt.Errorf("metastore: load form meta %d: %w", postID, err)
	}
	meta := model.DecodeMeta(rows)

	if payload, err := json.Marshal(meta); err == nil {
		s.cacheSet(ctx, NamespaceFormMeta, token, payload)
	} else {
		s.logger.Warn("form meta not cacheable", zap.String("token", token), zap.Error(err))
	}
	return meta, true, nil
}

// CustomCSS returns the operator supplied stylesheet of the form identified by
// token without loading the rest of the meta. ok is false for a blank or
// unknown token. `webformd css --custom` prints it.
func (s *Store) CustomCSS(ctx context.Context, token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false, nil
	}

	if payload, ok := s.cacheGet(ctx, NamespaceCustomCSS, token); ok {
		return string(payload), true, nil
	}

	postID, found, err := s.repo.FindPostIDByToken(ctx, token)
	if err != nil {
		return "", false, fmt.Errorf("metastore: find form by token: %w", err)
	}
	if !found {
		return "", false, nil
	}

	css, _, err := s.repo.MetaValue(ctx, postID, model.KeyCustomCSS)
	if err != nil {
		return "", false, fmt.Errorf("metastore: load custom css %d: %w", postID, err)
	}
	s.cacheSet(ctx, NamespaceCustomCSS, token, []byte(css))
	return css, true, nil
}

// Invalidate drops every cached entry for token. Hosts call it after a form
// is edited.
func (s *Store) Invalidate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || s.cache == nil {
		return nil
	}
	for _, namespace := range []string{NamespaceFormMeta, NamespaceCustomCSS} {
		if err := s.cache.Delete(ctx, namespace, token); err != nil {
			return fmt.Errorf("metastore: invalidate %s: %w", namespace, err)
		}
	}
	return nil
}

func (s *Store) cacheGet(ctx context.Context, namespace, token string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, namespace, token)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("namespace", namespace), zap.Error(err))
		ok = false
	}
	if s.observe != nil {
		s.observe(namespace, ok)
	}
	return payload, ok
}

func (s *Store) cacheSet(ctx context.Context, namespace, token string, payload []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, namespace, token, payload); err != nil {
		s.logger.Warn("cache write failed", zap.String("namespace", namespace), zap.Error(err))
	}
}

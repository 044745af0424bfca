// Package apikeys validates the credentials a linked site presents.
package apikeys

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPrefix namespaces webform site keys.
const DefaultPrefix = "dt_webform_site"

// hourLayout formats the UTC hour mixed into rotating tokens.
const hourLayout = "2006-01-0215"

// Key is a stored site credential.
type Key struct {
	ID    string
	Key   string
	Token string
}

// KeyRepository loads site keys by prefix and id.
type KeyRepository interface {
	SiteKey(ctx context.Context, prefix, id string) (Key, bool, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock overrides the time source used for rotating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Checker validates id/token pairs against a KeyRepository.
type Checker struct {
	repo   KeyRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewChecker constructs a Checker.
func NewChecker(repo KeyRepository, options ...Option) *Checker {
	c := &Checker{
		repo:   repo,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// CheckAPIKey reports whether token is valid for the key stored under
// (prefix, id). The stored token is accepted, as is the rotating token for the
// current or previous UTC hour. An unknown id is not an error.
func (c *Checker) CheckAPIKey(ctx context.Context, id, token, prefix string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" || token == "" {
		return false, nil
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if c.repo == nil {
		return false, errors.New("apikeys: key repository is not configured")
	}

	key, ok, err := c.repo.SiteKey(ctx, prefix, id)
	if err != nil {
		return false, fmt.Errorf("apikeys: load key %s/%s: %w", prefix, id, err)
	}
	if !ok {
		c.logger.Debug("unknown site key", zap.String("prefix", prefix), zap.String("id", id))
		return false, nil
	}

	if key.Token != "" && equal(key.Token, token) {
		return true, nil
	}
	if key.Key == "" {
		return false, nil
	}
	now := c.now().UTC()
	for _, at := range []time.Time{now, now.Add(-time.Hour)} {
		if equal(RotatingToken(key.Key, at), token) {
			return true, nil
		}
	}
	return false, nil
}

// RotatingToken derives the hourly token of key at t.
func RotatingToken(key string, t time.Time) string {
	sum := sha256.Sum256([]byte(key + t.UTC().Format(hourLayout)))
	return hex.EncodeToString(sum[:])
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package endpoints

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/contactdefaults"
	"github.com/goliatone/go-webform/pkg/model"
	"github.com/goliatone/go-webform/pkg/theme"
)

const (
	DefaultBasePath     = "/dt-public/v1"
	DefaultTheme        = theme.NameWideHeavy
	DefaultMaxBodyBytes = 1 << 20
)

// KeyChecker validates site credentials.
type KeyChecker interface {
	CheckAPIKey(ctx context.Context, id, token, prefix string) (bool, error)
}

// ThemeResolver renders the stylesheet of a form.
type ThemeResolver interface {
	Resolve(ctx context.Context, name, token string) (string, error)
}

// MetaSource loads form meta by token.
type MetaSource interface {
	Meta(ctx context.Context, token string) (*model.Meta, bool, error)
}

// ContactDefaults fetches the remote contact settings.
type ContactDefaults interface {
	Fetch(ctx context.Context, force bool) (contactdefaults.Defaults, error)
}

// RequestObserver is told the route pattern and status of every response.
type RequestObserver func(route string, status int)

type GuardFunc func(r *http.Request) error

type Options struct {
	BasePath     string
	KeyPrefix    string
	DefaultTheme string
	MaxBodyBytes int64
	Guard        GuardFunc

	Checker  KeyChecker
	Themes   ThemeResolver
	Meta     MetaSource
	Contacts ContactDefaults
	Document []byte

	Logger   *zap.Logger
	Observer RequestObserver
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BasePath:     DefaultBasePath,
		KeyPrefix:    apikeys.DefaultPrefix,
		DefaultTheme: DefaultTheme,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Logger:       zap.NewNop(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = apikeys.DefaultPrefix
	}
	if opts.DefaultTheme == "" {
		opts.DefaultTheme = DefaultTheme
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Document != nil {
		opts.Document = append([]byte{}, opts.Document...)
	}
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithKeyPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.KeyPrefix = prefix
	}
}

func WithDefaultTheme(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultTheme = name
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithChecker(checker KeyChecker) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Checker = checker
	}
}

func WithThemes(themes ThemeResolver) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Themes = themes
	}
}

func WithMeta(meta MetaSource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Meta = meta
	}
}

func WithContactDefaults(contacts ContactDefaults) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Contacts = contacts
	}
}

// WithDocument sets the API document served at /webform/openapi.json.
func WithDocument(doc []byte) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Document = doc
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithObserver(observer RequestObserver) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Observer = observer
	}
}

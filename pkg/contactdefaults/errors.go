package contactdefaults

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfiguration reports an absent site link or connection vars.
	ErrMissingConfiguration = errors.New("contactdefaults: missing configuration")
	// ErrMalformedRemoteResponse reports a settings body without `sources`.
	ErrMalformedRemoteResponse = errors.New("contactdefaults: remote response malformed")

	errNoSiteLink = &ConfigError{Message: "Not site link set."}
	errNoSiteData = &ConfigError{Message: "Missing site to site data"}
)

// ConfigError is a missing configuration failure with a user facing message.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "contactdefaults: " + e.Message
}

// Is matches ErrMissingConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfiguration
}

// RemoteFetchFailedError wraps a transport failure or non-2xx response.
type RemoteFetchFailedError struct {
	URL string
	Err error
}

func (e *RemoteFetchFailedError) Error() string {
	return fmt.Sprintf("contactdefaults: fetch %s: %v", e.URL, e.Err)
}

func (e *RemoteFetchFailedError) Unwrap() error {
	return e.Err
}

// Message returns the user facing text of err.
func Message(err error) string {
	var cfg *ConfigError
	if errors.As(err, &cfg) {
		return cfg.Message
	}
	var remote *RemoteFetchFailedError
	if errors.As(err, &remote) && remote.Err != nil {
		return remote.Err.Error()
	}
	if errors.Is(err, ErrMalformedRemoteResponse) {
		return "Remote response from DT server malformed."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

package contactdefaults

import (
	"context"
	"strings"
)

// StaticSiteLink serves a single site link from configuration.
type StaticSiteLink struct {
	Link SiteLink
}

// NewStaticSiteLink returns a provider for url and token. A blank url yields a
// provider reporting no site link.
func NewStaticSiteLink(url, token string) StaticSiteLink {
	return StaticSiteLink{Link: SiteLink{ID: "default", URL: strings.TrimSpace(url), TransferToken: token}}
}

func (s StaticSiteLink) SiteLinkID(context.Context) (string, bool, error) {
	if s.Link.URL == "" {
		return "", false, nil
	}
	return s.Link.ID, true, nil
}

func (s StaticSiteLink) ConnectionVars(_ context.Context, id string) (SiteLink, bool, error) {
	if id != s.Link.ID || s.Link.URL == "" {
		return SiteLink{}, false, nil
	}
	return s.Link, true, nil
}

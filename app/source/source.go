package source

import (
	"fmt"

	"github.com/lysyi3m/blog-comb/app/site"
)

var (
	_ Source = (*REST)(nil)
	_ Source = (*RSS)(nil)
)

// New selects the source variant configured for the site.
func New(siteConfig *site.Config, fetcher *Fetcher) (Source, error) {
	switch siteConfig.Source {
	case site.SourceREST:
		return NewREST(siteConfig, fetcher), nil
	case site.SourceRSS:
		return NewRSS(siteConfig, fetcher), nil
	default:
		return nil, fmt.Errorf("unknown source '%s' for site '%s'", siteConfig.Source, siteConfig.Name)
	}
}

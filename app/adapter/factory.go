package adapter

import (
	"fmt"

	"github.com/lysyi3m/blog-comb/app/feed"
	"github.com/lysyi3m/blog-comb/app/site"
	"github.com/lysyi3m/blog-comb/app/source"
)

// Factory builds adapters from site configs, sharing one fetcher and extractor.
type Factory struct {
	fetcher      *source.Fetcher
	extractor    *feed.ContentExtractor
	excerptWords int
}

func NewFactory(fetcher *source.Fetcher, extractor *feed.ContentExtractor, excerptWords int) *Factory {
	return &Factory{
		fetcher:      fetcher,
		extractor:    extractor,
		excerptWords: excerptWords,
	}
}

func (f *Factory) For(siteConfig *site.Config) (*Adapter, error) {
	src, err := source.New(siteConfig, f.fetcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return New(siteConfig, src, f.extractor, f.excerptWords), nil
}

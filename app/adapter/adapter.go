package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/lysyi3m/blog-comb/app/feed"
	"github.com/lysyi3m/blog-comb/app/metrics"
	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
	"github.com/lysyi3m/blog-comb/app/source"
)

const (
	OperationFetchPostBySlug  = "fetch_post_by_slug"
	OperationFetchPostByIndex = "fetch_post_by_index"
	OperationFetchAllPosts    = "fetch_all_posts"
)

// Adapter serves normalized posts of one site. Every error it returns is a *post.Error.
type Adapter struct {
	site         *site.Config
	source       source.Source
	extractor    *feed.ContentExtractor
	excerptWords int
}

func New(siteConfig *site.Config, src source.Source, extractor *feed.ContentExtractor, excerptWords int) *Adapter {
	return &Adapter{
		site:         siteConfig,
		source:       src,
		extractor:    extractor,
		excerptWords: excerptWords,
	}
}

func (a *Adapter) Site() *site.Config {
	return a.site
}

// FetchPostBySlug returns the post whose slug matches. An empty slug fails
// without contacting the upstream.
func (a *Adapter) FetchPostBySlug(ctx context.Context, slug string) (post.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return post.Post{}, a.fail(OperationFetchPostBySlug, post.NewError(post.MissingParameter, "slug is required"))
	}

	p, err := a.source.FetchBySlug(ctx, slug)
	if err != nil {
		return post.Post{}, a.fail(OperationFetchPostBySlug, err, "slug", slug)
	}

	slog.Debug("Post fetched", "site", a.site.Name, "slug", slug)

	return a.complete(p), nil
}

// FetchPostByIndex returns the post at a zero-based position of the current
// upstream list. Positions shift as posts are published, so the result is only
// as stable as the upstream ordering.
func (a *Adapter) FetchPostByIndex(ctx context.Context, index int) (post.Post, error) {
	posts, err := a.source.FetchAll(ctx)
	if err != nil {
		return post.Post{}, a.fail(OperationFetchPostByIndex, err, "index", index)
	}

	if index < 0 || index >= len(posts) {
		notFound := post.NewError(post.NotFound, fmt.Sprintf("no post at index %d, site has %d posts", index, len(posts)))
		return post.Post{}, a.fail(OperationFetchPostByIndex, notFound, "index", index)
	}

	return a.complete(posts[index]), nil
}

// FetchAllPosts returns every post in upstream order.
func (a *Adapter) FetchAllPosts(ctx context.Context) ([]post.Post, error) {
	posts, err := a.source.FetchAll(ctx)
	if err != nil {
		return nil, a.fail(OperationFetchAllPosts, err)
	}

	slog.Debug("Posts fetched", "site", a.site.Name, "source", a.source.Kind(), "count", len(posts))

	return lo.Map(posts, func(p post.Post, _ int) post.Post {
		return a.complete(p)
	}), nil
}

// complete derives a missing excerpt from the description.
func (a *Adapter) complete(p post.Post) post.Post {
	if p.Excerpt != "" || p.Description == post.DefaultDescription || a.extractor == nil {
		return p
	}
	p.Excerpt = a.extractor.Excerpt(p.Description, a.excerptWords)
	return p
}

// fail classifies err, records it and returns it as a *post.Error.
func (a *Adapter) fail(operation string, err error, attrs ...any) *post.Error {
	var postErr *post.Error
	if !errors.As(err, &postErr) {
		postErr = post.WrapError(post.UpstreamUnavailable, err, "failed to %s", strings.ReplaceAll(operation, "_", " "))
	}

	metrics.ObserveFailure(a.site.Name, operation, string(postErr.Kind))

	attrs = append([]any{"site", a.site.Name, "operation", operation, "kind", postErr.Kind, "error", postErr.Details()}, attrs...)
	switch postErr.Kind {
	case post.UpstreamUnavailable, post.ParseFailure:
		slog.Error("Adapter operation failed", attrs...)
	default:
		slog.Info("Adapter operation rejected", attrs...)
	}

	return postErr
}

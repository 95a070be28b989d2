package source

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

const (
	endpointFeed = "feed"
	acceptFeed   = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8"
)

// RSS reads posts from the blog's RSS (or Atom) document.
type RSS struct {
	siteName string
	feedURL  string
	timeout  time.Duration
	fetcher  *Fetcher
}

func NewRSS(siteConfig *site.Config, fetcher *Fetcher) *RSS {
	return &RSS{
		siteName: siteConfig.Name,
		feedURL:  siteConfig.FeedURL,
		timeout:  siteConfig.Settings.TimeoutDuration(),
		fetcher:  fetcher,
	}
}

func (s *RSS) Kind() string {
	return site.SourceRSS
}

func (s *RSS) FetchAll(ctx context.Context) ([]post.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.fetcher.Fetch(ctx, s.siteName, endpointFeed, s.feedURL, acceptFeed)
	if err != nil {
		return nil, err
	}

	items, err := ParseItems(data)
	if err != nil {
		return nil, err
	}

	return lo.Map(items, func(item *gofeed.Item, _ int) post.Post {
		return post.Normalize(itemFields(item))
	}), nil
}

// FetchBySlug matches against the slug derived from each item's link.
func (s *RSS) FetchBySlug(ctx context.Context, slug string) (post.Post, error) {
	posts, err := s.FetchAll(ctx)
	if err != nil {
		return post.Post{}, err
	}

	found, ok := lo.Find(posts, func(p post.Post) bool {
		return p.Slug == slug
	})
	if !ok {
		return post.Post{}, post.NewError(post.NotFound, fmt.Sprintf("no feed item with slug '%s'", slug))
	}

	return found, nil
}

// ParseItems parses an RSS or Atom document. A fresh gofeed parser is used per
// call since it keeps per-parse state.
func ParseItems(data []byte) ([]*gofeed.Item, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, post.WrapError(post.ParseFailure, err, "failed to parse feed")
	}

	return lo.Filter(feed.Items, func(item *gofeed.Item, _ int) bool {
		return item != nil
	}), nil
}

func itemFields(item *gofeed.Item) post.Fields {
	f := post.Fields{
		Title:       item.Title,
		Link:        item.Link,
		Content:     item.Content,
		Description: item.Description,
		PublishedAt: item.Published,
		Categories:  item.Categories,
		Identifier:  item.GUID,
		Thumbnail:   mediaThumbnail(item),
		Slug:        SlugFromLink(item.Link),
		Excerpt:     item.Description,
	}

	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		f.Creator = item.DublinCoreExt.Creator[0]
	}

	if item.Author != nil {
		f.Author = cmp.Or(item.Author.Name, item.Author.Email)
	}

	return f
}

// mediaThumbnail reads the url attribute of the first media:thumbnail node.
func mediaThumbnail(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}

	for _, thumbnail := range media["thumbnail"] {
		if u := strings.TrimSpace(thumbnail.Attrs["url"]); u != "" {
			return u
		}
	}

	return ""
}

// SlugFromLink returns the last path segment of a permalink, e.g.
// https://blog.example.com/2024/01/02/hello-world/ -> hello-world.
// Plain permalinks (https://blog.example.com/?p=11) yield the post id.
func SlugFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}

	p := strings.Trim(u.Path, "/")
	if p == "" {
		return strings.TrimSpace(u.Query().Get("p"))
	}

	return path.Base(p)
}

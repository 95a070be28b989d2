package source

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

const (
	endpointPosts      = "posts"
	endpointCategories = "categories"
	acceptJSON         = "application/json"

	// Expands the author object and featured media into _embedded.
	embedFields        = "author,wp:featuredmedia"
	categoriesPageSize = "100"
)

// REST reads posts from a WordPress-style REST API (wp/v2).
type REST struct {
	siteName string
	baseURL  string
	timeout  time.Duration
	fetcher  *Fetcher
}

func NewREST(siteConfig *site.Config, fetcher *Fetcher) *REST {
	return &REST{
		siteName: siteConfig.Name,
		baseURL:  strings.TrimSuffix(siteConfig.APIURL, "/"),
		timeout:  siteConfig.Settings.TimeoutDuration(),
		fetcher:  fetcher,
	}
}

func (s *REST) Kind() string {
	return site.SourceREST
}

func (s *REST) FetchAll(ctx context.Context) ([]post.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.fetchPosts(ctx, nil)
	if err != nil {
		return nil, err
	}

	categoryNames, err := s.categoryNames(ctx, records)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(record restPost, _ int) post.Post {
		return post.Normalize(record.fields(categoryNames))
	}), nil
}

func (s *REST) FetchBySlug(ctx context.Context, slug string) (post.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.fetchPosts(ctx, url.Values{"slug": {slug}})
	if err != nil {
		return post.Post{}, err
	}

	if len(records) == 0 {
		return post.Post{}, post.NewError(post.NotFound, fmt.Sprintf("no post with slug '%s'", slug))
	}
	if len(records) > 1 {
		slog.Warn("Slug matched more than one post, using the first", "site", s.siteName, "slug", slug, "matches", len(records))
	}

	record := records[0]
	categoryNames, err := s.categoryNames(ctx, records[:1])
	if err != nil {
		return post.Post{}, err
	}

	return post.Normalize(record.fields(categoryNames)), nil
}

func (s *REST) fetchPosts(ctx context.Context, query url.Values) ([]restPost, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("_embed", embedFields)

	endpointURL, err := s.endpointURL(endpointPosts, query)
	if err != nil {
		return nil, err
	}

	data, err := s.fetcher.Fetch(ctx, s.siteName, endpointPosts, endpointURL, acceptJSON)
	if err != nil {
		return nil, err
	}

	return decodePosts(data)
}

// categoryNames fetches the whole category list once, and only when some record
// carries category identifiers.
func (s *REST) categoryNames(ctx context.Context, records []restPost) (map[int]string, error) {
	needed := lo.SomeBy(records, func(record restPost) bool {
		return len(record.Categories) > 0
	})
	if !needed {
		return nil, nil
	}

	endpointURL, err := s.endpointURL(endpointCategories, url.Values{"per_page": {categoriesPageSize}})
	if err != nil {
		return nil, err
	}

	data, err := s.fetcher.Fetch(ctx, s.siteName, endpointCategories, endpointURL, acceptJSON)
	if err != nil {
		return nil, err
	}

	categories, err := decodeCategories(data)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(categories))
	for _, category := range categories {
		names[category.ID] = html.UnescapeString(category.Name)
	}

	return names, nil
}

func (s *REST) endpointURL(endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(s.baseURL + "/" + endpoint)
	if err != nil {
		return "", post.WrapError(post.UpstreamUnavailable, err, "invalid api_url for site '%s'", s.siteName)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Upstream schemas. Anything that does not decode into these fails with ParseFailure.

type rendered struct {
	Rendered string `json:"rendered"`
}

func (r *rendered) text() string {
	if r == nil {
		return ""
	}
	return r.Rendered
}

// restAuthor accepts both the expanded author object and the bare numeric id.
type restAuthor struct {
	ID   int64
	Name string
}

func (a *restAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		a.ID, a.Name = obj.ID, obj.Name
		return nil
	}

	return json.Unmarshal(data, &a.ID)
}

type restEmbedded struct {
	Author []struct {
		Name string `json:"name"`
	} `json:"author"`
	FeaturedMedia []struct {
		SourceURL string `json:"source_url"`
	} `json:"wp:featuredmedia"`
}

type restPost struct {
	ID                      int64         `json:"id"`
	Slug                    string        `json:"slug"`
	Date                    string        `json:"date"`
	Link                    string        `json:"link"`
	Title                   *rendered     `json:"title"`
	Content                 *rendered     `json:"content"`
	Excerpt                 *rendered     `json:"excerpt"`
	Author                  restAuthor    `json:"author"`
	Categories              []int         `json:"categories"`
	JetpackFeaturedMediaURL string        `json:"jetpack_featured_media_url"`
	Embedded                *restEmbedded `json:"_embedded"`
}

type restCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (p restPost) fields(categoryNames map[int]string) post.Fields {
	f := post.Fields{
		Title:       p.Title.text(),
		Link:        p.Link,
		Content:     p.Content.text(),
		PublishedAt: p.Date,
		Author:      cmp.Or(p.embeddedAuthor(), p.Author.Name),
		Thumbnail:   cmp.Or(p.JetpackFeaturedMediaURL, p.embeddedMedia()),
		Slug:        p.Slug,
		Excerpt:     p.Excerpt.text(),
	}

	if p.ID > 0 {
		f.Identifier = strconv.FormatInt(p.ID, 10)
	}

	if len(p.Categories) > 0 {
		f.Categories = post.ResolveCategories(p.Categories, categoryNames)
	}

	return f
}

func (p restPost) embeddedAuthor() string {
	if p.Embedded == nil || len(p.Embedded.Author) == 0 {
		return ""
	}
	return p.Embedded.Author[0].Name
}

func (p restPost) embeddedMedia() string {
	if p.Embedded == nil || len(p.Embedded.FeaturedMedia) == 0 {
		return ""
	}
	return p.Embedded.FeaturedMedia[0].SourceURL
}

func decodePosts(data []byte) ([]restPost, error) {
	var records []restPost
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, post.WrapError(post.ParseFailure, err, "unexpected posts response shape")
	}
	// A null root decodes without error but is not a collection.
	if records == nil {
		return nil, post.NewError(post.ParseFailure, "unexpected posts response shape: top level is not an array")
	}
	return records, nil
}

func decodeCategories(data []byte) ([]restCategory, error) {
	var categories []restCategory
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, post.WrapError(post.ParseFailure, err, "unexpected categories response shape")
	}
	if categories == nil {
		return nil, post.NewError(post.ParseFailure, "unexpected categories response shape: top level is not an array")
	}
	return categories, nil
}

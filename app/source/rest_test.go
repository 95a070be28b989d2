package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

const restPostsJSON = `[
  {
    "id": 11,
    "slug": "hello-world",
    "date": "2024-01-02T10:00:00",
    "link": "https://blog.example.com/2024/01/02/hello-world/",
    "title": {"rendered": "Hello&nbsp;World"},
    "content": {"rendered": "<p>Full body</p>"},
    "excerpt": {"rendered": "<p>Full body [&hellip;]</p>\n"},
    "author": 7,
    "categories": [1, 99],
    "jetpack_featured_media_url": "https://i0.wp.com/blog.example.com/hello.jpg",
    "_embedded": {"author": [{"name": "Jane Doe"}]}
  },
  {"id": 12}
]`

const restCategoriesJSON = `[
  {"id": 1, "name": "News &amp; Updates"},
  {"id": 2, "name": "Go"}
]`

type restStub struct {
	server         *httptest.Server
	postCalls      atomic.Int32
	categoryCalls  atomic.Int32
	lastPostsQuery atomic.Value
}

func newRESTStub(t *testing.T, postsBySlug map[string]string, allPosts string) *restStub {
	t.Helper()
	stub := &restStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("/wp/v2/sites/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		stub.postCalls.Add(1)
		stub.lastPostsQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")

		if slug := r.URL.Query().Get("slug"); slug != "" {
			body, ok := postsBySlug[slug]
			if !ok {
				body = "[]"
			}
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(allPosts))
	})
	mux.HandleFunc("/wp/v2/sites/blog/categories", func(w http.ResponseWriter, r *http.Request) {
		stub.categoryCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(restCategoriesJSON))
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func newTestREST(baseURL string) *REST {
	siteConfig := &site.Config{
		Name:     "blog",
		Source:   site.SourceREST,
		APIURL:   baseURL + "/wp/v2/sites/blog/",
		Settings: site.ConfigSettings{Enabled: true, Timeout: 5},
	}
	return NewREST(siteConfig, NewFetcher(nil, "blog-comb-test"))
}

func TestRESTFetchAll(t *testing.T) {
	stub := newRESTStub(t, nil, restPostsJSON)
	src := newTestREST(stub.server.URL)

	posts, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "Hello World", first.Title)
	assert.Equal(t, "https://blog.example.com/2024/01/02/hello-world/", first.Link)
	assert.Equal(t, "<p>Full body</p>", first.Description)
	assert.Equal(t, "2024-01-02T10:00:00", first.PublishedAt)
	assert.Equal(t, "Jane Doe", first.Author)
	assert.Equal(t, []string{"News & Updates", post.UnknownCategory}, first.Categories)
	assert.Equal(t, "11", first.Identifier)
	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "Full body", first.Excerpt)
	require.NotNil(t, first.ThumbnailURL)
	assert.Equal(t, "https://i0.wp.com/blog.example.com/hello.jpg", *first.ThumbnailURL)

	second := posts[1]
	assert.Equal(t, post.DefaultTitle, second.Title)
	assert.Equal(t, post.DefaultLink, second.Link)
	assert.Equal(t, post.DefaultDescription, second.Description)
	assert.Equal(t, post.DefaultAuthor, second.Author)
	assert.Equal(t, []string{post.DefaultCategory}, second.Categories)
	assert.Equal(t, "12", second.Identifier)
	assert.Nil(t, second.ThumbnailURL)

	assert.Equal(t, int32(1), stub.postCalls.Load())
	assert.Equal(t, int32(1), stub.categoryCalls.Load())
	assert.Contains(t, stub.lastPostsQuery.Load().(string), "_embed=")
}

func TestRESTFetchBySlug(t *testing.T) {
	stub := newRESTStub(t, map[string]string{
		"object-author": `[{
			"id": 5,
			"slug": "object-author",
			"title": {"rendered": "Object"},
			"author": {"id": 3, "name": "Object Author"},
			"_embedded": {"wp:featuredmedia": [{"source_url": "https://blog.example.com/embedded.jpg"}]}
		}]`,
	}, "[]")
	src := newTestREST(stub.server.URL)

	p, err := src.FetchBySlug(context.Background(), "object-author")
	require.NoError(t, err)

	assert.Equal(t, "Object", p.Title)
	assert.Equal(t, "Object Author", p.Author)
	assert.Equal(t, "5", p.Identifier)
	assert.Equal(t, []string{post.DefaultCategory}, p.Categories)
	require.NotNil(t, p.ThumbnailURL)
	assert.Equal(t, "https://blog.example.com/embedded.jpg", *p.ThumbnailURL)

	assert.Equal(t, int32(1), stub.postCalls.Load())
	assert.Equal(t, int32(0), stub.categoryCalls.Load(), "no category lookup without category ids")
	assert.Contains(t, stub.lastPostsQuery.Load().(string), "slug=object-author")
}

func TestRESTFetchBySlugNotFound(t *testing.T) {
	stub := newRESTStub(t, nil, "[]")
	src := newTestREST(stub.server.URL)

	_, err := src.FetchBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.NotFound), "expected NotFound, got %v", err)
	assert.Equal(t, int32(0), stub.categoryCalls.Load())
}

func TestRESTFetchBySlugResolvesCategories(t *testing.T) {
	stub := newRESTStub(t, map[string]string{
		"categorized": `[{"id": 8, "categories": [2, 1]}]`,
	}, "[]")
	src := newTestREST(stub.server.URL)

	p, err := src.FetchBySlug(context.Background(), "categorized")
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "News & Updates"}, p.Categories)
	assert.Equal(t, int32(1), stub.categoryCalls.Load())
}

func TestRESTUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"rest_no_route","message":"No route was found matching the URL and request method.","data":{"status":404}}`))
	}))
	defer server.Close()

	_, err := newTestREST(server.URL).FetchAll(context.Background())
	require.Error(t, err)

	var postErr *post.Error
	require.ErrorAs(t, err, &postErr)
	assert.Equal(t, post.UpstreamUnavailable, postErr.Kind)
	assert.Contains(t, postErr.Details(), "404 Not Found")
	assert.Contains(t, postErr.Details(), "No route was found")
}

func TestRESTNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := newTestREST(baseURL).FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.UpstreamUnavailable), "expected UpstreamUnavailable, got %v", err)
}

func TestRESTSchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object instead of array", body: `{"posts": []}`},
		{name: "title is a plain string", body: `[{"id": 1, "title": "plain"}]`},
		{name: "categories are names", body: `[{"id": 1, "categories": ["News"]}]`},
		{name: "not json", body: `<html>maintenance</html>`},
		{name: "null root", body: `null`},
		{name: "empty object", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestREST(server.URL).FetchAll(context.Background())
			require.Error(t, err)
			assert.True(t, post.IsKind(err, post.ParseFailure), "expected ParseFailure, got %v", err)
		})
	}
}

func TestRESTNullRootBySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(" null\n"))
	}))
	defer server.Close()

	_, err := newTestREST(server.URL).FetchBySlug(context.Background(), "hello-world")
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.ParseFailure), "expected ParseFailure, got %v", err)
}

func TestRESTNullCategories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp/v2/sites/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "categories": [1]}]`))
	})
	mux.HandleFunc("/wp/v2/sites/blog/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := newTestREST(server.URL).FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.ParseFailure), "expected ParseFailure, got %v", err)
}

func TestRESTEmptyRecord(t *testing.T) {
	stub := newRESTStub(t, nil, `[{}]`)

	posts, err := newTestREST(stub.server.URL).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, post.DefaultTitle, p.Title)
	assert.Equal(t, post.DefaultLink, p.Link)
	assert.Equal(t, post.DefaultDescription, p.Description)
	assert.Equal(t, post.DefaultPublishedAt, p.PublishedAt)
	assert.Equal(t, post.DefaultAuthor, p.Author)
	assert.Equal(t, []string{post.DefaultCategory}, p.Categories)
	assert.Equal(t, post.DefaultIdentifier, p.Identifier)
	assert.Nil(t, p.ThumbnailURL)
	assert.Equal(t, "", p.Slug)
	assert.Equal(t, "", p.Excerpt)
	assert.Equal(t, int32(0), stub.categoryCalls.Load())
}

func TestRESTEmptyArray(t *testing.T) {
	stub := newRESTStub(t, nil, `[]`)

	posts, err := newTestREST(stub.server.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRESTCategoryLookupFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp/v2/sites/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "categories": [1]}]`))
	})
	mux.HandleFunc("/wp/v2/sites/blog/categories", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := newTestREST(server.URL).FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.UpstreamUnavailable), "expected UpstreamUnavailable, got %v", err)
}

func TestRESTSendsUserAgent(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.UserAgent())
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	_, err := newTestREST(server.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blog-comb-test", userAgent.Load())
}

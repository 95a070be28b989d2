package api

import (
	"github.com/lysyi3m/blog-comb/app/adapter"
	"github.com/lysyi3m/blog-comb/app/feed"
	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

type GeneratorInterface interface {
	Run(siteConfig *site.Config, posts []post.Post) (string, error)
}

type AdapterFactoryInterface interface {
	For(siteConfig *site.Config) (*adapter.Adapter, error)
}

var (
	_ GeneratorInterface      = (*feed.Generator)(nil)
	_ AdapterFactoryInterface = (*adapter.Factory)(nil)
)

type Handler struct {
	configCache *site.ConfigCache
	adapters    AdapterFactoryInterface
	generator   GeneratorInterface
}

type ErrorResponse struct {
	Error   post.Kind `json:"error"`
	Details string    `json:"details"`
}

type PostsResponse struct {
	Site        string      `json:"site"`
	Title       string      `json:"title"`
	Link        string      `json:"link"`
	Description string      `json:"description"`
	Posts       []post.Post `json:"posts"`
	Total       int         `json:"total"`
}

type SiteInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	URL       string `json:"url"`
	Enabled   bool   `json:"enabled"`
	Timeout   string `json:"timeout"`
	FeedPath  string `json:"feed_path"`
	PostsPath string `json:"posts_path"`
}

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blog-comb/app/adapter"
	"github.com/lysyi3m/blog-comb/app/feed"
	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

func NewHandler(configCache *site.ConfigCache, adapters AdapterFactoryInterface) *Handler {
	return &Handler{
		configCache: configCache,
		adapters:    adapters,
		generator:   feed.NewGenerator(),
	}
}

func (h *Handler) GetPosts(c *gin.Context) {
	a, ok := h.siteAdapter(c)
	if !ok {
		return
	}

	posts, err := a.FetchAllPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	siteConfig := a.Site()
	c.Header("X-Site-Posts", strconv.Itoa(len(posts)))
	c.JSON(http.StatusOK, PostsResponse{
		Site:        siteConfig.Name,
		Title:       siteConfig.Title,
		Link:        siteConfig.Link,
		Description: siteConfig.Description,
		Posts:       posts,
		Total:       len(posts),
	})
}

// GetPostBySlugQuery serves /sites/:site/post?slug=<slug>.
func (h *Handler) GetPostBySlugQuery(c *gin.Context) {
	h.servePostBySlug(c, c.Query("slug"))
}

func (h *Handler) GetPostBySlug(c *gin.Context) {
	h.servePostBySlug(c, c.Param("slug"))
}

func (h *Handler) servePostBySlug(c *gin.Context, slug string) {
	a, ok := h.siteAdapter(c)
	if !ok {
		return
	}

	p, err := a.FetchPostBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPostByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, post.NewError(post.MissingParameter, fmt.Sprintf("index must be an integer, got '%s'", c.Param("index"))))
		return
	}

	a, ok := h.siteAdapter(c)
	if !ok {
		return
	}

	p, err := a.FetchPostByIndex(c.Request.Context(), index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetFeed(c *gin.Context) {
	a, ok := h.siteAdapter(c)
	if !ok {
		return
	}

	posts, err := a.FetchAllPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	rss, err := h.generator.Run(a.Site(), posts)
	if err != nil {
		slog.Error("RSS generation error", "site", a.Site().Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Site-Posts", strconv.Itoa(len(posts)))
	c.Header("X-Site-Name", a.Site().Name)

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_configurations": h.configCache.GetConfigCount(),
		"enabled_sites":         len(h.configCache.GetEnabledConfigs()),
	})
}

func (h *Handler) APIListSites(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sites := make([]SiteInfo, 0, len(configs))
	for _, siteConfig := range configs {
		sites = append(sites, siteInfo(siteConfig))
	}
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Name < sites[j].Name
	})

	c.JSON(http.StatusOK, gin.H{
		"sites": sites,
		"total": len(sites),
	})
}

func (h *Handler) APIReloadSite(c *gin.Context) {
	name := c.Param("site")

	if _, err := h.configCache.GetConfig(name); err != nil {
		respondError(c, post.NewError(post.NotFound, fmt.Sprintf("site '%s' not found", name)))
		return
	}

	siteConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	slog.Info("Site configuration reloaded", "site", name, "source", siteConfig.Source, "enabled", siteConfig.Settings.Enabled)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded successfully",
		"site":    siteInfo(siteConfig),
	})
}

// siteAdapter resolves the :site parameter. Unknown and disabled sites answer 404.
func (h *Handler) siteAdapter(c *gin.Context) (*adapter.Adapter, bool) {
	name := c.Param("site")

	siteConfig, err := h.configCache.GetConfig(name)
	if err != nil || !siteConfig.Settings.Enabled {
		respondError(c, post.NewError(post.NotFound, fmt.Sprintf("site '%s' not found", name)))
		return nil, false
	}

	a, err := h.adapters.For(siteConfig)
	if err != nil {
		slog.Error("Failed to create adapter", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create adapter", "details": err.Error()})
		return nil, false
	}

	return a, true
}

func respondError(c *gin.Context, err error) {
	var postErr *post.Error
	if !errors.As(err, &postErr) {
		postErr = post.WrapError(post.UpstreamUnavailable, err, "unexpected failure")
	}

	c.JSON(statusFor(postErr.Kind), ErrorResponse{
		Error:   postErr.Kind,
		Details: postErr.Details(),
	})
}

func statusFor(kind post.Kind) int {
	switch kind {
	case post.MissingParameter:
		return http.StatusBadRequest
	case post.NotFound:
		return http.StatusNotFound
	case post.UpstreamUnavailable, post.ParseFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func siteInfo(siteConfig *site.Config) SiteInfo {
	url := siteConfig.APIURL
	if siteConfig.Source == site.SourceRSS {
		url = siteConfig.FeedURL
	}

	return SiteInfo{
		Name:      siteConfig.Name,
		Title:     siteConfig.Title,
		Link:      siteConfig.Link,
		Source:    siteConfig.Source,
		URL:       url,
		Enabled:   siteConfig.Settings.Enabled,
		Timeout:   siteConfig.Settings.TimeoutDuration().String(),
		FeedPath:  fmt.Sprintf("/sites/%s/feed.xml", siteConfig.Name),
		PostsPath: fmt.Sprintf("/sites/%s/posts", siteConfig.Name),
	}
}

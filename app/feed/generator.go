package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/blog-comb/app/cfg"
	"github.com/lysyi3m/blog-comb/app/post"
	"github.com/lysyi3m/blog-comb/app/site"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders posts as an RSS 2.0 document. Placeholder defaults are left out
// so readers do not show them as real values.
func (g *Generator) Run(siteConfig *site.Config, posts []post.Post) (string, error) {
	if siteConfig == nil {
		return "", fmt.Errorf("site config is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:media="http://search.yahoo.com/mrss/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(siteConfig.Title, siteConfig.Name), 4)
	g.writeElement(&buf, "link", siteConfig.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(siteConfig.Description, fmt.Sprintf("Latest posts from %s", cmp.Or(siteConfig.Title, siteConfig.Name))), 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(SelfLink(siteConfig.Name))))

	g.writeElement(&buf, "lastBuildDate", time.Now().In(time.Local).Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Blog-Comb/%s", cfg.Get().Version), 4)

	for _, p := range posts {
		g.writeItem(&buf, p)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

// SelfLink is the public URL of a site's generated feed.
func SelfLink(siteName string) string {
	if cfg.Get().BaseUrl != "" {
		return fmt.Sprintf("%s/sites/%s/feed.xml", strings.TrimSuffix(cfg.Get().BaseUrl, "/"), siteName)
	}
	return fmt.Sprintf("http://localhost:%s/sites/%s/feed.xml", cfg.Get().Port, siteName)
}

func (g *Generator) writeItem(buf *bytes.Buffer, p post.Post) {
	buf.WriteString("    <item>\n")

	if p.Identifier != post.DefaultIdentifier {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(p.Identifier)))
		xml.EscapeText(buf, []byte(p.Identifier))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", p.Title, 6)

	if p.Link != post.DefaultLink {
		g.writeElement(buf, "link", p.Link, 6)
	}

	g.writeElement(buf, "description", cmp.Or(p.Excerpt, p.Description), 6)

	if p.Description != post.DefaultDescription && p.Description != p.Excerpt {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(escapeCDATA(p.Description))
		buf.WriteString("]]></content:encoded>\n")
	}

	if p.PublishedAt != post.DefaultPublishedAt {
		g.writeElement(buf, "pubDate", p.PublishedAt, 6)
	}

	if p.Author != post.DefaultAuthor {
		g.writeElement(buf, "dc:creator", p.Author, 6)
	}

	for _, category := range p.Categories {
		if category != post.DefaultCategory && category != post.UnknownCategory {
			g.writeElement(buf, "category", category, 6)
		}
	}

	if p.HasThumbnail() {
		buf.WriteString(fmt.Sprintf("      <media:thumbnail url=\"%s\" />\n", html.EscapeString(p.Thumbnail())))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}

// escapeCDATA splits any "]]>" so the section cannot be closed early.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

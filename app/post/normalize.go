package post

import (
	"cmp"
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultTitle       = "No title"
	DefaultLink        = "#"
	DefaultDescription = "No description"
	DefaultPublishedAt = "No date"
	DefaultAuthor      = "Unknown author"
	DefaultIdentifier  = "No GUID"
	DefaultCategory    = "Uncategorized"
	UnknownCategory    = "Unknown Category"
)

// Normalize applies the field mapping policy. It is total: every field of the
// returned Post is populated, whatever subset of f is set.
func Normalize(f Fields) Post {
	p := Post{
		Title:       cmp.Or(CleanTitle(f.Title), DefaultTitle),
		Link:        cmp.Or(strings.TrimSpace(f.Link), DefaultLink),
		Description: cmp.Or(strings.TrimSpace(f.Content), strings.TrimSpace(f.Description), DefaultDescription),
		PublishedAt: cmp.Or(strings.TrimSpace(f.PublishedAt), DefaultPublishedAt),
		Author:      cmp.Or(strings.TrimSpace(f.Creator), strings.TrimSpace(f.Author), DefaultAuthor),
		Categories:  normalizeCategories(f.Categories),
		Identifier:  cmp.Or(strings.TrimSpace(f.Identifier), DefaultIdentifier),
		Slug:        strings.TrimSpace(f.Slug),
		Excerpt:     SanitizeExcerpt(f.Excerpt),
	}

	if thumbnail := strings.TrimSpace(f.Thumbnail); thumbnail != "" {
		p.ThumbnailURL = &thumbnail
	}

	return p
}

func normalizeCategories(categories []string) []string {
	names := lo.Compact(lo.Map(categories, func(c string, _ int) string {
		return strings.TrimSpace(c)
	}))
	if len(names) == 0 {
		return []string{DefaultCategory}
	}
	return names
}

// ResolveCategories maps category identifiers to names, keeping positions.
func ResolveCategories(ids []int, names map[int]string) []string {
	return lo.Map(ids, func(id int, _ int) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return UnknownCategory
	})
}

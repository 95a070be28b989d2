package post

// Post is the normalized record handed to the render layer.
type Post struct {
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Description  string   `json:"description"`
	PublishedAt  string   `json:"published_at"` // upstream native format, ISO 8601 or RFC 822
	Author       string   `json:"author"`
	Categories   []string `json:"categories"`
	Identifier   string   `json:"identifier"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
	Slug         string   `json:"slug"`
	Excerpt      string   `json:"excerpt"`
}

// Fields carries the raw values a source pulled out of one upstream record.
// Empty values mean "absent upstream".
type Fields struct {
	Title       string
	Link        string
	Content     string // full content, wins over Description
	Description string // short description
	PublishedAt string
	Creator     string // creator-style author, wins over Author
	Author      string
	Categories  []string
	Identifier  string
	Thumbnail   string
	Slug        string
	Excerpt     string
}

// HasThumbnail reports whether the post carries a preview image.
func (p Post) HasThumbnail() bool {
	return p.ThumbnailURL != nil
}

// Thumbnail returns the preview image URL or an empty string.
func (p Post) Thumbnail() string {
	if p.ThumbnailURL == nil {
		return ""
	}
	return *p.ThumbnailURL
}

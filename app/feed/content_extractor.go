package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Below this many bytes of markup readability has too little to score and
// the fragment goes straight to plain text.
const readabilityMinLength = 500

const ellipsis = "…"

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the main article body from an HTML document and returns it as plain text.
func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	text, err := PlainText(article.Content)
	if err != nil {
		return "", err
	}

	if text == "" {
		return "", fmt.Errorf("no text extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content),
		"text_length", len(text))

	return text, nil
}

// Excerpt returns the first words of the readable text of htmlContent, with an
// ellipsis when the text was cut.
func (e *ContentExtractor) Excerpt(htmlContent string, words int) string {
	htmlContent = strings.TrimSpace(htmlContent)
	if htmlContent == "" || words <= 0 {
		return ""
	}

	var text string
	if len(htmlContent) >= readabilityMinLength {
		extracted, err := e.Run([]byte(htmlContent))
		if err != nil {
			slog.Debug("Readability extraction failed, using plain text", "error", err)
		}
		text = extracted
	}

	if text == "" {
		plain, err := PlainText(htmlContent)
		if err != nil {
			slog.Warn("Failed to extract text for excerpt", "error", err)
			return ""
		}
		text = plain
	}

	return truncateWords(text, words)
}

// PlainText strips markup and collapses whitespace. Block elements are kept
// apart by a space so adjacent paragraphs do not run together.
func PlainText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, blockquote, pre, figcaption, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func truncateWords(text string, words int) string {
	fields := strings.Fields(text)
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + ellipsis
}

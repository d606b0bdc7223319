package application

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// Excerpt sizing.
const (
	excerptWords       = 55
	excerptMore        = " [&hellip;]"
	columnExcerptRunes = 50
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	textStripper  *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	textStripper = bluemonday.StrictPolicy()
}

// RenderContent converts graduate Markdown content to sanitized HTML.
// Returns empty string for empty input.
func RenderContent(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// StripTags returns the text of an HTML fragment with all markup removed.
func StripTags(src string) string {
	return strings.TrimSpace(textStripper.Sanitize(src))
}

// Excerpt returns the graduate's manual excerpt, or the first 55 words of its
// rendered content with a trailing " [&hellip;]" when truncated.
func Excerpt(g model.Graduate) string {
	if g.Excerpt != "" {
		return g.Excerpt
	}

	words := strings.Fields(StripTags(RenderContent(g.Content)))
	if len(words) <= excerptWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:excerptWords], " ") + excerptMore
}

// RenderExcerpt returns the excerpt as an HTML paragraph. A manual excerpt
// is rendered like content; an automatic one is already plain text.
func RenderExcerpt(g model.Graduate) string {
	if g.Excerpt != "" {
		return RenderContent(g.Excerpt)
	}
	text := Excerpt(g)
	if text == "" {
		return ""
	}
	return "<p>" + text + "</p>\n"
}

// ColumnExcerpt returns the first 50 characters of the tag-stripped content
// as plain text, used in the admin list. Entities are decoded before the cut
// so the caller escapes the result exactly once.
func ColumnExcerpt(content string) string {
	text := html.UnescapeString(StripTags(content))
	if utf8.RuneCountInString(text) <= columnExcerptRunes {
		return text
	}
	return string([]rune(text)[:columnExcerptRunes])
}

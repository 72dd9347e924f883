package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer leaves WithUnsafe unset, so raw HTML blocks and inline tags in the
// source are dropped and replaced with a "raw HTML omitted" comment.
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts visitor-written markdown to HTML.
// POST: on a conversion error the source is returned HTML-escaped
func Render(src string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}
	return buf.String()
}

// Package mailtext flattens Gmail message payload trees into plain text
// suitable for datetime extraction.
package mailtext

import (
	"encoding/base64"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"placement-reminder/pkg/gmail"
)

// Normalize walks the payload tree and extracts readable text.
// text/plain parts are decoded as-is, text/html parts are stripped down to
// their visible text, and multipart nodes are flattened recursively with
// empty children skipped. The result is never an error: undecodable input
// degrades to an empty string.
func Normalize(part *gmail.BodyPart) string {
	if part == nil {
		return ""
	}

	switch {
	case part.MimeType == "text/plain" && part.Data != "":
		return decodeBase64URL(part.Data)
	case part.MimeType == "text/html" && part.Data != "":
		return htmlToText(decodeBase64URL(part.Data))
	}

	chunks := make([]string, 0, len(part.Parts))
	for _, child := range part.Parts {
		if text := Normalize(child); text != "" {
			chunks = append(chunks, text)
		}
	}
	return strings.Join(chunks, "\n")
}

// decodeBase64URL decodes URL-safe base64 with whatever padding the sender
// left off. Byte sequences that are not valid UTF-8 are replaced instead of
// failing the whole decode.
func decodeBase64URL(data string) string {
	if data == "" {
		return ""
	}
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Keep whatever prefix decoded cleanly.
		raw, _ = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// blockTags are elements whose close implies a line break in visible text.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "pre": true,
}

// htmlToText strips markup and returns the visible text, separating
// block-level elements with newlines.
func htmlToText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		appendNodeText(node, &b)
	}
	return tidyLines(b.String())
}

func appendNodeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendNodeText(c, b)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteString("\n")
	}
}

// tidyLines trims each line and collapses runs of blank lines.
func tidyLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

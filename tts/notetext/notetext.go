// Package notetext converts markdown notes to speakable plain text.
// Block elements become blank-line separated paragraphs so the
// segmentation engine's paragraph-respecting mode still sees their
// boundaries, and emphasis spans are re-emitted with asterisk delimiters
// so the engine can voice them.
package notetext

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Strip extracts speakable text from markdown. Code blocks, raw HTML and
// images are dropped; links keep their label; headings, paragraphs, list
// items and blockquote paragraphs each become their own paragraph.
func Strip(source string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(source))
	doc := md.Parser().Parse(reader)

	var blocks []string
	collectBlocks(doc, []byte(source), &blocks)
	return strings.Join(blocks, "\n\n")
}

// collectBlocks walks block-level nodes, appending one paragraph per
// speakable block.
func collectBlocks(node ast.Node, source []byte, blocks *[]string) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			var buf strings.Builder
			inlineText(c, source, &buf)
			if s := strings.TrimSpace(buf.String()); s != "" {
				*blocks = append(*blocks, s)
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
			// Not speakable.

		default:
			// Lists, list items, blockquotes: recurse into their blocks.
			collectBlocks(c, source, blocks)
		}
	}
}

// inlineText flattens the inline content of one block node.
func inlineText(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte(' ')
			}

		case *ast.String:
			buf.Write(n.Value)

		case *ast.CodeSpan:
			inlineText(n, source, buf)

		case *ast.Emphasis:
			// Re-emit with the single-asterisk delimiter the
			// segmentation engine understands.
			buf.WriteByte('*')
			inlineText(n, source, buf)
			buf.WriteByte('*')

		case *ast.Link:
			inlineText(n, source, buf)

		case *ast.Image, *ast.RawHTML:
			// Not speakable.

		default:
			inlineText(n, source, buf)
		}
	}
}

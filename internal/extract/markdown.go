package extract

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files. Markup is stripped
// via the goldmark AST so only speakable text reaches the synthesizer.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return TextFromMarkdown(data), nil
}

// TextFromMarkdown renders markdown source as plain text. Block elements
// (paragraphs, headings, list items) are separated by blank lines; inline
// markup is dropped. Code blocks are skipped entirely since reading them
// aloud is useless.
func TextFromMarkdown(src []byte) string {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var out strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				out.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					out.WriteString(" ")
				}
			}
		case ast.KindParagraph, ast.KindHeading, ast.KindListItem:
			if !entering {
				out.WriteString("\n\n")
			}
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return out.String()
}

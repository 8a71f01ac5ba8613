package sources

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// HTMLFileReader projects an HTML page onto plain text, keeping block
// boundaries as line breaks, and segments the result like a text file.
type HTMLFileReader struct{}

func NewHTMLFileReader() *HTMLFileReader {
	return &HTMLFileReader{}
}

func (r *HTMLFileReader) Read(path string) ([]entities.RawPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to read html file %s: %w", path, err)
	}

	text, err := HTMLText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrUnreadableFormat, path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", entities.ErrEmptyInput, path)
	}

	return payloadsFromText(text, entities.SourceKindHTMLFile, entities.SourceHTMLFile), nil
}

// HTMLText returns the visible text of an HTML document. Headings are
// rendered as markdown-style "#" lines so the segmenter can split on them.
func HTMLText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	collectHTMLText(doc, &b)
	return b.String(), nil
}

func collectHTMLText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head, atom.Noscript:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
			b.WriteString(strings.Join(strings.Fields(nodeText(n)), " "))
			b.WriteString("\n")
			return
		case atom.Li:
			b.WriteString("\n- ")
			b.WriteString(strings.Join(strings.Fields(nodeText(n)), " "))
			b.WriteString("\n")
			return
		case atom.Br:
			b.WriteString("\n")
		case atom.P, atom.Div, atom.Section, atom.Article, atom.Ul, atom.Ol, atom.Table, atom.Tr:
			b.WriteString("\n\n")
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLText(c, b)
	}
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

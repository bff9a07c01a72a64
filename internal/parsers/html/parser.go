// Package html provides the HTML and XHTML parser.
//
// In text mode (the default) the DOM is walked with golang.org/x/net/html
// and visible text is emitted with block elements on their own lines.
// In markdown mode the markup is first sanitised with bluemonday and then
// converted with html-to-markdown, keeping headings, lists and tables.
package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles HTML documents.
type Parser struct {
	mode     domain.HTMLMode
	policy   *bluemonday.Policy
	markdown *converter.Converter
}

// Option configures the HTML parser.
type Option func(*Parser)

// WithMode selects text or markdown output. Unknown modes are ignored.
func WithMode(mode domain.HTMLMode) Option {
	return func(p *Parser) {
		if mode.IsValid() {
			p.mode = mode
		}
	}
}

// New creates a new HTML parser.
func New(opts ...Option) *Parser {
	p := &Parser{mode: domain.HTMLModeText}
	for _, opt := range opts {
		opt(p)
	}
	if p.mode == domain.HTMLModeMarkdown {
		p.policy = bluemonday.UGCPolicy()
		p.markdown = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
	}
	return p
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "html"
}

// Mode returns the configured output mode.
func (p *Parser) Mode() domain.HTMLMode {
	return p.mode
}

// SupportedMIMETypes returns the MIME types this parser handles.
func (p *Parser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeHTML, domain.MIMETypeXHTML}
}

// Parse converts the markup into a single document.
func (p *Parser) Parse(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	root, err := xhtml.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var content string
	if p.mode == domain.HTMLModeMarkdown {
		content, err = p.toMarkdown(string(raw.Content))
		if err != nil {
			return nil, err
		}
	} else {
		content = visibleText(root)
	}

	meta := map[string]any{
		domain.MetaMIMEType: domain.CanonicalMIMEType(raw.MIMEType),
		domain.MetaFormat:   "html",
	}
	if title := findTitle(root); title != "" {
		meta[domain.MetaTitle] = title
	}
	if raw.Filename != "" {
		meta[domain.MetaFilename] = raw.Filename
	}

	return []domain.Document{{Content: content, Metadata: meta}}, nil
}

func (p *Parser) toMarkdown(markup string) (string, error) {
	clean := p.policy.Sanitize(markup)
	md, err := p.markdown.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// findTitle returns the text of the first <title> element.
func findTitle(n *xhtml.Node) string {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Title {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(sb.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

var (
	spaceRun      = regexp.MustCompile(`[ \t\r\f]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// visibleText walks the DOM and returns the text a reader would see.
// Paragraph-level elements are separated by a blank line, other blocks by a
// newline. Line breaks in the source text are kept, with runs of three or
// more collapsed to one blank line.
func visibleText(root *xhtml.Node) string {
	w := &textWriter{}
	w.walk(root, false)

	lines := strings.Split(w.sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text := strings.Join(lines, "\n")
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// textWriter accumulates text and tracks how many line breaks end it, so
// nested blocks do not stack separators.
type textWriter struct {
	sb     strings.Builder
	breaks int
}

func (w *textWriter) write(s string) {
	w.sb.WriteString(s)
	for _, r := range s {
		switch r {
		case '\n':
			w.breaks++
		case ' ', '\t':
		default:
			w.breaks = 0
		}
	}
}

// block ensures the text ends with at least n line breaks.
func (w *textWriter) block(n int) {
	if w.sb.Len() == 0 {
		return
	}
	for w.breaks < n {
		w.write("\n")
	}
}

func (w *textWriter) walk(n *xhtml.Node, pre bool) {
	switch n.Type {
	case xhtml.TextNode:
		switch {
		case pre:
			w.write(n.Data)
		case strings.TrimSpace(n.Data) == "":
			// Indentation between tags.
			w.write(" ")
		default:
			// Source line breaks are kept; runs are collapsed later.
			w.write(spaceRun.ReplaceAllString(n.Data, " "))
		}
		return
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return
	case xhtml.ElementNode:
		if skipped(n.DataAtom) {
			return
		}
		if n.DataAtom == atom.Br {
			w.write("\n")
			return
		}
	}

	breaks := blockBreaks(n)
	w.block(breaks)
	inPre := pre || n.DataAtom == atom.Pre
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, inPre)
	}
	w.block(breaks)

	if n.Type == xhtml.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
		w.write(" ")
	}
}

func skipped(a atom.Atom) bool {
	switch a {
	case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template,
		atom.Svg, atom.Iframe, atom.Object, atom.Canvas:
		return true
	}
	return false
}

// blockBreaks returns the line breaks that surround n.
func blockBreaks(n *xhtml.Node) int {
	if n.Type != xhtml.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Table, atom.Ul, atom.Ol, atom.Dl,
		atom.Section, atom.Article, atom.Hr:
		return 2
	case atom.Div, atom.Li, atom.Tr, atom.Dt, atom.Dd, atom.Header, atom.Footer,
		atom.Nav, atom.Main, atom.Aside, atom.Figure, atom.Figcaption, atom.Form,
		atom.Address, atom.Caption:
		return 1
	}
	return 0
}

package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// RecoveryKind classifies how a parsing irregularity was absorbed.
type RecoveryKind string

const (
	// RecoveryUnrecognizedLanguage reports a fence tag mapped to plain.
	RecoveryUnrecognizedLanguage RecoveryKind = "unrecognized_language"
	// RecoveryMalformedConstruct reports markup kept as literal text or
	// flattened into a simpler node.
	RecoveryMalformedConstruct RecoveryKind = "malformed_construct"
)

// Recovery describes one irregularity absorbed while importing markdown.
type Recovery struct {
	Kind   RecoveryKind
	Line   int
	Detail string
}

// Deserializer turns markdown into a document. It never fails: malformed
// input degrades to literal text.
type Deserializer struct {
	parser parser.Parser
	logger interfaces.Logger
}

// NewDeserializer builds a deserializer using the strikethrough dialect.
// A nil logger disables recovery logging.
func NewDeserializer(logger interfaces.Logger) *Deserializer {
	if logger == nil {
		logger = logging.NoOp()
	}
	engine := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	return &Deserializer{
		parser: engine.Parser(),
		logger: logger,
	}
}

// Deserialize parses markdown into a document.
func (d *Deserializer) Deserialize(markdown string) *document.Document {
	doc, _ := d.Inspect(markdown)
	return doc
}

// Inspect parses markdown and also returns the recoveries applied along the
// way. Recoveries are logged at debug level.
func (d *Deserializer) Inspect(markdown string) (*document.Document, []Recovery) {
	var recoveries []Recovery
	meta, body, err := SplitFrontMatter(markdown)
	if err != nil {
		recoveries = append(recoveries, Recovery{
			Kind:   RecoveryMalformedConstruct,
			Line:   1,
			Detail: err.Error(),
		})
		meta, body = nil, markdown
	}

	source := []byte(body)
	root := d.parser.Parse(text.NewReader(source))
	w := &astWalker{source: source}
	blocks := w.blocks(root)
	recoveries = append(recoveries, w.recoveries...)

	for _, r := range recoveries {
		d.logger.Debug("markdown.import.recovered",
			"kind", string(r.Kind),
			"line", r.Line,
			"detail", r.Detail,
		)
	}

	doc := document.New(blocks...)
	doc.FrontMatter = meta
	return doc, recoveries
}

type astWalker struct {
	source     []byte
	recoveries []Recovery
}

func (w *astWalker) recover(kind RecoveryKind, n ast.Node, detail string) {
	w.recoveries = append(w.recoveries, Recovery{
		Kind:   kind,
		Line:   w.lineOf(n),
		Detail: detail,
	})
}

func (w *astWalker) lineOf(n ast.Node) int {
	offset := -1
	for cur := n; cur != nil && offset < 0; cur = cur.Parent() {
		if cur.Type() == ast.TypeBlock {
			if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
				offset = lines.At(0).Start
			}
		}
		if t, ok := cur.(*ast.Text); ok {
			offset = t.Segment.Start
		}
	}
	if offset < 0 {
		return 0
	}
	return bytes.Count(w.source[:min(offset, len(w.source))], []byte("\n")) + 1
}

// blocks converts the block children of n.
func (w *astWalker) blocks(n ast.Node) []document.Block {
	var out []document.Block
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, w.block(child)...)
	}
	return out
}

func (w *astWalker) block(n ast.Node) []document.Block {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return w.paragraph(node)
	case *ast.Heading:
		children := document.CanonicalInlines(w.inlines(node))
		return []document.Block{&document.Heading{
			Level:    document.ClampHeadingLevel(node.Level),
			Children: children,
		}}
	case *ast.ThematicBreak:
		return []document.Block{&document.HorizontalRule{}}
	case *ast.FencedCodeBlock:
		return []document.Block{w.fencedCode(node)}
	case *ast.CodeBlock:
		return []document.Block{&document.CodeBlock{
			Language: document.LanguagePlain,
			Code:     w.codeLines(node),
		}}
	case *ast.Blockquote:
		return []document.Block{&document.Quote{Children: w.blocks(node)}}
	case *ast.List:
		return []document.Block{w.list(node)}
	case *ast.HTMLBlock:
		w.recover(RecoveryMalformedConstruct, node, "html block kept as text")
		content := strings.TrimRight(w.htmlBlock(node), "\n")
		if content == "" {
			return nil
		}
		return []document.Block{document.NewParagraph(document.Plain(content))}
	default:
		content := strings.TrimSpace(w.plainText(n))
		if content == "" {
			return nil
		}
		w.recover(RecoveryMalformedConstruct, n, "unsupported block "+n.Kind().String())
		return []document.Block{document.NewParagraph(document.Plain(content))}
	}
}

// paragraph converts a paragraph. Images at the top level of the paragraph
// become image blocks that split the surrounding text.
func (w *astWalker) paragraph(n ast.Node) []document.Block {
	var (
		out      []document.Block
		fragment []document.Inline
		split    bool
	)
	iw := w.newInlineWalker(n)
	flush := func(beforeImage bool) {
		children := document.CanonicalInlines(fragment)
		fragment = nil
		if split || beforeImage {
			children = trimSplitEdges(children, split, beforeImage)
			if isBlank(children) {
				return
			}
		}
		if len(children) > 0 {
			out = append(out, &document.Paragraph{Children: children})
		}
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if img, ok := child.(*ast.Image); ok {
			fragment = append(fragment, iw.flush()...)
			flush(true)
			out = append(out, &document.Image{
				Src: decodeInline(img.Destination),
				Alt: w.plainText(img),
			})
			split = true
			continue
		}
		iw.node(child)
	}
	fragment = append(fragment, iw.flush()...)
	flush(false)
	return out
}

// trimSplitEdges drops the blanks left next to an extracted image.
func trimSplitEdges(inlines []document.Inline, leading, trailing bool) []document.Inline {
	if len(inlines) == 0 {
		return inlines
	}
	if t, ok := inlines[0].(*document.Text); ok && leading {
		copied := *t
		copied.Content = strings.TrimLeft(copied.Content, " \t\n")
		inlines[0] = &copied
	}
	if t, ok := inlines[len(inlines)-1].(*document.Text); ok && trailing {
		copied := *t
		copied.Content = strings.TrimRight(copied.Content, " \t\n")
		inlines[len(inlines)-1] = &copied
	}
	return document.CanonicalInlines(inlines)
}

func isBlank(inlines []document.Inline) bool {
	for _, in := range inlines {
		if _, ok := in.(*document.Link); ok {
			return false
		}
	}
	return strings.TrimSpace(document.InlineText(inlines)) == ""
}

func (w *astWalker) fencedCode(n *ast.FencedCodeBlock) *document.CodeBlock {
	var tag string
	if n.Info != nil {
		tag = decodeInline(n.Language(w.source))
	}
	language, ok := document.LookupLanguage(tag)
	if !ok {
		w.recover(RecoveryUnrecognizedLanguage, n, "fence language "+tag+" mapped to plain")
	}
	return &document.CodeBlock{Language: language, Code: w.codeLines(n)}
}

func (w *astWalker) codeLines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.WriteString(strings.Repeat(" ", seg.Padding))
		b.Write(seg.Value(w.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (w *astWalker) htmlBlock(n *ast.HTMLBlock) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	if n.HasClosure() {
		b.Write(n.ClosureLine.Value(w.source))
	}
	return b.String()
}

func (w *astWalker) list(n *ast.List) *document.List {
	list := &document.List{Ordered: n.IsOrdered()}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if item, ok := child.(*ast.ListItem); ok {
			list.Items = append(list.Items, w.listItem(item))
		}
	}
	return list
}

// listItem maps text blocks and paragraphs to inline content and nested lists
// to lists. Any other block is flattened to its text.
func (w *astWalker) listItem(n *ast.ListItem) *document.ListItem {
	item := &document.ListItem{}
	var pending []document.Inline
	textBefore := false
	flush := func() {
		for _, in := range document.CanonicalInlines(pending) {
			item.Children = append(item.Children, in.(document.ItemContent))
		}
		pending = nil
	}
	appendText := func(inlines []document.Inline) {
		if len(inlines) == 0 {
			return
		}
		if textBefore && len(pending) > 0 {
			pending = append(pending, document.Plain("\n"))
		}
		pending = append(pending, inlines...)
		textBefore = true
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			appendText(w.inlines(node))
		case *ast.List:
			flush()
			textBefore = false
			item.Children = append(item.Children, w.list(node))
		case *ast.Heading:
			w.recover(RecoveryMalformedConstruct, node, "heading inside list item flattened")
			appendText(w.inlines(node))
		default:
			w.recover(RecoveryMalformedConstruct, node, node.Kind().String()+" inside list item flattened")
			if content := strings.TrimRight(w.plainText(node), "\n"); content != "" {
				appendText([]document.Inline{document.Plain(content)})
			}
		}
	}
	flush()
	return item
}

// plainText returns the decoded text of n and its descendants. Code blocks
// contribute their lines verbatim.
func (w *astWalker) plainText(n ast.Node) string {
	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		return w.codeLines(node)
	case *ast.CodeBlock:
		return w.codeLines(node)
	case *ast.HTMLBlock:
		return w.htmlBlock(node)
	}
	first := n.FirstChild()
	if first == nil {
		return ""
	}
	if first.Type() != ast.TypeBlock {
		return document.InlineText(w.inlines(n))
	}
	var parts []string
	for child := first; child != nil; child = child.NextSibling() {
		if text := w.plainText(child); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// inlines converts the inline children of n. Images degrade to their alt
// text.
func (w *astWalker) inlines(n ast.Node) []document.Inline {
	iw := w.newInlineWalker(n)
	iw.children(n)
	return iw.flush()
}

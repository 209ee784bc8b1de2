package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-richtext/internal/document"
)

// inlineWalker converts goldmark inline nodes into styled runs. Raw text is
// buffered per style and decoded on flush so escapes split across segments
// still resolve.
type inlineWalker struct {
	w         *astWalker
	style     document.Style
	underline int
	literal   map[ast.Node]bool

	pending      []byte
	pendingStyle document.Style
	out          []document.Inline
}

// newInlineWalker pairs the <u> and </u> tags found under container. Tags
// left unpaired are kept as literal text.
func (w *astWalker) newInlineWalker(container ast.Node) *inlineWalker {
	iw := &inlineWalker{w: w, literal: map[ast.Node]bool{}}
	var open []ast.Node
	_ = ast.Walk(container, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		raw, ok := n.(*ast.RawHTML)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch underlineTag(w.rawHTML(raw)) {
		case tagOpen:
			open = append(open, raw)
		case tagClose:
			if len(open) == 0 {
				iw.literal[raw] = true
				break
			}
			open = open[:len(open)-1]
		}
		return ast.WalkSkipChildren, nil
	})
	for _, n := range open {
		iw.literal[n] = true
	}
	return iw
}

type tagKind int

const (
	tagOther tagKind = iota
	tagOpen
	tagClose
)

func underlineTag(raw string) tagKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "<u>":
		return tagOpen
	case "</u>":
		return tagClose
	default:
		return tagOther
	}
}

func (w *astWalker) rawHTML(n *ast.RawHTML) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func (iw *inlineWalker) current() document.Style {
	s := iw.style
	s.Underline = iw.underline > 0
	return s
}

func (iw *inlineWalker) children(n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		iw.node(child)
	}
}

func (iw *inlineWalker) node(n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		raw := node.Segment.Value(iw.w.source)
		if hasLiteralDelimiters(raw) {
			iw.w.recover(RecoveryMalformedConstruct, node, "unmatched delimiter kept as text")
		}
		iw.appendRaw(raw)
		if node.SoftLineBreak() || node.HardLineBreak() {
			iw.appendRaw([]byte("\n"))
		}
	case *ast.String:
		iw.emit(string(node.Value))
	case *ast.CodeSpan:
		iw.flushPending()
		iw.out = append(iw.out, &document.Text{Content: iw.codeSpan(node), Code: true})
	case *ast.Emphasis:
		saved := iw.style
		if node.Level >= 2 {
			iw.style.Bold = true
		} else {
			iw.style.Italic = true
		}
		iw.children(node)
		iw.style = saved
	case *extast.Strikethrough:
		saved := iw.style
		iw.style.Strikethrough = true
		iw.children(node)
		iw.style = saved
	case *ast.Link:
		iw.flushPending()
		sub := &inlineWalker{w: iw.w, style: iw.style, underline: iw.underline, literal: iw.literal}
		sub.children(node)
		iw.underline = sub.underline
		iw.out = append(iw.out, &document.Link{
			Href:     decodeInline(node.Destination),
			Children: document.CanonicalInlines(sub.flush()),
		})
	case *ast.AutoLink:
		iw.flushPending()
		iw.out = append(iw.out, &document.Link{
			Href:     string(node.URL(iw.w.source)),
			Children: []document.Inline{iw.current().Run(string(node.Label(iw.w.source)))},
		})
	case *ast.Image:
		iw.w.recover(RecoveryMalformedConstruct, node, "nested image replaced by its alt text")
		iw.children(node)
	case *ast.RawHTML:
		raw := iw.w.rawHTML(node)
		if !iw.literal[node] {
			switch underlineTag(raw) {
			case tagOpen:
				iw.underline++
				return
			case tagClose:
				if iw.underline > 0 {
					iw.underline--
				}
				return
			}
		}
		iw.w.recover(RecoveryMalformedConstruct, node, "raw html kept as text")
		iw.emit(raw)
	default:
		iw.children(n)
	}
}

func (iw *inlineWalker) codeSpan(n *ast.CodeSpan) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(iw.w.source))
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

func (iw *inlineWalker) appendRaw(raw []byte) {
	style := iw.current()
	if len(iw.pending) > 0 && style != iw.pendingStyle {
		iw.flushPending()
	}
	iw.pendingStyle = style
	iw.pending = append(iw.pending, raw...)
}

// emit appends already decoded content in the current style.
func (iw *inlineWalker) emit(content string) {
	iw.flushPending()
	if content != "" {
		iw.out = append(iw.out, iw.current().Run(content))
	}
}

func (iw *inlineWalker) flushPending() {
	if len(iw.pending) == 0 {
		return
	}
	iw.out = append(iw.out, iw.pendingStyle.Run(decodeInline(iw.pending)))
	iw.pending = iw.pending[:0]
}

func (iw *inlineWalker) flush() []document.Inline {
	iw.flushPending()
	out := iw.out
	iw.out = nil
	return out
}

// hasLiteralDelimiters reports unescaped emphasis or code delimiters that
// the parser left as text.
func hasLiteralDelimiters(raw []byte) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '`':
			return true
		case '*', '~':
			if i+1 < len(raw) && raw[i+1] == raw[i] {
				return true
			}
		}
	}
	return false
}

package document

import "strings"

// Walk visits every node depth-first in document order. Returning false from
// fn skips the node's children.
func Walk(blocks []Block, fn func(Node) bool) {
	for _, b := range blocks {
		walkNode(b, fn)
	}
}

func walkNode(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Paragraph:
		walkInlines(v.Children, fn)
	case *Heading:
		walkInlines(v.Children, fn)
	case *Link:
		walkInlines(v.Children, fn)
	case *Quote:
		Walk(v.Children, fn)
	case *List:
		for _, item := range v.Items {
			walkNode(item, fn)
		}
	case *ListItem:
		for _, child := range v.Children {
			walkNode(child, fn)
		}
	}
}

func walkInlines(inlines []Inline, fn func(Node) bool) {
	for _, in := range inlines {
		walkNode(in, fn)
	}
}

// InlineText concatenates the text content of inline nodes.
func InlineText(inlines []Inline) string {
	var b strings.Builder
	walkInlines(inlines, func(n Node) bool {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.Content)
		}
		return true
	})
	return b.String()
}

// TextContent concatenates the visible text of blocks, one line per block.
func TextContent(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		var sb strings.Builder
		walkNode(b, func(n Node) bool {
			switch v := n.(type) {
			case *Text:
				sb.WriteString(v.Content)
			case *CodeBlock:
				sb.WriteString(v.Code)
			case *Image:
				sb.WriteString(v.Alt)
			}
			return true
		})
		if text := sb.String(); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

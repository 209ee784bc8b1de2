package document

import "maps"

// CloneBlock deep-copies a block.
func CloneBlock(b Block) Block {
	switch n := b.(type) {
	case *Paragraph:
		return &Paragraph{Children: CloneInlines(n.Children)}
	case *Heading:
		return &Heading{Level: n.Level, Children: CloneInlines(n.Children)}
	case *List:
		return cloneList(n)
	case *Quote:
		children := make([]Block, len(n.Children))
		for i, child := range n.Children {
			children[i] = CloneBlock(child)
		}
		return &Quote{Children: children}
	case *CodeBlock:
		copied := *n
		return &copied
	case *Image:
		copied := *n
		return &copied
	case *HorizontalRule:
		return &HorizontalRule{}
	default:
		return b
	}
}

// CloneInlines deep-copies a run of inline nodes.
func CloneInlines(inlines []Inline) []Inline {
	if inlines == nil {
		return nil
	}
	out := make([]Inline, len(inlines))
	for i, in := range inlines {
		out[i] = cloneInline(in)
	}
	return out
}

func cloneInline(in Inline) Inline {
	switch n := in.(type) {
	case *Text:
		copied := *n
		return &copied
	case *Link:
		return &Link{Href: n.Href, Children: CloneInlines(n.Children)}
	default:
		return in
	}
}

func cloneList(l *List) *List {
	items := make([]*ListItem, len(l.Items))
	for i, item := range l.Items {
		items[i] = cloneItem(item)
	}
	return &List{Ordered: l.Ordered, Items: items}
}

func cloneItem(item *ListItem) *ListItem {
	if item == nil {
		return &ListItem{}
	}
	var children []ItemContent
	if item.Children != nil {
		children = make([]ItemContent, len(item.Children))
	}
	for i, child := range item.Children {
		switch n := child.(type) {
		case *List:
			children[i] = cloneList(n)
		case Inline:
			children[i] = cloneInline(n).(ItemContent)
		default:
			children[i] = child
		}
	}
	return &ListItem{Children: children}
}

func cloneFrontMatter(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return maps.Clone(src)
}

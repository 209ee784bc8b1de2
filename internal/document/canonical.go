package document

import (
	"reflect"
	"strings"
)

// Canonical returns a deep copy of blocks in the form produced by a markdown
// round trip: adjacent runs with equal styles are merged, empty runs and empty
// paragraphs are dropped, code runs lose every other flag and an empty code
// language becomes plain. Code runs are single line: a newline inside one
// becomes a space, as it does in a markdown code span.
func Canonical(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if c := canonicalBlock(b); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether two block sequences are structurally equal once both
// are in canonical form.
func Equal(a, b []Block) bool {
	return reflect.DeepEqual(Canonical(a), Canonical(b))
}

func canonicalBlock(b Block) Block {
	switch n := b.(type) {
	case *Paragraph:
		children := CanonicalInlines(n.Children)
		if len(children) == 0 {
			return nil
		}
		return &Paragraph{Children: children}
	case *Heading:
		return &Heading{Level: ClampHeadingLevel(n.Level), Children: CanonicalInlines(n.Children)}
	case *List:
		return canonicalList(n)
	case *Quote:
		return &Quote{Children: Canonical(n.Children)}
	case *CodeBlock:
		lang := n.Language
		if lang == "" {
			lang = LanguagePlain
		}
		return &CodeBlock{Language: lang, Code: n.Code}
	case nil:
		return nil
	default:
		return CloneBlock(b)
	}
}

// CanonicalInlines merges and prunes a run of inline nodes.
func CanonicalInlines(inlines []Inline) []Inline {
	var out []Inline
	for _, in := range inlines {
		switch n := in.(type) {
		case *Text:
			if n.Content == "" {
				continue
			}
			run := canonicalRun(n)
			if last, ok := lastText(out); ok && last.Style() == run.Style() {
				last.Content += run.Content
				continue
			}
			out = append(out, run)
		case *Link:
			out = append(out, &Link{Href: n.Href, Children: CanonicalInlines(n.Children)})
		}
	}
	return out
}

func canonicalRun(t *Text) *Text {
	if t.Code {
		return &Text{Content: strings.ReplaceAll(t.Content, "\n", " "), Code: true}
	}
	copied := *t
	return &copied
}

func lastText(inlines []Inline) (*Text, bool) {
	if len(inlines) == 0 {
		return nil, false
	}
	t, ok := inlines[len(inlines)-1].(*Text)
	return t, ok
}

func canonicalList(l *List) *List {
	items := make([]*ListItem, 0, len(l.Items))
	for _, item := range l.Items {
		items = append(items, canonicalItem(item))
	}
	return &List{Ordered: l.Ordered, Items: items}
}

func canonicalItem(item *ListItem) *ListItem {
	out := &ListItem{}
	if item == nil {
		return out
	}
	var pending []Inline
	flush := func() {
		for _, in := range CanonicalInlines(pending) {
			out.Children = append(out.Children, in.(ItemContent))
		}
		pending = nil
	}
	for _, child := range item.Children {
		switch n := child.(type) {
		case *List:
			flush()
			out.Children = append(out.Children, canonicalList(n))
		case Inline:
			pending = append(pending, n)
		}
	}
	flush()
	return out
}

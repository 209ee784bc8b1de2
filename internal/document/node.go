package document

// Kind names a node variant. The values double as the JSON discriminator.
type Kind string

const (
	KindText           Kind = "text"
	KindParagraph      Kind = "paragraph"
	KindHeading        Kind = "heading"
	KindList           Kind = "list"
	KindListItem       Kind = "list_item"
	KindQuote          Kind = "quote"
	KindCodeBlock      Kind = "code_block"
	KindImage          Kind = "image"
	KindLink           Kind = "link"
	KindHorizontalRule Kind = "horizontal_rule"
)

// Node is implemented by every variant of the tree.
type Node interface {
	Kind() Kind
}

// Block is a node allowed at the document root and inside quotes.
type Block interface {
	Node
	block()
}

// Inline is a node allowed inside paragraphs, headings, links and list items.
type Inline interface {
	Node
	inline()
}

// ItemContent is a node allowed as a direct child of a list item: inline runs
// and nested lists.
type ItemContent interface {
	Node
	itemContent()
}

// Text is a styled run of characters.
type Text struct {
	Content       string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Code          bool
}

// Style returns a copy of the run's flags applied to other content.
func (t *Text) Style() Style {
	return Style{
		Bold:          t.Bold,
		Italic:        t.Italic,
		Underline:     t.Underline,
		Strikethrough: t.Strikethrough,
		Code:          t.Code,
	}
}

// Style groups the formatting flags of a text run.
type Style struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Code          bool
}

// Run builds a text run carrying the style.
func (s Style) Run(content string) *Text {
	return &Text{
		Content:       content,
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
		Code:          s.Code,
	}
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Children []Inline
}

// Heading is a section title; Level is 1, 2 or 3.
type Heading struct {
	Level    int
	Children []Inline
}

// List is an ordered or bulleted sequence of items.
type List struct {
	Ordered bool
	Items   []*ListItem
}

// ListItem holds inline content followed by optional nested lists.
type ListItem struct {
	Children []ItemContent
}

// Quote wraps nested blocks.
type Quote struct {
	Children []Block
}

// CodeBlock is a fenced block of verbatim code tagged with a language.
type CodeBlock struct {
	Language string
	Code     string
}

// Image references an http(s) URL or an embedded data URI.
type Image struct {
	Src string
	Alt string
}

// Link wraps inline content pointing at Href.
type Link struct {
	Href     string
	Children []Inline
}

// HorizontalRule separates sections. The blank field gives the type a
// non-zero size so distinct rules never share an address.
type HorizontalRule struct {
	_ byte
}

func (*Text) Kind() Kind           { return KindText }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Heading) Kind() Kind        { return KindHeading }
func (*List) Kind() Kind           { return KindList }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*Quote) Kind() Kind          { return KindQuote }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }
func (*Image) Kind() Kind          { return KindImage }
func (*Link) Kind() Kind           { return KindLink }
func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }

func (*Paragraph) block()      {}
func (*Heading) block()        {}
func (*List) block()           {}
func (*Quote) block()          {}
func (*CodeBlock) block()      {}
func (*Image) block()          {}
func (*HorizontalRule) block() {}

func (*Text) inline() {}
func (*Link) inline() {}

func (*Text) itemContent() {}
func (*Link) itemContent() {}
func (*List) itemContent() {}

var (
	_ Block       = (*Paragraph)(nil)
	_ Block       = (*Heading)(nil)
	_ Block       = (*List)(nil)
	_ Block       = (*Quote)(nil)
	_ Block       = (*CodeBlock)(nil)
	_ Block       = (*Image)(nil)
	_ Block       = (*HorizontalRule)(nil)
	_ Inline      = (*Text)(nil)
	_ Inline      = (*Link)(nil)
	_ ItemContent = (*Text)(nil)
	_ ItemContent = (*Link)(nil)
	_ ItemContent = (*List)(nil)
)

// Plain returns an unstyled text run.
func Plain(content string) *Text {
	return &Text{Content: content}
}

// NewParagraph builds a paragraph from inline children.
func NewParagraph(children ...Inline) *Paragraph {
	return &Paragraph{Children: children}
}

// NewHeading builds a heading, clamping level into 1..3.
func NewHeading(level int, children ...Inline) *Heading {
	return &Heading{Level: ClampHeadingLevel(level), Children: children}
}

// NewCodeBlock builds a code block with a normalized language tag.
func NewCodeBlock(language, code string) *CodeBlock {
	return &CodeBlock{Language: NormalizeLanguage(language), Code: code}
}

// NewItem builds a list item.
func NewItem(children ...ItemContent) *ListItem {
	return &ListItem{Children: children}
}

// ClampHeadingLevel maps any level into the supported 1..3 range.
func ClampHeadingLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	default:
		return level
	}
}

package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaSource []byte

const schemaResource = "richtext-document.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

type wireDocument struct {
	FrontMatter map[string]any `json:"front_matter,omitempty"`
	Blocks      []wireNode     `json:"blocks"`
}

type wireNode struct {
	Type          Kind       `json:"type"`
	Content       string     `json:"content,omitempty"`
	Bold          bool       `json:"bold,omitempty"`
	Italic        bool       `json:"italic,omitempty"`
	Underline     bool       `json:"underline,omitempty"`
	Strikethrough bool       `json:"strikethrough,omitempty"`
	Code          bool       `json:"code,omitempty"`
	Level         int        `json:"level,omitempty"`
	Ordered       bool       `json:"ordered,omitempty"`
	Language      string     `json:"language,omitempty"`
	Src           string     `json:"src,omitempty"`
	Alt           string     `json:"alt,omitempty"`
	Href          string     `json:"href,omitempty"`
	Children      []wireNode `json:"children,omitempty"`
	Items         []wireNode `json:"items,omitempty"`
}

// wireCodeBlock keeps "code" as a string field; wireNode already uses the
// name for the inline code flag.
type wireCodeBlock struct {
	Type     Kind   `json:"type"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

// MarshalJSON renders the document as structured data for host inspection.
func (d *Document) MarshalJSON() ([]byte, error) {
	blocks := make([]json.RawMessage, 0, len(d.blocks))
	for _, b := range d.blocks {
		raw, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, raw)
	}
	return json.Marshal(struct {
		FrontMatter map[string]any    `json:"front_matter,omitempty"`
		Blocks      []json.RawMessage `json:"blocks"`
	}{
		FrontMatter: d.FrontMatter,
		Blocks:      blocks,
	})
}

// DecodeJSON validates data against the document schema and builds a
// document from it.
func DecodeJSON(data []byte) (*Document, error) {
	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("document: decode json: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, newSchemaError(err)
	}

	var raw struct {
		FrontMatter map[string]any    `json:"front_matter"`
		Blocks      []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("document: decode json: %w", err)
	}
	blocks := make([]Block, 0, len(raw.Blocks))
	for _, msg := range raw.Blocks {
		b, err := unmarshalBlock(msg)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	doc := New(blocks...)
	doc.FrontMatter = raw.FrontMatter
	return doc, nil
}

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("document: load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaResource)
	})
	return compiledSchema, schemaErr
}

func marshalBlock(b Block) (json.RawMessage, error) {
	switch n := b.(type) {
	case *CodeBlock:
		return json.Marshal(wireCodeBlock{Type: KindCodeBlock, Language: n.Language, Code: n.Code})
	case *Quote:
		children := make([]json.RawMessage, 0, len(n.Children))
		for _, child := range n.Children {
			raw, err := marshalBlock(child)
			if err != nil {
				return nil, err
			}
			children = append(children, raw)
		}
		return json.Marshal(struct {
			Type     Kind              `json:"type"`
			Children []json.RawMessage `json:"children"`
		}{KindQuote, children})
	default:
		node, err := toWire(b)
		if err != nil {
			return nil, err
		}
		return json.Marshal(node)
	}
}

func toWire(n Node) (wireNode, error) {
	switch v := n.(type) {
	case *Text:
		return wireNode{
			Type:          KindText,
			Content:       v.Content,
			Bold:          v.Bold,
			Italic:        v.Italic,
			Underline:     v.Underline,
			Strikethrough: v.Strikethrough,
			Code:          v.Code,
		}, nil
	case *Link:
		children, err := inlinesToWire(v.Children)
		return wireNode{Type: KindLink, Href: v.Href, Children: children}, err
	case *Paragraph:
		children, err := inlinesToWire(v.Children)
		return wireNode{Type: KindParagraph, Children: children}, err
	case *Heading:
		children, err := inlinesToWire(v.Children)
		return wireNode{Type: KindHeading, Level: ClampHeadingLevel(v.Level), Children: children}, err
	case *List:
		items := make([]wireNode, 0, len(v.Items))
		for _, item := range v.Items {
			w, err := toWire(item)
			if err != nil {
				return wireNode{}, err
			}
			items = append(items, w)
		}
		return wireNode{Type: KindList, Ordered: v.Ordered, Items: items}, nil
	case *ListItem:
		children := make([]wireNode, 0, len(v.Children))
		for _, child := range v.Children {
			w, err := toWire(child)
			if err != nil {
				return wireNode{}, err
			}
			children = append(children, w)
		}
		return wireNode{Type: KindListItem, Children: children}, nil
	case *Image:
		return wireNode{Type: KindImage, Src: v.Src, Alt: v.Alt}, nil
	case *HorizontalRule:
		return wireNode{Type: KindHorizontalRule}, nil
	default:
		return wireNode{}, fmt.Errorf("document: cannot encode %T", n)
	}
}

func inlinesToWire(inlines []Inline) ([]wireNode, error) {
	out := make([]wireNode, 0, len(inlines))
	for _, in := range inlines {
		w, err := toWire(in)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func unmarshalBlock(msg json.RawMessage) (Block, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil, fmt.Errorf("document: decode block: %w", err)
	}
	switch head.Type {
	case KindCodeBlock:
		var cb wireCodeBlock
		if err := json.Unmarshal(msg, &cb); err != nil {
			return nil, fmt.Errorf("document: decode code block: %w", err)
		}
		return NewCodeBlock(cb.Language, cb.Code), nil
	case KindQuote:
		var q struct {
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(msg, &q); err != nil {
			return nil, fmt.Errorf("document: decode quote: %w", err)
		}
		quote := &Quote{}
		for _, child := range q.Children {
			b, err := unmarshalBlock(child)
			if err != nil {
				return nil, err
			}
			quote.Children = append(quote.Children, b)
		}
		return quote, nil
	}

	var w wireNode
	if err := json.Unmarshal(msg, &w); err != nil {
		return nil, fmt.Errorf("document: decode %s: %w", head.Type, err)
	}
	n, err := fromWire(w)
	if err != nil {
		return nil, err
	}
	b, ok := n.(Block)
	if !ok {
		return nil, fmt.Errorf("document: %s is not a block", w.Type)
	}
	return b, nil
}

func fromWire(w wireNode) (Node, error) {
	switch w.Type {
	case KindText:
		return &Text{
			Content:       w.Content,
			Bold:          w.Bold,
			Italic:        w.Italic,
			Underline:     w.Underline,
			Strikethrough: w.Strikethrough,
			Code:          w.Code,
		}, nil
	case KindLink:
		children, err := inlinesFromWire(w.Children)
		return &Link{Href: w.Href, Children: children}, err
	case KindParagraph:
		children, err := inlinesFromWire(w.Children)
		return &Paragraph{Children: children}, err
	case KindHeading:
		children, err := inlinesFromWire(w.Children)
		return &Heading{Level: ClampHeadingLevel(w.Level), Children: children}, err
	case KindList:
		list := &List{Ordered: w.Ordered}
		for _, item := range w.Items {
			n, err := fromWire(item)
			if err != nil {
				return nil, err
			}
			li, ok := n.(*ListItem)
			if !ok {
				return nil, fmt.Errorf("document: list contains %s", item.Type)
			}
			list.Items = append(list.Items, li)
		}
		return list, nil
	case KindListItem:
		item := &ListItem{}
		for _, child := range w.Children {
			n, err := fromWire(child)
			if err != nil {
				return nil, err
			}
			content, ok := n.(ItemContent)
			if !ok {
				return nil, fmt.Errorf("document: list item contains %s", child.Type)
			}
			item.Children = append(item.Children, content)
		}
		return item, nil
	case KindImage:
		return &Image{Src: w.Src, Alt: w.Alt}, nil
	case KindHorizontalRule:
		return &HorizontalRule{}, nil
	default:
		return nil, fmt.Errorf("document: unknown node type %q", w.Type)
	}
}

func inlinesFromWire(nodes []wireNode) ([]Inline, error) {
	var out []Inline
	for _, w := range nodes {
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		in, ok := n.(Inline)
		if !ok {
			return nil, fmt.Errorf("document: %s is not inline", w.Type)
		}
		out = append(out, in)
	}
	return out, nil
}

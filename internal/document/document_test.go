package document_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-richtext/internal/document"
)

func TestDocumentInsertAfterKeepsHandlesStable(t *testing.T) {
	first := document.NewParagraph(document.Plain("one"))
	second := document.NewParagraph(document.Plain("two"))
	doc := document.New(first, second)

	firstID, ok := doc.ID(first)
	if !ok {
		t.Fatalf("expected handle for attached block")
	}
	secondID, _ := doc.ID(second)

	img := &document.Image{Src: "https://example.com/a.png", Alt: "a"}
	imgID, err := doc.InsertAfter(firstID, img)
	if err != nil {
		t.Fatalf("InsertAfter returned error: %v", err)
	}

	blocks := doc.Blocks()
	if len(blocks) != 3 || blocks[1] != img {
		t.Fatalf("expected image at index 1, got %#v", blocks)
	}
	if got, ok := doc.Lookup(secondID); !ok || got != second {
		t.Fatalf("expected second handle to survive insertion")
	}
	if got, ok := doc.Lookup(imgID); !ok || got != img {
		t.Fatalf("expected image handle to resolve")
	}
}

func TestDocumentInsertAfterStart(t *testing.T) {
	doc := document.New(document.NewParagraph(document.Plain("body")))
	rule := &document.HorizontalRule{}
	if _, err := doc.InsertAfter(document.Start, rule); err != nil {
		t.Fatalf("InsertAfter(Start) returned error: %v", err)
	}
	if doc.Blocks()[0] != rule {
		t.Fatalf("expected rule at the top of the document")
	}
}

func TestDocumentRemoveInvalidatesHandle(t *testing.T) {
	target := document.NewParagraph(document.Plain("gone"))
	doc := document.New(target)
	id, _ := doc.ID(target)

	if err := doc.Remove(id); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if doc.Contains(id) {
		t.Fatalf("expected removed handle to stop resolving")
	}
	_, err := doc.InsertAfter(id, document.NewParagraph())
	if !errors.Is(err, document.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if !doc.Contains(document.Start) {
		t.Fatalf("expected Start to always resolve")
	}
}

func TestDocumentRemoveQuoteForgetsChildren(t *testing.T) {
	inner := document.NewParagraph(document.Plain("quoted"))
	quote := &document.Quote{Children: []document.Block{inner}}
	doc := document.New(quote)

	innerID, ok := doc.ID(inner)
	if !ok {
		t.Fatalf("expected nested block to receive a handle")
	}
	quoteID, _ := doc.ID(quote)
	if err := doc.Remove(quoteID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if doc.Contains(innerID) {
		t.Fatalf("expected nested handle to be invalidated")
	}
}

func TestDocumentInsertAfterNestedAnchor(t *testing.T) {
	inner := document.NewParagraph(document.Plain("quoted"))
	quote := &document.Quote{Children: []document.Block{inner}}
	doc := document.New(quote)
	innerID, _ := doc.ID(inner)

	added := document.NewParagraph(document.Plain("added"))
	if _, err := doc.InsertAfter(innerID, added); err != nil {
		t.Fatalf("InsertAfter returned error: %v", err)
	}
	if len(quote.Children) != 2 || quote.Children[1] != added {
		t.Fatalf("expected insertion inside the quote, got %#v", quote.Children)
	}
}

func TestDocumentReplaceTransfersHandle(t *testing.T) {
	old := document.NewParagraph(document.Plain("old"))
	doc := document.New(old)
	id, _ := doc.ID(old)

	replacement := document.NewHeading(2, document.Plain("new"))
	if err := doc.Replace(id, replacement); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	got, ok := doc.Lookup(id)
	if !ok || got != replacement {
		t.Fatalf("expected handle to resolve to replacement, got %#v", got)
	}
}

func TestDocumentRejectsAttachedAndNilBlocks(t *testing.T) {
	p := document.NewParagraph(document.Plain("x"))
	doc := document.New(p)

	if _, err := doc.Append(p); !errors.Is(err, document.ErrBlockAttached) {
		t.Fatalf("expected ErrBlockAttached, got %v", err)
	}
	if _, err := doc.Append(nil); !errors.Is(err, document.ErrNilBlock) {
		t.Fatalf("expected ErrNilBlock, got %v", err)
	}
}

func TestDocumentCloneIsDeepAndMirrorsHandles(t *testing.T) {
	text := document.Plain("original")
	p := document.NewParagraph(text)
	doc := document.New(p)
	doc.FrontMatter = map[string]any{"title": "Doc"}
	id, _ := doc.ID(p)

	clone := doc.Clone()
	text.Content = "mutated"
	doc.FrontMatter["title"] = "Changed"

	copied, ok := clone.Lookup(id)
	if !ok {
		t.Fatalf("expected clone to resolve original handle")
	}
	if copied == p {
		t.Fatalf("expected clone to hold a distinct block")
	}
	if got := document.InlineText(copied.(*document.Paragraph).Children); got != "original" {
		t.Fatalf("expected clone text to be unchanged, got %q", got)
	}
	if clone.FrontMatter["title"] != "Doc" {
		t.Fatalf("expected cloned front matter, got %v", clone.FrontMatter)
	}
}

func TestDocumentRestore(t *testing.T) {
	doc := document.New(document.NewParagraph(document.Plain("keep")))
	snapshot := doc.Clone()

	doc.Reset(nil)
	if !doc.IsEmpty() {
		t.Fatalf("expected reset document to be empty")
	}
	doc.Restore(snapshot)
	if got := doc.TextContent(); got != "keep" {
		t.Fatalf("expected restored text, got %q", got)
	}
}

func TestDocumentIsEmpty(t *testing.T) {
	cases := []struct {
		name   string
		blocks []document.Block
		want   bool
	}{
		{name: "no blocks", want: true},
		{name: "empty paragraph", blocks: []document.Block{document.NewParagraph()}, want: true},
		{name: "text", blocks: []document.Block{document.NewParagraph(document.Plain("x"))}},
		{name: "image", blocks: []document.Block{&document.Image{Src: "https://example.com/x.png"}}},
		{name: "rule", blocks: []document.Block{&document.HorizontalRule{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := document.New(tc.blocks...).IsEmpty(); got != tc.want {
				t.Fatalf("IsEmpty() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDistinctRulesHaveDistinctHandles(t *testing.T) {
	a, b := &document.HorizontalRule{}, &document.HorizontalRule{}
	doc := document.New(a, b)
	idA, _ := doc.ID(a)
	idB, _ := doc.ID(b)
	if idA == idB {
		t.Fatalf("expected distinct handles for distinct rules")
	}
}

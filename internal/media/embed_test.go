package media_test

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/media"
)

func TestEmbedRemoteImagesReplacesNodes(t *testing.T) {
	fetcher := &countingFetcher{data: encodePNG(t, solidImage(4, 4, color.White))}
	n := newNormalizer(t, media.DefaultConfig(), media.WithFetcher(fetcher))

	remote := &document.Image{Src: "https://example.com/a.png", Alt: "a"}
	quoted := &document.Image{Src: "http://example.com/b.png"}
	embedded := &document.Image{Src: "data:image/png;base64,AAAA"}
	doc := document.New(remote, &document.Quote{Children: []document.Block{quoted}}, embedded)

	count, err := media.EmbedRemoteImages(context.Background(), n, doc)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if count != 2 || fetcher.calls != 2 {
		t.Fatalf("expected 2 embedded images, got %d (fetches %d)", count, fetcher.calls)
	}
	if remote.Src != "https://example.com/a.png" {
		t.Fatalf("expected original node to stay untouched")
	}
	blocks := doc.Blocks()
	first := blocks[0].(*document.Image)
	if first.Alt != "a" || first.Src[:15] != "data:image/jpeg" {
		t.Fatalf("unexpected embedded image %#v", first)
	}
	inner := blocks[1].(*document.Quote).Children[0].(*document.Image)
	if inner == quoted {
		t.Fatalf("expected quoted image to be replaced")
	}
	if blocks[2] != embedded {
		t.Fatalf("expected data uri image to be kept")
	}
}

func TestEmbedRemoteImagesLeavesDocumentOnFailure(t *testing.T) {
	fetcher := &countingFetcher{err: media.ErrImageFetch}
	n := newNormalizer(t, media.DefaultConfig(), media.WithFetcher(fetcher))

	img := &document.Image{Src: "https://example.com/a.png"}
	doc := document.New(img)

	if _, err := media.EmbedRemoteImages(context.Background(), n, doc); !errors.Is(err, media.ErrImageFetch) {
		t.Fatalf("expected ErrImageFetch, got %v", err)
	}
	if doc.Blocks()[0] != img {
		t.Fatalf("expected document unchanged after failure")
	}
}

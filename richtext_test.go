package richtext_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-richtext"
)

func newModule(t *testing.T) *richtext.Module {
	t.Helper()
	module, err := richtext.New(richtext.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func TestModuleRoundTripsMarkdown(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	doc, recoveries, err := module.Import(ctx, "# Title\n\nSome **bold** text")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(recoveries) != 0 {
		t.Fatalf("expected no recoveries, got %v", recoveries)
	}
	out, err := module.Export(ctx, doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out != "# Title\n\nSome **bold** text" {
		t.Fatalf("unexpected markdown %q", out)
	}
}

func TestModuleDocumentJSONRoundTrip(t *testing.T) {
	module := newModule(t)
	doc, _, err := module.Import(context.Background(), "> quoted\n\n1. one\n2. two")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := richtext.DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := module.Export(context.Background(), decoded)
	want, _ := module.Export(context.Background(), doc)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if _, err := richtext.DecodeDocument([]byte(`{"blocks":[{"type":"table"}]}`)); !errors.Is(err, richtext.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestModuleNormalizeImageSurfacesCategory(t *testing.T) {
	module := newModule(t)

	_, err := module.NormalizeImage(context.Background(), richtext.FromUpload([]byte("not an image"), "image/png"))
	if !errors.Is(err, richtext.ErrUnsupportedImageFormat) {
		t.Fatalf("expected ErrUnsupportedImageFormat, got %v", err)
	}
	if !goerrors.IsCategory(err, richtext.CategoryImage) {
		t.Fatalf("expected image category, got %v", err)
	}
}

func TestModulePreviewAndOutline(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	html, err := module.Preview(ctx, "## Setup", richtext.RenderOptions{})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(string(html), "<h2") {
		t.Fatalf("expected heading markup, got %q", html)
	}

	doc, _, _ := module.Import(ctx, "# Guide\n\n## Setup")
	outline := module.Outline(doc)
	if len(outline) != 2 || outline[1].Anchor != "setup" || outline[1].Level != 2 {
		t.Fatalf("unexpected outline %+v", outline)
	}
}

func TestModuleSessionUsesConfiguredOptions(t *testing.T) {
	cfg := richtext.DefaultConfig()
	cfg.Editor.Placeholder = "Start typing"
	module, err := richtext.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	session, err := module.OpenSession(module.SessionOptions(), nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer session.Close()

	if placeholder, shown := session.Placeholder(); !shown || placeholder != "Start typing" {
		t.Fatalf("expected placeholder to be shown, got %q %v", placeholder, shown)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := richtext.DefaultConfig()
	cfg.Features.RemoteImages = false
	cfg.Features.ImageCache = true

	if _, err := richtext.New(cfg); !errors.Is(err, richtext.ErrImageCacheRequiresRemoteImages) {
		t.Fatalf("expected ErrImageCacheRequiresRemoteImages, got %v", err)
	}
}

package richtext

import (
	"context"

	"github.com/goliatone/go-richtext/internal/di"
	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/editor"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

type (
	// Document is the rich-text tree edited by a session.
	Document = document.Document
	// OutlineEntry is one heading of a document outline.
	OutlineEntry = document.OutlineEntry
	// Recovery reports an irregularity absorbed while importing markdown.
	Recovery = markdown.Recovery

	Session        = editor.Session
	SessionOptions = editor.Options
	SessionOption  = editor.SessionOption
	Emitter        = editor.Emitter
	Edit           = editor.Edit
	ImageRequest   = editor.ImageRequest
	ImageResult    = editor.ImageResult

	// ImageSource describes an upload, URL or data URI awaiting normalization.
	ImageSource = media.Source
	// NormalizedImage is an image ready to be embedded as a data URI.
	NormalizedImage = media.Result

	RenderOptions = interfaces.RenderOptions
)

var (
	FromUpload  = media.FromUpload
	FromURL     = media.FromURL
	FromDataURI = media.FromDataURI
)

// Module is the top level façade over the conversion engine.
type Module struct {
	container *di.Container
}

// New constructs a module using cfg and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// SessionOptions returns session defaults taken from the editor config.
func (m *Module) SessionOptions() SessionOptions {
	return m.container.EditorOptions()
}

// OpenSession starts an editing session. emit receives the markdown of
// every settled edit; it may be nil.
func (m *Module) OpenSession(opts SessionOptions, emit Emitter, sessionOpts ...SessionOption) (*Session, error) {
	return m.container.OpenSession(opts, emit, sessionOpts...)
}

// Import parses markdown into a document. Malformed input degrades to
// literal text and is reported through the returned recoveries.
func (m *Module) Import(ctx context.Context, source string) (*Document, []Recovery, error) {
	return m.container.MarkdownService().Import(ctx, source)
}

// Export serializes doc as markdown.
func (m *Module) Export(ctx context.Context, doc *Document) (string, error) {
	return m.container.MarkdownService().Export(ctx, doc)
}

// Normalize re-emits markdown in the canonical dialect.
func (m *Module) Normalize(ctx context.Context, source string) (string, error) {
	return m.container.MarkdownService().Normalize(ctx, source)
}

// Preview renders markdown as HTML using opts over the configured defaults.
func (m *Module) Preview(ctx context.Context, source string, opts RenderOptions) ([]byte, error) {
	return m.container.MarkdownService().Render(ctx, []byte(source), opts)
}

// NormalizeImage runs src through the image pipeline. Failures carry the
// image category.
func (m *Module) NormalizeImage(ctx context.Context, src ImageSource) (*NormalizedImage, error) {
	result, err := m.container.Normalizer().Normalize(ctx, src)
	if err != nil {
		return nil, SurfaceError(err)
	}
	return result, nil
}

// EmbedRemoteImages replaces every http(s) image of doc with a normalized
// data URI copy. doc is left untouched when any image fails.
func (m *Module) EmbedRemoteImages(ctx context.Context, doc *Document) (int, error) {
	n, err := media.EmbedRemoteImages(ctx, m.container.Normalizer(), doc)
	return n, SurfaceError(err)
}

// Outline lists the root headings of doc with unique anchors.
func (m *Module) Outline(doc *Document) []OutlineEntry {
	if doc == nil {
		return nil
	}
	return document.Outline(doc.Blocks())
}

// DecodeDocument parses the JSON produced by Document.MarshalJSON after
// validating it against the document schema.
func DecodeDocument(data []byte) (*Document, error) {
	return document.DecodeJSON(data)
}

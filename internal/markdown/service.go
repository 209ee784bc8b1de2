package markdown

import (
	"context"
	"errors"

	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// ErrNilDocument rejects exporting a nil document.
var ErrNilDocument = errors.New("markdown service: document is nil")

// Config controls how the markdown service imports, exports and previews.
type Config struct {
	Preview interfaces.RenderOptions
	Logger  interfaces.Logger
}

// Service bundles the deserializer, serializer and preview renderer behind
// context-aware calls.
type Service struct {
	cfg          Config
	deserializer *Deserializer
	renderer     interfaces.MarkdownRenderer
	logger       interfaces.Logger
}

// NewService constructs a markdown service. When renderer is nil a goldmark
// previewer with cfg.Preview defaults is created.
func NewService(cfg Config, renderer interfaces.MarkdownRenderer) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if renderer == nil {
		renderer = NewPreviewer(cfg.Preview)
	}
	return &Service{
		cfg:          cfg,
		deserializer: NewDeserializer(logger),
		renderer:     renderer,
		logger:       logger,
	}
}

// Import parses markdown into a document together with the recoveries that
// were applied.
func (s *Service) Import(ctx context.Context, markdown string) (*document.Document, []Recovery, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	doc, recoveries := s.deserializer.Inspect(markdown)
	s.logger.Debug("markdown.import.completed",
		"blocks", doc.Len(),
		"recoveries", len(recoveries),
	)
	return doc, recoveries, nil
}

// Export renders doc as markdown.
func (s *Service) Export(ctx context.Context, doc *document.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc == nil {
		return "", ErrNilDocument
	}
	return Serialize(doc), nil
}

// Normalize re-emits markdown in the canonical dialect produced by Export.
func (s *Service) Normalize(ctx context.Context, markdown string) (string, error) {
	doc, _, err := s.Import(ctx, markdown)
	if err != nil {
		return "", err
	}
	return s.Export(ctx, doc)
}

// Render converts markdown into HTML, layering opts over the configured
// preview defaults.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.RenderOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.renderer.RenderWithOptions(markdown, mergeRenderOptions(s.cfg.Preview, opts))
}

// RenderDocument serializes doc and renders the result as HTML.
func (s *Service) RenderDocument(ctx context.Context, doc *document.Document, opts interfaces.RenderOptions) ([]byte, error) {
	markdown, err := s.Export(ctx, doc)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, []byte(markdown), opts)
}

func mergeRenderOptions(base, override interfaces.RenderOptions) interfaces.RenderOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	return result
}

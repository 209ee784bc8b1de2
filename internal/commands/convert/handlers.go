package convertcmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

const convertOperation = "convert"

var (
	// ErrRemoteImagesDisabled is returned when embedding is requested while
	// remote images are switched off.
	ErrRemoteImagesDisabled = errors.New("convert command: remote images disabled")
	// ErrNormalizerUnavailable is returned when embedding is requested
	// without an image normalizer.
	ErrNormalizerUnavailable = errors.New("convert command: image normalizer unavailable")
)

var _ command.Commander[ConvertCommand] = (*ConvertHandler)(nil)

// ConvertHandler runs ConvertCommand through the shared handler foundation.
type ConvertHandler struct {
	inner *commands.Handler[ConvertCommand]
}

// NewConvertHandler binds the handler to the markdown service and, for
// image embedding, a normalizer. normalizer may be nil.
func NewConvertHandler(service *markdown.Service, normalizer media.Normalizer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ConvertCommand]) *ConvertHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ConvertCommand) error {
		doc, recoveries, err := service.Import(ctx, msg.Markdown)
		if err != nil {
			return err
		}

		embedded := 0
		if msg.EmbedImages {
			if !gates.remoteImagesEnabled() {
				return ErrRemoteImagesDisabled
			}
			if normalizer == nil {
				return ErrNormalizerUnavailable
			}
			if embedded, err = media.EmbedRemoteImages(ctx, normalizer, doc); err != nil {
				return err
			}
		}

		format := normalizeFormat(msg.Format)
		if err := write(ctx, service, doc, format, msg); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"format":          format,
			"blocks":          doc.Len(),
			"recoveries":      len(recoveries),
			"embedded_images": embedded,
		}).Debug("convert.command.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertCommand]{
		commands.WithLogger[ConvertCommand](baseLogger),
		commands.WithOperation[ConvertCommand](convertOperation),
		commands.WithMessageFields(func(msg ConvertCommand) map[string]any {
			fields := map[string]any{
				"format": normalizeFormat(msg.Format),
				"bytes":  len(msg.Markdown),
			}
			if msg.EmbedImages {
				fields["embed_images"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ConvertHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ConvertCommand].
func (h *ConvertHandler) Execute(ctx context.Context, msg ConvertCommand) error {
	return h.inner.Execute(ctx, msg)
}

func write(ctx context.Context, service *markdown.Service, doc *document.Document, format string, msg ConvertCommand) error {
	var out []byte
	switch format {
	case FormatMarkdown:
		text, err := service.Export(ctx, doc)
		if err != nil {
			return err
		}
		out = []byte(text)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("convert command: encode json: %w", err)
		}
		out = data
	case FormatHTML:
		html, err := service.RenderDocument(ctx, doc, interfaces.RenderOptions{
			Extensions: msg.Extensions,
			HardWraps:  msg.HardWraps,
		})
		if err != nil {
			return err
		}
		out = html
	case FormatOutline:
		out = []byte(renderOutline(document.Outline(doc.Blocks())))
	default:
		return fmt.Errorf("convert command: unknown format %q", msg.Format)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	_, err := msg.Output.Write(out)
	return err
}

// renderOutline lists headings as a nested markdown list of anchor links.
func renderOutline(entries []document.OutlineEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(strings.Repeat("  ", entry.Level-1))
		b.WriteString("- [")
		b.WriteString(entry.Title)
		b.WriteString("](#")
		b.WriteString(entry.Anchor)
		b.WriteString(")\n")
	}
	return b.String()
}

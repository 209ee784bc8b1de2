package imagescmd

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

const normalizeOperation = "images.normalize"

var (
	// ErrRemoteImagesDisabled is returned for URL sources while remote
	// images are switched off.
	ErrRemoteImagesDisabled = errors.New("images command: remote images disabled")
	// ErrNormalizerRequired is returned when the handler has no normalizer.
	ErrNormalizerRequired = errors.New("images command: normalizer is nil")
)

var _ command.Commander[NormalizeImageCommand] = (*NormalizeImageHandler)(nil)

// NormalizeImageHandler runs NormalizeImageCommand through the shared
// handler foundation.
type NormalizeImageHandler struct {
	inner *commands.Handler[NormalizeImageCommand]
}

// NewNormalizeImageHandler binds the handler to normalizer.
func NewNormalizeImageHandler(normalizer media.Normalizer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[NormalizeImageCommand]) *NormalizeImageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg NormalizeImageCommand) error {
		if normalizer == nil {
			return ErrNormalizerRequired
		}
		src, err := sourceFor(msg, gates)
		if err != nil {
			return err
		}
		result, err := normalizer.Normalize(ctx, src)
		if err != nil {
			return err
		}

		out := result.DataURI
		if msg.Markdown {
			out = markdown.SerializeBlocks([]document.Block{&document.Image{Src: result.DataURI, Alt: msg.Alt}})
		}
		if _, err := fmt.Fprintln(msg.Output, out); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"mime":        result.MIMEType,
			"width":       result.Width,
			"height":      result.Height,
			"bytes":       result.Size,
			"passthrough": result.Passthrough,
		}).Debug("images.command.normalized")
		return nil
	}

	handlerOpts := []commands.HandlerOption[NormalizeImageCommand]{
		commands.WithLogger[NormalizeImageCommand](baseLogger),
		commands.WithOperation[NormalizeImageCommand](normalizeOperation),
		commands.WithMessageFields(func(msg NormalizeImageCommand) map[string]any {
			fields := map[string]any{}
			switch {
			case msg.Path != "":
				fields["source"] = string(media.SourceUpload)
				fields["path"] = msg.Path
			case msg.URL != "":
				fields["source"] = string(media.SourceURL)
				fields["url"] = msg.URL
			default:
				fields["source"] = string(media.SourceDataURI)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[NormalizeImageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &NormalizeImageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[NormalizeImageCommand].
func (h *NormalizeImageHandler) Execute(ctx context.Context, msg NormalizeImageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func sourceFor(msg NormalizeImageCommand, gates FeatureGates) (media.Source, error) {
	switch {
	case msg.Path != "":
		data, err := os.ReadFile(msg.Path)
		if err != nil {
			return media.Source{}, fmt.Errorf("images command: read %s: %w", msg.Path, err)
		}
		mimeType := msg.MIMEType
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(msg.Path))
		}
		return media.FromUpload(data, mimeType), nil
	case msg.URL != "":
		if !gates.remoteImagesEnabled() {
			return media.Source{}, ErrRemoteImagesDisabled
		}
		return media.FromURL(msg.URL), nil
	default:
		return media.FromDataURI(msg.DataURI), nil
	}
}

package convertcmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const convertMessageType = "richtext.convert"

// Output formats accepted by ConvertCommand.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatOutline  = "outline"
)

// ConvertCommand imports markdown and writes it back out in Format.
type ConvertCommand struct {
	// Markdown is the source text.
	Markdown string `json:"markdown"`
	// Format selects markdown (canonical re-emit), json (document model),
	// html (preview) or outline (heading list).
	Format string `json:"format"`
	// EmbedImages replaces remote image srcs with normalized data URIs.
	EmbedImages bool `json:"embed_images,omitempty"`
	// Extensions and HardWraps tune the html preview.
	Extensions []string `json:"extensions,omitempty"`
	HardWraps  bool     `json:"hard_wraps,omitempty"`
	// Output receives the converted result.
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (ConvertCommand) Type() string { return convertMessageType }

// Validate ensures a known format and a destination for the result.
func (cmd ConvertCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Format, validation.Required, validation.By(func(value any) error {
			switch normalizeFormat(value.(string)) {
			case FormatMarkdown, FormatJSON, FormatHTML, FormatOutline:
				return nil
			default:
				return validation.NewError("richtext.convert.format_invalid", "format must be markdown, json, html or outline")
			}
		})),
		validation.Field(&cmd.Output, validation.NotNil),
	)
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

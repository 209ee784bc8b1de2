package imagescmd

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const normalizeImageMessageType = "richtext.images.normalize"

// NormalizeImageCommand normalizes a single image from exactly one of Path,
// URL or DataURI and writes the resulting data URI to Output.
type NormalizeImageCommand struct {
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	DataURI string `json:"data_uri,omitempty"`
	// MIMEType overrides the type guessed from the Path extension.
	MIMEType string `json:"mime_type,omitempty"`
	Alt      string `json:"alt,omitempty"`
	// Markdown wraps the data URI in an image reference.
	Markdown bool      `json:"markdown,omitempty"`
	Output   io.Writer `json:"-"`
}

// Type implements command.Message.
func (NormalizeImageCommand) Type() string { return normalizeImageMessageType }

// Validate ensures exactly one source and a destination.
func (cmd NormalizeImageCommand) Validate() error {
	sources := 0
	for _, value := range []string{cmd.Path, cmd.URL, cmd.DataURI} {
		if value != "" {
			sources++
		}
	}
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.By(func(any) error {
			if sources != 1 {
				return validation.NewError("richtext.images.source_count", "exactly one of path, url or data_uri is required")
			}
			return nil
		})),
		validation.Field(&cmd.Output, validation.NotNil),
	)
}

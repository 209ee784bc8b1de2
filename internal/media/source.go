package media

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SourceKind identifies where image bytes come from.
type SourceKind string

const (
	SourceUpload  SourceKind = "upload"
	SourceURL     SourceKind = "url"
	SourceDataURI SourceKind = "data_uri"
)

// Source describes an image awaiting normalization. Uploads carry Data and
// MIMEType; URL and data URI sources carry Location.
type Source struct {
	Kind     SourceKind
	Data     []byte
	MIMEType string
	Location string
}

// FromUpload wraps raw upload bytes and their declared MIME type.
func FromUpload(data []byte, mimeType string) Source {
	return Source{Kind: SourceUpload, Data: data, MIMEType: mimeType}
}

// FromURL wraps a remote http(s) URL.
func FromURL(rawURL string) Source {
	return Source{Kind: SourceURL, Location: rawURL}
}

// FromDataURI wraps an existing data URI.
func FromDataURI(uri string) Source {
	return Source{Kind: SourceDataURI, Location: uri}
}

// Validate ensures the source carries the payload its kind requires.
func (s Source) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Kind, validation.Required, validation.In(SourceUpload, SourceURL, SourceDataURI)),
		validation.Field(&s.Data, validation.When(s.Kind == SourceUpload, validation.Required)),
		validation.Field(&s.Location, validation.When(s.Kind != SourceUpload, validation.Required)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return nil
}

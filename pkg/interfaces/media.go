package interfaces

import "context"

// ImageFetcher downloads remote image payloads for normalization.
type ImageFetcher interface {
	// Fetch retrieves at most limit bytes from rawURL. Implementations must
	// abort and release partial buffers when ctx is cancelled.
	Fetch(ctx context.Context, rawURL string, limit int64) (*FetchedImage, error)
}

// FetchedImage carries the raw payload and the declared content type of a
// downloaded image.
type FetchedImage struct {
	URL         string
	ContentType string
	Data        []byte
}

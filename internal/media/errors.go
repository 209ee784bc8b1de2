package media

import "errors"

var (
	// ErrImageTooLarge reports a payload above the configured byte or pixel limit.
	ErrImageTooLarge = errors.New("media: image too large")
	// ErrUnsupportedImageFormat reports a payload no registered decoder accepts.
	ErrUnsupportedImageFormat = errors.New("media: unsupported image format")
	// ErrImageFetch reports a URL source that could not be downloaded.
	ErrImageFetch = errors.New("media: image fetch failed")
	// ErrInvalidSource reports a source missing the payload its kind requires.
	ErrInvalidSource = errors.New("media: invalid image source")
)

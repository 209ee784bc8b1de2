package richtext

import (
	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/editor"
	"github.com/goliatone/go-richtext/internal/media"
)

var (
	ErrImageTooLarge          = media.ErrImageTooLarge
	ErrUnsupportedImageFormat = media.ErrUnsupportedImageFormat
	ErrImageFetch             = media.ErrImageFetch
	ErrInvalidSource          = media.ErrInvalidSource
	ErrInsertionTargetGone    = editor.ErrInsertionTargetGone
	ErrSessionClosed          = editor.ErrSessionClosed
	ErrNodeNotFound           = document.ErrNodeNotFound
	ErrInvalidSchema          = document.ErrInvalidSchema
)

// Error categories and text codes attached by SurfaceError.
const (
	CategoryImage     = editor.CategoryImage
	CategoryInsertion = editor.CategoryInsertion

	TextCodeImageTooLarge       = editor.TextCodeImageTooLarge
	TextCodeUnsupportedImage    = editor.TextCodeUnsupportedImage
	TextCodeImageFetchFailed    = editor.TextCodeImageFetchFailed
	TextCodeInsertionTargetGone = editor.TextCodeInsertionTargetGone
)

// SurfaceError tags user-facing image and insertion failures with their
// go-errors category and text code.
func SurfaceError(err error) error {
	return editor.SurfaceError(err)
}

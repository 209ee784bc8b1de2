package editor

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-richtext/internal/media"
)

var (
	// ErrInsertionTargetGone reports an image whose anchor block was deleted
	// while the image was being prepared.
	ErrInsertionTargetGone = errors.New("editor: insertion target gone")
	// ErrSessionClosed rejects operations on a closed session.
	ErrSessionClosed = errors.New("editor: session closed")
	// ErrNilEdit rejects applying a nil edit.
	ErrNilEdit = errors.New("editor: edit is nil")
)

const (
	// CategoryImage tags failures raised while preparing an image.
	CategoryImage = goerrors.Category("image")
	// CategoryInsertion tags failures raised while placing a node.
	CategoryInsertion = goerrors.Category("insertion")
)

const (
	TextCodeImageTooLarge       = "IMAGE_TOO_LARGE"
	TextCodeUnsupportedImage    = "UNSUPPORTED_IMAGE_FORMAT"
	TextCodeImageFetchFailed    = "IMAGE_FETCH_FAILED"
	TextCodeInsertionTargetGone = "INSERTION_TARGET_GONE"
)

// SurfaceError tags the conditions a host shows to the user with their
// category and text code. Other errors are returned unchanged. The original
// sentinel stays reachable through errors.Is.
func SurfaceError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, media.ErrImageTooLarge):
		return goerrors.Wrap(err, CategoryImage, "image exceeds the size limit").
			WithTextCode(TextCodeImageTooLarge)
	case errors.Is(err, media.ErrUnsupportedImageFormat):
		return goerrors.Wrap(err, CategoryImage, "image format is not supported").
			WithTextCode(TextCodeUnsupportedImage)
	case errors.Is(err, media.ErrImageFetch):
		return goerrors.Wrap(err, CategoryImage, "image could not be fetched").
			WithTextCode(TextCodeImageFetchFailed)
	case errors.Is(err, ErrInsertionTargetGone):
		return goerrors.Wrap(err, CategoryInsertion, "insertion target no longer exists").
			WithTextCode(TextCodeInsertionTargetGone)
	default:
		return err
	}
}
